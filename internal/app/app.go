package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/duetapp/duet/internal/config"
	"github.com/duetapp/duet/internal/db"
	"github.com/duetapp/duet/internal/metrics"
	"github.com/duetapp/duet/internal/middleware"
	"github.com/duetapp/duet/internal/notify"
	"github.com/duetapp/duet/internal/repository"
	"github.com/duetapp/duet/internal/service"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

const syncLimiterPrefix = "duet:ratelimit:sync:"

type App struct {
	Cfg      *config.Config
	DB       *sqlx.DB
	Redis    redis.UniversalClient
	Registry *prometheus.Registry
	Metrics  *metrics.Manager
	Hub      *notify.Hub
	Notifier notify.Notifier

	// SyncLimiter throttles metric reports. Redis-backed when configured so
	// limits hold across instances.
	SyncLimiter middleware.Limiter

	Pairings           repository.PairingRepository
	AuthService        *service.AuthService
	GoalService        *service.GoalService
	WagerService       *service.WagerService
	ChallengeService   *service.ChallengeService
	LeaderboardService *service.LeaderboardService
	SyncService        *service.SyncService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(context.Background(), database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &App{
		Cfg:      cfg,
		DB:       database,
		Registry: metrics.NewRegistry(),
		Hub:      notify.NewHub(cfg.WSAllowedOrigin),
	}
	a.Metrics = metrics.NewManager(cfg.MetricsNamespace, "server", a.Registry)

	// Events: local log always, then either redis (relayed back into the hub
	// on every instance) or the hub directly.
	notifiers := notify.Fanout{notify.LogNotifier{}}
	if cfg.RedisEnabled() {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		notifiers = append(notifiers, notify.NewRedisNotifier(a.Redis))
		a.SyncLimiter = middleware.NewRedisLimiter(a.Redis, cfg.SyncRatePerMinute, syncLimiterPrefix)
	} else {
		notifiers = append(notifiers, a.Hub)
		a.SyncLimiter = middleware.NewRateLimiter(cfg.SyncRatePerMinute, time.Minute)
	}
	a.Notifier = notifiers

	retry := service.RetryPolicy{
		MaxRetries:      uint64(cfg.ConflictRetries),
		InitialInterval: cfg.ConflictBackoff,
	}

	// Repositories
	a.Pairings = repository.NewPairingRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	contributionRepository := repository.NewContributionRepository(database)
	wagerRepository := repository.NewWagerRepository(database)
	challengeRepository := repository.NewChallengeRepository(database)
	progressRepository := repository.NewChallengeProgressRepository(database)
	snapshotRepository := repository.NewMetricSnapshotRepository(database)

	// Services
	a.AuthService = service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	a.GoalService = service.NewGoalService(goalRepository, contributionRepository, a.Pairings, a.Notifier, a.Metrics)
	a.WagerService = service.NewWagerService(wagerRepository, a.GoalService, a.Notifier)
	a.ChallengeService = service.NewChallengeService(challengeRepository, progressRepository, a.Pairings, a.Notifier, a.Metrics)
	a.LeaderboardService = service.NewLeaderboardService(a.GoalService, goalRepository, challengeRepository, progressRepository, a.Pairings)
	a.SyncService = service.NewSyncService(
		snapshotRepository,
		challengeRepository,
		progressRepository,
		goalRepository,
		a.GoalService,
		a.Pairings,
		a.Notifier,
		a.Metrics,
		retry,
	)

	return a, nil
}

// Start runs the websocket hub and, with redis configured, the event relay.
// Both stop when ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Hub.Run(ctx)

	if a.Redis != nil {
		go notify.Relay(ctx, a.Redis, a.Hub)
		slog.Info("relaying pairing events through redis", "addr", a.Cfg.RedisAddr)
	}
}

func (a *App) Close() error {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("failed to close redis", "error", err)
		}
	}
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
