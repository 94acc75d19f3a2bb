package routes

import (
	"net/http"

	"github.com/duetapp/duet/internal/app"
	"github.com/duetapp/duet/internal/handler"
	"github.com/duetapp/duet/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService, app.WagerService)
	challenge := handler.NewChallengeHandler(app.ChallengeService, app.LeaderboardService)
	leaderboard := handler.NewLeaderboardHandler(app.LeaderboardService)
	sync := handler.NewSyncHandler(app.SyncService)
	events := handler.NewEventsHandler(app.Hub, app.Pairings)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	}

	// ============================================================================
	// API (/api/*, bearer token required)
	// ============================================================================

	// Goals
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Get))
	mux.HandleFunc("PUT /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("POST /api/goals/{id}/contributions", middleware.RequireAuth(goal.Log))
	mux.HandleFunc("GET /api/goals/{id}/contributions", middleware.RequireAuth(goal.Contributions))
	mux.HandleFunc("POST /api/goals/{id}/wagers", middleware.RequireAuth(goal.PlaceWager))
	mux.HandleFunc("GET /api/goals/{id}/wagers", middleware.RequireAuth(goal.Wagers))

	// Challenges
	mux.HandleFunc("POST /api/challenges", middleware.RequireAuth(challenge.Create))
	mux.HandleFunc("GET /api/challenges", middleware.RequireAuth(challenge.List))
	mux.HandleFunc("POST /api/challenges/{id}/respond", middleware.RequireAuth(challenge.Respond))
	mux.HandleFunc("GET /api/challenges/{id}/progress", middleware.RequireAuth(challenge.Progress))
	mux.HandleFunc("GET /api/challenges/{id}/leaderboard", middleware.RequireAuth(challenge.Leaderboard))

	// Leaderboard
	mux.HandleFunc("GET /api/pairing/leaderboard", middleware.RequireAuth(leaderboard.Pairing))

	// Sync (rate limited)
	syncLimiter := middleware.RateLimit(app.SyncLimiter, app.Metrics)
	mux.Handle("POST /api/sync/metrics", syncLimiter(middleware.RequireAuth(sync.ApplyMetrics)))
	mux.HandleFunc("GET /api/sync/metrics/{date}", middleware.RequireAuth(sync.Snapshot))

	// Live events
	mux.HandleFunc("GET /api/events", middleware.RequireAuth(events.Stream))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.AuthMiddleware(app.AuthService), // Before logging so requests carry user_id
		middleware.RequestLogging,
		middleware.Metrics(app.Metrics),
	)

	return handler
}
