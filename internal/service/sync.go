package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/metrics"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/notify"
	"github.com/duetapp/duet/internal/progress"
	"github.com/duetapp/duet/internal/repository"
	"github.com/duetapp/duet/internal/validation"
)

// SyncResult reports what one external metric report changed.
type SyncResult struct {
	Snapshot            *model.MetricSnapshot      `json:"snapshot"`
	Challenges          []*model.ChallengeProgress `json:"challenges"`
	CompletedChallenges []string                   `json:"completedChallenges,omitempty"`
	Goals               []*LogResult               `json:"goals,omitempty"`
}

type SyncService struct {
	snapshots  repository.MetricSnapshotRepository
	challenges repository.ChallengeRepository
	progress   repository.ChallengeProgressRepository
	goalRepo   repository.GoalRepository
	goals      *GoalService
	pairings   PairingDirectory
	notifier   notify.Notifier
	metrics    *metrics.Manager
	retry      RetryPolicy
	now        func() time.Time
}

func NewSyncService(
	snapshots repository.MetricSnapshotRepository,
	challenges repository.ChallengeRepository,
	progressRepo repository.ChallengeProgressRepository,
	goalRepo repository.GoalRepository,
	goals *GoalService,
	pairings PairingDirectory,
	notifier notify.Notifier,
	metricsManager *metrics.Manager,
	retry RetryPolicy,
) *SyncService {
	return &SyncService{
		snapshots:  snapshots,
		challenges: challenges,
		progress:   progressRepo,
		goalRepo:   goalRepo,
		goals:      goals,
		pairings:   pairings,
		notifier:   notifier,
		metrics:    metricsManager,
		retry:      retry,
		now:        utcNow,
	}
}

// ApplyExternalMetrics folds a wearable report for one user and day into the
// user's active challenges and auto-synced goals. Reports carry running
// totals, so applying the same report twice changes nothing.
func (s *SyncService) ApplyExternalMetrics(ctx context.Context, userID, date string, reported model.Metrics) (*SyncResult, error) {
	started := time.Now()
	defer func() {
		s.metrics.HistSyncDuration.Observe(time.Since(started).Seconds())
	}()

	day, err := validation.ValidateSyncDate(date)
	if err != nil {
		return nil, err
	}
	if len(reported) == 0 {
		return nil, apperr.Validation("metrics are required")
	}
	for key, value := range reported {
		if err := validation.ValidateMetric(key); err != nil {
			return nil, err
		}
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return nil, apperr.Validation(fmt.Sprintf("metric %s must be zero or more", key))
		}
	}

	now := s.now()
	snapshot := &model.MetricSnapshot{
		UserID:    userID,
		Date:      date,
		Metrics:   reported,
		UpdatedAt: now,
	}
	if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store metric snapshot: %w", err)
	}

	result := &SyncResult{
		Snapshot:   snapshot,
		Challenges: []*model.ChallengeProgress{},
	}

	if err := s.syncChallenges(ctx, userID, day, progress.Report{Date: date, Metrics: reported}, now, result); err != nil {
		return nil, err
	}
	if err := s.syncGoals(ctx, userID, date, day, reported, result); err != nil {
		return nil, err
	}

	s.metrics.CounterSyncReports.Inc()
	slog.Info("external metrics applied",
		"user_id", userID,
		"date", date,
		"challenges", len(result.Challenges),
		"goals", len(result.Goals),
	)

	return result, nil
}

// Snapshot returns the last report the user sent for date.
func (s *SyncService) Snapshot(ctx context.Context, userID, date string) (*model.MetricSnapshot, error) {
	if _, err := validation.ValidateSyncDate(date); err != nil {
		return nil, err
	}
	return s.snapshots.Get(ctx, userID, date)
}

func (s *SyncService) syncChallenges(ctx context.Context, userID string, day time.Time, report progress.Report, now time.Time, result *SyncResult) error {
	active, err := s.challenges.ActiveForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load active challenges: %w", err)
	}

	for _, challenge := range active {
		if challenge.Ended(now) || !challenge.Started(day) {
			continue
		}

		row, err := s.fold(ctx, challenge, userID, report)
		if err != nil {
			return err
		}
		result.Challenges = append(result.Challenges, row)

		if !progress.ChallengeReached(challenge.Status, row.Total, challenge.TargetValue) {
			continue
		}

		moved, err := s.challenges.Complete(ctx, challenge.ID)
		if err != nil {
			return fmt.Errorf("failed to complete challenge: %w", err)
		}
		if !moved {
			continue
		}

		challenge.Status = model.ChallengeStatusCompleted
		challenge.UpdatedAt = now
		result.CompletedChallenges = append(result.CompletedChallenges, challenge.ID)
		s.metrics.CounterChallengesCompleted.Inc()
		s.notifier.Publish(ctx, challenge.PairingID, notify.EventChallengeUpdated, challenge)
	}

	return nil
}

// fold is an optimistic read-compute-write on the (challenge, user) row,
// retried while another writer wins the version race.
func (s *SyncService) fold(ctx context.Context, challenge *model.Challenge, userID string, report progress.Report) (*model.ChallengeProgress, error) {
	var next model.ChallengeProgress

	err := s.retry.retryOnConflict(ctx, func() error {
		prev, err := s.progress.Get(ctx, challenge.ID, userID)
		if err != nil {
			return err
		}

		next = progress.FoldReport(*prev, challenge.Metric, report)
		next.UpdatedAt = s.now()
		return s.progress.CompareAndSwap(ctx, &next, prev.Version)
	}, func() {
		s.metrics.CounterConflictRetries.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fold report into challenge %s: %w", challenge.ID, err)
	}

	return &next, nil
}

// syncGoals stores the day's running total on every auto-synced goal tracking
// that metric. Each goal keeps one synced row per user and day.
func (s *SyncService) syncGoals(ctx context.Context, userID, date string, day time.Time, reported model.Metrics, result *SyncResult) error {
	pairing, err := s.pairings.FindActivePairing(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up pairing: %w", err)
	}
	var pairingID string
	if pairing != nil {
		pairingID = pairing.ID
	}

	goals, err := s.goalRepo.ActiveAutoSyncGoals(ctx, userID, pairingID)
	if err != nil {
		return fmt.Errorf("failed to load auto-sync goals: %w", err)
	}

	for _, goal := range goals {
		value, ok := reported[goal.TargetMetric]
		if !ok || value == 0 || !goal.Covers(day) {
			continue
		}

		logged, err := s.goals.recordSynced(ctx, goal, userID, date, value)
		if err != nil {
			return err
		}
		if logged != nil {
			result.Goals = append(result.Goals, logged)
		}
	}

	return nil
}
