package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/duetapp/duet/internal/metrics"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/repository"
	"github.com/duetapp/duet/internal/service"
	"github.com/duetapp/duet/internal/testinternals"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	alice = "alice"
	bob   = "bob"
	carol = "carol"
)

var testRetryPolicy = service.RetryPolicy{
	MaxRetries:      3,
	InitialInterval: time.Millisecond,
}

type published struct {
	PairingID string
	Event     string
	Payload   any
}

type fixture struct {
	db       *sqlx.DB
	metrics  *metrics.Manager
	notifier *MockNotifier
	pairing  *model.Pairing

	goalRepo      repository.GoalRepository
	contributions repository.ContributionRepository
	challengeRepo repository.ChallengeRepository
	progressRepo  repository.ChallengeProgressRepository
	snapshots     repository.MetricSnapshotRepository
	pairings      repository.PairingRepository

	goals       *service.GoalService
	wagers      *service.WagerService
	challenges  *service.ChallengeService
	leaderboard *service.LeaderboardService
	sync        *service.SyncService

	mu     sync.Mutex
	events []published
}

// newFixture wires every service against a fresh database with alice and
// bob paired. carol has no pairing.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	database := testinternals.NewDB(t)

	f := &fixture{
		db:            database,
		metrics:       metrics.NewTestManager(),
		notifier:      NewMockNotifier(ctrl),
		goalRepo:      repository.NewGoalRepository(database),
		contributions: repository.NewContributionRepository(database),
		challengeRepo: repository.NewChallengeRepository(database),
		progressRepo:  repository.NewChallengeProgressRepository(database),
		snapshots:     repository.NewMetricSnapshotRepository(database),
		pairings:      repository.NewPairingRepository(database),
	}
	f.pairing = testinternals.SeedPairing(t, database, alice, bob)

	f.notifier.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, pairingID, event string, payload any) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.events = append(f.events, published{PairingID: pairingID, Event: event, Payload: payload})
		}).
		AnyTimes()

	f.wire(f.progressRepo)
	return f
}

func (f *fixture) wire(progressRepo repository.ChallengeProgressRepository) {
	f.goals = service.NewGoalService(f.goalRepo, f.contributions, f.pairings, f.notifier, f.metrics)
	f.wagers = service.NewWagerService(repository.NewWagerRepository(f.db), f.goals, f.notifier)
	f.challenges = service.NewChallengeService(f.challengeRepo, progressRepo, f.pairings, f.notifier, f.metrics)
	f.leaderboard = service.NewLeaderboardService(f.goals, f.goalRepo, f.challengeRepo, progressRepo, f.pairings)
	f.sync = service.NewSyncService(
		f.snapshots,
		f.challengeRepo,
		progressRepo,
		f.goalRepo,
		f.goals,
		f.pairings,
		f.notifier,
		f.metrics,
		testRetryPolicy,
	)
}

func (f *fixture) eventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.events))
	for _, e := range f.events {
		names = append(names, e.Event)
	}
	return names
}

func (f *fixture) count(t *testing.T, event string) int {
	t.Helper()
	n := 0
	for _, name := range f.eventNames() {
		if name == event {
			n++
		}
	}
	return n
}

func (f *fixture) resetEvents() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

func goalInput(title string, target float64, joint bool) service.CreateGoalInput {
	return service.CreateGoalInput{
		Title:        title,
		TargetMetric: model.MetricSteps,
		TargetValue:  target,
		EndDate:      time.Now().UTC().AddDate(0, 0, 30),
		Joint:        joint,
	}
}

func challengeInput(participantID string, target float64) service.CreateChallengeInput {
	return service.CreateChallengeInput{
		ParticipantID: participantID,
		Type:          "steps_race",
		Title:         "Weekend race",
		TargetValue:   target,
		DurationDays:  7,
		Reward:        "breakfast in bed",
	}
}

// activeChallenge creates a challenge from alice to bob and accepts it.
func (f *fixture) activeChallenge(t *testing.T, target float64) *model.Challenge {
	t.Helper()
	return f.activeChallengeSince(t, target, 0)
}

// activeChallengeSince is activeChallenge starting daysAgo days back.
func (f *fixture) activeChallengeSince(t *testing.T, target float64, daysAgo int) *model.Challenge {
	t.Helper()
	ctx := context.Background()

	in := challengeInput(bob, target)
	if daysAgo > 0 {
		in.StartDate = time.Now().UTC().AddDate(0, 0, -daysAgo)
	}
	c, err := f.challenges.Create(ctx, alice, in)
	require.NoError(t, err)

	c, err = f.challenges.Respond(ctx, c.ID, bob, model.ChallengeStatusActive)
	require.NoError(t, err)
	return c
}

func today() string {
	return daysAgo(0)
}

func daysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format(model.SyncDateLayout)
}
