package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/notify"
	"github.com/duetapp/duet/internal/repository"
	"github.com/duetapp/duet/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGoalService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("  Walk together ", 10000, true))
	require.NoError(t, err)
	assert.Equal(t, "Walk together", goal.Title)
	assert.Equal(t, model.GoalStatusActive, goal.Status)
	require.NotNil(t, goal.PairingID)
	assert.Equal(t, f.pairing.ID, *goal.PairingID)
	assert.Equal(t, []string{notify.EventGoalCreated}, f.eventNames())
}

func TestGoalService_CreateSoloPublishesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Read", 20, false))
	require.NoError(t, err)
	assert.Nil(t, goal.PairingID)

	_, err = f.goals.Log(ctx, alice, goal.ID, 20, "")
	require.NoError(t, err)
	assert.Empty(t, f.eventNames())
}

func TestGoalService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name  string
		input service.CreateGoalInput
	}{
		{name: "missing title", input: goalInput("", 100, false)},
		{name: "zero target", input: goalInput("Run", 0, false)},
		{name: "negative target", input: goalInput("Run", -3, false)},
		{name: "bad metric", input: func() service.CreateGoalInput {
			in := goalInput("Run", 100, false)
			in.TargetMetric = "Heart Rate"
			return in
		}()},
		{name: "missing end date", input: func() service.CreateGoalInput {
			in := goalInput("Run", 100, false)
			in.EndDate = in.StartDate
			return in
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.goals.Create(ctx, alice, tt.input)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestGoalService_CreateJointWithoutPairing(t *testing.T) {
	f := newFixture(t)

	_, err := f.goals.Create(context.Background(), carol, goalInput("Swim", 10, true))
	assert.ErrorIs(t, err, apperr.ErrRelationshipNotFound)
}

func TestGoalService_LogCompletesOnSecondContribution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Steps", 1000, true))
	require.NoError(t, err)

	first, err := f.goals.Log(ctx, alice, goal.ID, 400, "morning walk")
	require.NoError(t, err)
	assert.False(t, first.Completed)
	assert.Equal(t, 40.0, first.Progress.Percent)
	assert.Equal(t, model.GoalStatusActive, first.Goal.Status)

	second, err := f.goals.Log(ctx, alice, goal.ID, 700, "")
	require.NoError(t, err)
	assert.True(t, second.Completed)
	assert.Equal(t, 1100.0, second.Progress.Total)
	assert.Equal(t, 100.0, second.Progress.Percent)
	assert.Equal(t, model.GoalStatusCompleted, second.Goal.Status)

	stored, err := f.goalRepo.ByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, stored.Status)

	assert.Equal(t, 1, f.count(t, notify.EventGoalCompleted))
	assert.Equal(t, 2, f.count(t, notify.EventLogAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterGoalsCompleted))
}

func TestGoalService_CompletedGoalStaysCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Steps", 100, true))
	require.NoError(t, err)

	_, err = f.goals.Log(ctx, alice, goal.ID, 150, "")
	require.NoError(t, err)

	for _, amount := range []float64{0, 10, 5000} {
		res, err := f.goals.Log(ctx, bob, goal.ID, amount, "")
		require.NoError(t, err)
		assert.Equal(t, model.GoalStatusCompleted, res.Goal.Status)
		assert.False(t, res.Completed)
	}

	view, err := f.goals.ByID(ctx, alice, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, view.Goal.Status)
	assert.Equal(t, 1, f.count(t, notify.EventGoalCompleted))
}

func TestGoalService_PartnerTotalsAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Minutes", 1000, true))
	require.NoError(t, err)

	_, err = f.goals.Log(ctx, alice, goal.ID, 250, "")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.goals.Log(ctx, bob, goal.ID, 150, "")
		require.NoError(t, err)
	}

	view, err := f.goals.ByID(ctx, alice, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, view.User.Total)
	assert.Equal(t, 25.0, view.User.Percent)
	assert.Equal(t, bob, view.PartnerID)
	require.NotNil(t, view.Partner)
	assert.Equal(t, 750.0, view.Partner.Total)
	assert.Equal(t, 75.0, view.Partner.Percent)

	bobView, err := f.goals.ByID(ctx, bob, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 750.0, bobView.User.Total)
	assert.Equal(t, 250.0, bobView.Partner.Total)
}

func TestGoalService_PercentIsClamped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Tiny", 1, false))
	require.NoError(t, err)

	res, err := f.goals.Log(ctx, alice, goal.ID, 1e12, "")
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Progress.Percent)
}

func TestGoalService_AccessControl(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	solo, err := f.goals.Create(ctx, alice, goalInput("Private", 10, false))
	require.NoError(t, err)
	joint, err := f.goals.Create(ctx, alice, goalInput("Shared", 10, true))
	require.NoError(t, err)

	_, err = f.goals.ByID(ctx, bob, solo.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.goals.Log(ctx, bob, solo.ID, 1, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.goals.Log(ctx, carol, joint.ID, 1, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.goals.Contributions(ctx, carol, joint.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.goals.Log(ctx, alice, "missing", 1, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.goals.Log(ctx, bob, joint.ID, 1, "")
	assert.NoError(t, err)
}

func TestGoalService_OwnerKeepsAccessAfterPairingEnds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Shared", 10, true))
	require.NoError(t, err)
	require.NoError(t, f.pairings.End(ctx, f.pairing.ID))

	view, err := f.goals.ByID(ctx, alice, goal.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Partner)

	_, err = f.goals.ByID(ctx, bob, goal.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGoalService_LogValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Run", 10, false))
	require.NoError(t, err)

	_, err = f.goals.Log(ctx, alice, goal.ID, -1, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	entries, err := f.goals.Contributions(ctx, alice, goal.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGoalService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Run", 10, true))
	require.NoError(t, err)
	f.resetEvents()

	title := "Run further"
	updated, err := f.goals.Update(ctx, alice, goal.ID, service.UpdateGoalInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Run further", updated.Title)
	assert.Equal(t, []string{notify.EventGoalUpdated}, f.eventNames())

	_, err = f.goals.Update(ctx, bob, goal.ID, service.UpdateGoalInput{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	active := model.GoalStatusActive
	_, err = f.goals.Update(ctx, alice, goal.ID, service.UpdateGoalInput{Status: &active})
	assert.NoError(t, err)

	bogus := "archived"
	_, err = f.goals.Update(ctx, alice, goal.ID, service.UpdateGoalInput{Status: &bogus})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	failed := model.GoalStatusFailed
	updated, err = f.goals.Update(ctx, alice, goal.ID, service.UpdateGoalInput{Status: &failed})
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusFailed, updated.Status)

	_, err = f.goals.Update(ctx, alice, goal.ID, service.UpdateGoalInput{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.goals.Log(ctx, alice, goal.ID, 5, "")
	assert.ErrorIs(t, err, service.ErrGoalFailed)
}

// racingGoalRepo completes the goal right after handing out a copy loaded
// while it was still active.
type racingGoalRepo struct {
	repository.GoalRepository
	races int
}

func (r *racingGoalRepo) ByID(ctx context.Context, goalID string) (*model.Goal, error) {
	goal, err := r.GoalRepository.ByID(ctx, goalID)
	if err != nil || r.races == 0 {
		return goal, err
	}
	r.races--
	if _, err := r.GoalRepository.TransitionStatus(ctx, goalID, model.GoalStatusActive, model.GoalStatusCompleted); err != nil {
		return nil, err
	}
	return goal, nil
}

func TestGoalService_UpdateLosingStatusRaceWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Run", 10, true))
	require.NoError(t, err)

	f.goalRepo = &racingGoalRepo{GoalRepository: f.goalRepo, races: 1}
	f.wire(f.progressRepo)
	f.resetEvents()

	title := "Run further"
	failed := model.GoalStatusFailed
	_, err = f.goals.Update(ctx, alice, goal.ID, service.UpdateGoalInput{Title: &title, Status: &failed})
	assert.ErrorIs(t, err, repository.ErrGoalNotActive)

	stored, err := f.goalRepo.ByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Run", stored.Title)
	assert.Equal(t, model.GoalStatusCompleted, stored.Status)
	assert.Empty(t, f.eventNames())
	assert.Zero(t, testutil.ToFloat64(f.metrics.CounterGoalsCompleted))
}

func TestGoalService_SetStatusCompletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, bob, goalInput("Run", 10, true))
	require.NoError(t, err)

	updated, err := f.goals.SetStatus(ctx, goal.ID, model.GoalStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, updated.Status)
	assert.Equal(t, 1, f.count(t, notify.EventGoalCompleted))

	_, err = f.goals.SetStatus(ctx, goal.ID, model.GoalStatusFailed)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestGoalService_ConcurrentCompletionIsObservedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	goal, err := f.goals.Create(ctx, alice, goalInput("Race", 100, true))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, user := range []string{alice, bob, alice, bob} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			_, err := f.goals.Log(ctx, user, goal.ID, 100, "")
			assert.NoError(t, err)
		}(user)
	}
	wg.Wait()

	assert.Equal(t, 1, f.count(t, notify.EventGoalCompleted))
	assert.Equal(t, 4, f.count(t, notify.EventLogAdded))
}

func TestGoalService_Goals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.goals.Create(ctx, alice, goalInput("Solo alice", 10, false))
	require.NoError(t, err)
	_, err = f.goals.Create(ctx, bob, goalInput("Joint from bob", 10, true))
	require.NoError(t, err)
	_, err = f.goals.Create(ctx, bob, goalInput("Solo bob", 10, false))
	require.NoError(t, err)

	goals, err := f.goals.Goals(ctx, alice, repository.GoalSortTitle)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "Joint from bob", goals[0].Title)
	assert.Equal(t, "Solo alice", goals[1].Title)
}

func TestGoalService_DirectoryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ctrl := gomock.NewController(t)
	directory := NewMockPairingDirectory(ctrl)
	goals := service.NewGoalService(f.goalRepo, f.contributions, directory, f.notifier, f.metrics)

	boom := errors.New("directory unavailable")
	directory.EXPECT().FindActivePairing(gomock.Any(), alice).Return(nil, boom)

	_, err := goals.Create(ctx, alice, goalInput("Joint", 10, true))
	assert.ErrorIs(t, err, boom)
}
