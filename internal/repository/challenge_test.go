package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/repository"
	"github.com/duetapp/duet/internal/testinternals"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChallenge(pairingID, initiator, participant string) *model.Challenge {
	now := time.Now().UTC()
	return &model.Challenge{
		ID:            uuid.New().String(),
		PairingID:     pairingID,
		InitiatorID:   initiator,
		ParticipantID: participant,
		Type:          "steps-duel",
		Metric:        model.MetricSteps,
		Status:        model.ChallengeStatusPending,
		Title:         "10k a day",
		TargetValue:   10000,
		DurationDays:  7,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, 7),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func zeroRows(c *model.Challenge) []*model.ChallengeProgress {
	return []*model.ChallengeProgress{
		{ChallengeID: c.ID, UserID: c.InitiatorID, UpdatedAt: c.CreatedAt},
		{ChallengeID: c.ID, UserID: c.ParticipantID, UpdatedAt: c.CreatedAt},
	}
}

func TestChallengeRepository_CreateWithProgress(t *testing.T) {
	ctx := context.Background()
	database := testinternals.NewDB(t)
	challenges := repository.NewChallengeRepository(database)
	progress := repository.NewChallengeProgressRepository(database)

	pairing := testinternals.SeedPairing(t, database, "alice", "bob")
	c := newChallenge(pairing.ID, "alice", "bob")
	require.NoError(t, challenges.CreateWithProgress(ctx, c, zeroRows(c)))

	got, err := challenges.ByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChallengeStatusPending, got.Status)
	assert.Nil(t, got.DeclinedAt)

	rows, err := progress.ByChallenge(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Zero(t, row.Total)
		assert.Zero(t, row.Version)
	}

	forBob, err := challenges.ForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, forBob, 1)
}

func TestChallengeRepository_CreateIsAtomic(t *testing.T) {
	ctx := context.Background()
	database := testinternals.NewDB(t)
	challenges := repository.NewChallengeRepository(database)

	pairing := testinternals.SeedPairing(t, database, "alice", "bob")
	c := newChallenge(pairing.ID, "alice", "bob")
	rows := zeroRows(c)
	// duplicate primary key makes the second progress insert fail
	rows[1].UserID = rows[0].UserID

	require.Error(t, challenges.CreateWithProgress(ctx, c, rows))

	_, err := challenges.ByID(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrChallengeNotFound)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM challenge_progress`))
	assert.Zero(t, count)
}

func TestChallengeRepository_Respond(t *testing.T) {
	ctx := context.Background()
	database := testinternals.NewDB(t)
	challenges := repository.NewChallengeRepository(database)

	pairing := testinternals.SeedPairing(t, database, "alice", "bob")
	c := newChallenge(pairing.ID, "alice", "bob")
	require.NoError(t, challenges.CreateWithProgress(ctx, c, zeroRows(c)))

	at := time.Now().UTC()
	ok, err := challenges.Respond(ctx, c.ID, model.ChallengeStatusDeclined, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = challenges.Respond(ctx, c.ID, model.ChallengeStatusDeclined, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := challenges.ByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChallengeStatusDeclined, got.Status)
	require.NotNil(t, got.DeclinedAt)
	assert.WithinDuration(t, at, *got.DeclinedAt, time.Second)
}

func TestChallengeRepository_ActiveAndComplete(t *testing.T) {
	ctx := context.Background()
	database := testinternals.NewDB(t)
	challenges := repository.NewChallengeRepository(database)

	pairing := testinternals.SeedPairing(t, database, "alice", "bob")
	c := newChallenge(pairing.ID, "alice", "bob")
	require.NoError(t, challenges.CreateWithProgress(ctx, c, zeroRows(c)))

	active, err := challenges.ActiveForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = challenges.Respond(ctx, c.ID, model.ChallengeStatusActive, time.Now().UTC())
	require.NoError(t, err)

	active, err = challenges.ActiveForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, active, 1)

	done, err := challenges.Complete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = challenges.Complete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestChallengeProgressRepository_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	database := testinternals.NewDB(t)
	challenges := repository.NewChallengeRepository(database)
	progress := repository.NewChallengeProgressRepository(database)

	pairing := testinternals.SeedPairing(t, database, "alice", "bob")
	c := newChallenge(pairing.ID, "alice", "bob")
	require.NoError(t, challenges.CreateWithProgress(ctx, c, zeroRows(c)))

	row, err := progress.Get(ctx, c.ID, "bob")
	require.NoError(t, err)

	next := *row
	next.Total = 4200
	next.DaysCompleted = 1
	next.CountedDays = "2026-10-18"
	require.NoError(t, progress.CompareAndSwap(ctx, &next, row.Version))
	assert.Equal(t, int64(1), next.Version)

	// a writer that read the old version loses
	stale := *row
	stale.Total = 10
	err = progress.CompareAndSwap(ctx, &stale, row.Version)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	got, err := progress.Get(ctx, c.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 4200.0, got.Total)
	assert.Equal(t, "2026-10-18", got.CountedDays)
	assert.Equal(t, int64(1), got.Version)

	_, err = progress.Get(ctx, c.ID, "carol")
	assert.ErrorIs(t, err, repository.ErrChallengeProgressNotFound)
}
