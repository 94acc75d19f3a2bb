package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/repository"
	"github.com/duetapp/duet/internal/testinternals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricSnapshotRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	database := testinternals.NewDB(t)
	repo := repository.NewMetricSnapshotRepository(database)

	snapshot := &model.MetricSnapshot{
		UserID:    "alice",
		Date:      "2026-10-18",
		Metrics:   model.Metrics{model.MetricSteps: 5000},
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, snapshot))

	snapshot.Metrics = model.Metrics{model.MetricSteps: 8000, model.MetricHeartRate: 72}
	require.NoError(t, repo.Upsert(ctx, snapshot))

	got, err := repo.Get(ctx, "alice", "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, 8000.0, got.Metrics[model.MetricSteps])
	assert.Equal(t, 72.0, got.Metrics[model.MetricHeartRate])

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM metric_snapshots`))
	assert.Equal(t, 1, count)

	_, err = repo.Get(ctx, "alice", "2026-10-19")
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}
