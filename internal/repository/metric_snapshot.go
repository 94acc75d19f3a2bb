package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSnapshotNotFound = fmt.Errorf("metric snapshot %w", apperr.ErrNotFound)
)

type MetricSnapshotRepository interface {
	Upsert(ctx context.Context, s *model.MetricSnapshot) error
	Get(ctx context.Context, userID, date string) (*model.MetricSnapshot, error)
}

type metricSnapshotRepository struct {
	db *sqlx.DB
}

func NewMetricSnapshotRepository(db *sqlx.DB) MetricSnapshotRepository {
	return &metricSnapshotRepository{db: db}
}

// Upsert stores the latest report for (user, date), replacing any earlier one.
func (r *metricSnapshotRepository) Upsert(ctx context.Context, s *model.MetricSnapshot) error {
	raw, err := json.Marshal(s.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	s.RawJSON = string(raw)

	query := `INSERT INTO metric_snapshots (user_id, date, metrics, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id, date) DO UPDATE SET metrics = excluded.metrics, updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query, s.UserID, s.Date, s.RawJSON, s.UpdatedAt)
	return err
}

func (r *metricSnapshotRepository) Get(ctx context.Context, userID, date string) (*model.MetricSnapshot, error) {
	snapshot := &model.MetricSnapshot{}
	query := `SELECT * FROM metric_snapshots WHERE user_id = $1 AND date = $2`

	err := r.db.GetContext(ctx, snapshot, query, userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(snapshot.RawJSON), &snapshot.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}

	return snapshot, nil
}
