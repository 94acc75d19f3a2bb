package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrChallengeProgressNotFound = fmt.Errorf("challenge progress %w", apperr.ErrNotFound)
)

type ChallengeProgressRepository interface {
	ByChallenge(ctx context.Context, challengeID string) ([]*model.ChallengeProgress, error)
	Get(ctx context.Context, challengeID, userID string) (*model.ChallengeProgress, error)
	CompareAndSwap(ctx context.Context, next *model.ChallengeProgress, expectedVersion int64) error
}

type challengeProgressRepository struct {
	db *sqlx.DB
}

func NewChallengeProgressRepository(db *sqlx.DB) ChallengeProgressRepository {
	return &challengeProgressRepository{db: db}
}

func (r *challengeProgressRepository) ByChallenge(ctx context.Context, challengeID string) ([]*model.ChallengeProgress, error) {
	var rows []*model.ChallengeProgress
	query := `SELECT * FROM challenge_progress WHERE challenge_id = $1 ORDER BY user_id ASC`

	err := r.db.SelectContext(ctx, &rows, query, challengeID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *challengeProgressRepository) Get(ctx context.Context, challengeID, userID string) (*model.ChallengeProgress, error) {
	row := &model.ChallengeProgress{}
	query := `SELECT * FROM challenge_progress WHERE challenge_id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, row, query, challengeID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChallengeProgressNotFound
	}
	if err != nil {
		return nil, err
	}

	return row, nil
}

// CompareAndSwap writes next only if the stored version still equals
// expectedVersion, bumping the version. A lost race returns apperr.ErrConflict.
func (r *challengeProgressRepository) CompareAndSwap(ctx context.Context, next *model.ChallengeProgress, expectedVersion int64) error {
	query := `UPDATE challenge_progress
	          SET total = $1, avg_heart_rate = $2, days_completed = $3, max_metric_value = $4,
	              last_sync_date = $5, counted_days = $6, version = $7, updated_at = $8
	          WHERE challenge_id = $9 AND user_id = $10 AND version = $11`

	result, err := r.db.ExecContext(ctx, query,
		next.Total,
		next.AvgHeartRate,
		next.DaysCompleted,
		next.MaxMetricValue,
		next.LastSyncDate,
		next.CountedDays,
		expectedVersion+1,
		next.UpdatedAt,
		next.ChallengeID,
		next.UserID,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return apperr.Conflictf("challenge progress %s/%s changed concurrently", next.ChallengeID, next.UserID)
	}

	next.Version = expectedVersion + 1
	return nil
}
