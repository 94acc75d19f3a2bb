package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrChallengeNotFound = fmt.Errorf("challenge %w", apperr.ErrNotFound)
)

type ChallengeRepository interface {
	CreateWithProgress(ctx context.Context, c *model.Challenge, rows []*model.ChallengeProgress) error
	ByID(ctx context.Context, challengeID string) (*model.Challenge, error)
	ForUser(ctx context.Context, userID string) ([]*model.Challenge, error)
	ActiveForUser(ctx context.Context, userID string) ([]*model.Challenge, error)
	Respond(ctx context.Context, challengeID, decision string, at time.Time) (bool, error)
	Complete(ctx context.Context, challengeID string) (bool, error)
}

type challengeRepository struct {
	db *sqlx.DB
}

func NewChallengeRepository(db *sqlx.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

// CreateWithProgress inserts the challenge and its progress rows in one
// transaction. Either all rows exist afterwards or none do.
func (r *challengeRepository) CreateWithProgress(ctx context.Context, c *model.Challenge, rows []*model.ChallengeProgress) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO challenges (id, pairing_id, initiator_id, participant_id, type, metric, status, title,
	                                  description, target_value, duration_days, reward, start_date, end_date,
	                                  created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = tx.ExecContext(ctx, query,
		c.ID,
		c.PairingID,
		c.InitiatorID,
		c.ParticipantID,
		c.Type,
		c.Metric,
		c.Status,
		c.Title,
		c.Description,
		c.TargetValue,
		c.DurationDays,
		c.Reward,
		c.StartDate,
		c.EndDate,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	progressQuery := `INSERT INTO challenge_progress (challenge_id, user_id, total, days_completed, max_metric_value,
	                                                  last_sync_date, counted_days, version, updated_at)
	                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, p := range rows {
		_, err := tx.ExecContext(ctx, progressQuery,
			p.ChallengeID, p.UserID, p.Total, p.DaysCompleted, p.MaxMetricValue, p.LastSyncDate, p.CountedDays, p.Version, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create progress for %s: %w", p.UserID, err)
		}
	}

	return tx.Commit()
}

func (r *challengeRepository) ByID(ctx context.Context, challengeID string) (*model.Challenge, error) {
	challenge := &model.Challenge{}
	query := `SELECT * FROM challenges WHERE id = $1`

	err := r.db.GetContext(ctx, challenge, query, challengeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}

	return challenge, nil
}

func (r *challengeRepository) ForUser(ctx context.Context, userID string) ([]*model.Challenge, error) {
	var challenges []*model.Challenge
	query := `SELECT * FROM challenges WHERE initiator_id = $1 OR participant_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &challenges, query, userID)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

// ActiveForUser returns active challenges with userID as either party. The
// caller filters out challenges that already ended.
func (r *challengeRepository) ActiveForUser(ctx context.Context, userID string) ([]*model.Challenge, error) {
	var challenges []*model.Challenge
	query := `SELECT * FROM challenges
	          WHERE status = $1 AND (initiator_id = $2 OR participant_id = $2)
	          ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &challenges, query, model.ChallengeStatusActive, userID)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

// Respond records the participant's decision if the challenge is still
// pending. declined_at is only set for declines.
func (r *challengeRepository) Respond(ctx context.Context, challengeID, decision string, at time.Time) (bool, error) {
	var declinedAt *time.Time
	if decision == model.ChallengeStatusDeclined {
		declinedAt = &at
	}

	query := `UPDATE challenges
	          SET status = $1, declined_at = $2, responded_at = $3, updated_at = $4
	          WHERE id = $5 AND status = $6`

	result, err := r.db.ExecContext(ctx, query, decision, declinedAt, at, at, challengeID, model.ChallengeStatusPending)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *challengeRepository) Complete(ctx context.Context, challengeID string) (bool, error) {
	query := `UPDATE challenges SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query,
		model.ChallengeStatusCompleted, time.Now().UTC(), challengeID, model.ChallengeStatusActive)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
