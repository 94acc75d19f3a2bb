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

const (
	GoalSortRecent = "recent"
	GoalSortTitle  = "title"
	GoalSortEnding = "ending"
)

var (
	ErrGoalNotFound  = fmt.Errorf("goal %w", apperr.ErrNotFound)
	ErrGoalNotActive = apperr.InvalidState("goal is no longer active")
)

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, goalID string) (*model.Goal, error)
	Goals(ctx context.Context, userID, pairingID, sortBy string) ([]*model.Goal, error)
	ActiveJointGoals(ctx context.Context, pairingID string) ([]*model.Goal, error)
	ActiveAutoSyncGoals(ctx context.Context, userID, pairingID string) ([]*model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	TransitionStatus(ctx context.Context, goalID, from, to string) (bool, error)
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, pairing_id, title, description, target_metric, target_value,
	                             start_date, end_date, status, auto_sync, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.PairingID,
		goal.Title,
		goal.Description,
		goal.TargetMetric,
		goal.TargetValue,
		goal.StartDate,
		goal.EndDate,
		goal.Status,
		goal.AutoSync,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(ctx context.Context, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1`

	err := r.db.GetContext(ctx, goal, query, goalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// Goals returns the goals owned by userID plus the joint goals of pairingID.
func (r *goalRepository) Goals(ctx context.Context, userID, pairingID, sortBy string) ([]*model.Goal, error) {
	var goals []*model.Goal

	var orderBy string
	switch sortBy {
	case GoalSortTitle:
		orderBy = "ORDER BY LOWER(title) ASC"
	case GoalSortEnding:
		orderBy = "ORDER BY end_date ASC"
	default: // GoalSortRecent or empty
		orderBy = "ORDER BY updated_at DESC"
	}

	query := `SELECT * FROM goals WHERE user_id = $1 OR (pairing_id IS NOT NULL AND pairing_id = $2) ` + orderBy

	err := r.db.SelectContext(ctx, &goals, query, userID, pairingID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) ActiveJointGoals(ctx context.Context, pairingID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE pairing_id = $1 AND status = $2 ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &goals, query, pairingID, model.GoalStatusActive)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// ActiveAutoSyncGoals returns active auto-synced goals userID can contribute to.
func (r *goalRepository) ActiveAutoSyncGoals(ctx context.Context, userID, pairingID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals
	          WHERE auto_sync = $1 AND status = $2
	            AND (user_id = $3 OR (pairing_id IS NOT NULL AND pairing_id = $4))
	          ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &goals, query, true, model.GoalStatusActive, userID, pairingID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// Update rewrites title, description and status of a goal that is still
// active. A goal that left the active state returns ErrGoalNotActive and is
// not written.
func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, description = $2, status = $3, updated_at = $4
	          WHERE id = $5 AND status = $6`

	result, err := r.db.ExecContext(ctx, query,
		goal.Title,
		goal.Description,
		goal.Status,
		time.Now().UTC(),
		goal.ID,
		model.GoalStatusActive,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		if _, err := r.ByID(ctx, goal.ID); err != nil {
			return err
		}
		return ErrGoalNotActive
	}

	return nil
}

// TransitionStatus moves the goal from one status to another only if it is
// still in the from status. It reports whether this call performed the move.
func (r *goalRepository) TransitionStatus(ctx context.Context, goalID, from, to string) (bool, error) {
	query := `UPDATE goals SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), goalID, from)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
