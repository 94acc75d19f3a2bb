package repository

import (
	"context"

	"github.com/duetapp/duet/internal/model"
	"github.com/jmoiron/sqlx"
)

type WagerRepository interface {
	Create(ctx context.Context, w *model.Wager) error
	ByGoal(ctx context.Context, goalID string) ([]*model.Wager, error)
}

type wagerRepository struct {
	db *sqlx.DB
}

func NewWagerRepository(db *sqlx.DB) WagerRepository {
	return &wagerRepository{db: db}
}

func (r *wagerRepository) Create(ctx context.Context, w *model.Wager) error {
	query := `INSERT INTO wagers (id, pairing_id, goal_id, created_by, description, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, w.ID, w.PairingID, w.GoalID, w.CreatedBy, w.Description, w.CreatedAt)
	return err
}

func (r *wagerRepository) ByGoal(ctx context.Context, goalID string) ([]*model.Wager, error) {
	var wagers []*model.Wager
	query := `SELECT * FROM wagers WHERE goal_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &wagers, query, goalID)
	if err != nil {
		return nil, err
	}

	return wagers, nil
}
