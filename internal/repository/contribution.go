package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/duetapp/duet/internal/model"
	"github.com/jmoiron/sqlx"
)

// ContributionRepository is the append-only progress ledger.
type ContributionRepository interface {
	Append(ctx context.Context, c *model.Contribution) error
	Entries(ctx context.Context, goalID string) ([]*model.Contribution, error)
	Total(ctx context.Context, goalID, userID string) (float64, error)
	UpsertSynced(ctx context.Context, c *model.Contribution) (bool, error)
}

type contributionRepository struct {
	db *sqlx.DB
}

func NewContributionRepository(db *sqlx.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) Append(ctx context.Context, c *model.Contribution) error {
	query := `INSERT INTO contributions (id, goal_id, user_id, amount, note, sync_date, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, c.ID, c.GoalID, c.UserID, c.Amount, c.Note, c.SyncDate, c.CreatedAt)
	return err
}

func (r *contributionRepository) Entries(ctx context.Context, goalID string) ([]*model.Contribution, error) {
	var entries []*model.Contribution
	query := `SELECT * FROM contributions WHERE goal_id = $1 ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &entries, query, goalID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Total sums userID's own contributions to a goal.
func (r *contributionRepository) Total(ctx context.Context, goalID, userID string) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM contributions WHERE goal_id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &total, query, goalID, userID)
	return total, err
}

// UpsertSynced keeps one ledger row per goal, user and sync date holding the
// highest running total reported for that day. It reports whether the stored
// amount changed; on change c is refreshed from the stored row.
func (r *contributionRepository) UpsertSynced(ctx context.Context, c *model.Contribution) (bool, error) {
	if c.SyncDate == nil {
		return false, errors.New("synced contribution needs a sync date")
	}

	query := `INSERT INTO contributions (id, goal_id, user_id, amount, note, sync_date, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (goal_id, user_id, sync_date) WHERE sync_date IS NOT NULL
	          DO UPDATE SET amount = excluded.amount, created_at = excluded.created_at
	          WHERE excluded.amount > contributions.amount
	          RETURNING *`

	stored := &model.Contribution{}
	err := r.db.GetContext(ctx, stored, query, c.ID, c.GoalID, c.UserID, c.Amount, c.Note, c.SyncDate, c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	*c = *stored
	return true, nil
}
