package model

import (
	"time"
)

// Contribution is one immutable ledger entry against a goal.
type Contribution struct {
	ID        string    `db:"id" json:"id"`
	GoalID    string    `db:"goal_id" json:"goalId"`
	UserID    string    `db:"user_id" json:"userId"`
	Amount    float64   `db:"amount" json:"amount"`
	Note      string    `db:"note" json:"note,omitempty"`
	SyncDate  *string   `db:"sync_date" json:"syncDate,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
