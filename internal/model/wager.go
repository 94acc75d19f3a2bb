package model

import (
	"time"
)

// Wager is a free-text stake attached to a joint goal. Resolution is left to the pair.
type Wager struct {
	ID          string    `db:"id" json:"id"`
	PairingID   string    `db:"pairing_id" json:"pairingId"`
	GoalID      string    `db:"goal_id" json:"goalId"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
