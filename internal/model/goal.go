package model

import (
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusFailed    = "failed"
)

// Goal is a measurable target pursued by its owner alone or, when PairingID
// is set, jointly with the owner's partner.
type Goal struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	PairingID    *string   `db:"pairing_id" json:"pairingId,omitempty"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description,omitempty"`
	TargetMetric string    `db:"target_metric" json:"targetMetric"`
	TargetValue  float64   `db:"target_value" json:"targetValue"`
	StartDate    time.Time `db:"start_date" json:"startDate"`
	EndDate      time.Time `db:"end_date" json:"endDate"`
	Status       string    `db:"status" json:"status"`
	AutoSync     bool      `db:"auto_sync" json:"autoSync"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func (g *Goal) IsJoint() bool {
	return g.PairingID != nil && *g.PairingID != ""
}

func (g *Goal) IsTerminal() bool {
	return g.Status == GoalStatusCompleted || g.Status == GoalStatusFailed
}

// Covers reports whether the calendar day falls inside the goal window.
func (g *Goal) Covers(day time.Time) bool {
	startDay := g.StartDate.Truncate(24 * time.Hour)
	return !day.Before(startDay) && !day.After(g.EndDate)
}
