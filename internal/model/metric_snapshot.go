package model

import (
	"time"
)

const (
	MetricSteps     = "steps"
	MetricHeartRate = "heart_rate"
)

// SyncDateLayout is the calendar-day format used for metric reports.
const SyncDateLayout = "2006-01-02"

// Metrics maps a metric key (steps, heart_rate, active_minutes, ...) to the
// value an external source reported for a day. Totals are running totals.
type Metrics map[string]float64

// MetricSnapshot is the last report received for a user and day.
type MetricSnapshot struct {
	UserID    string    `db:"user_id" json:"userId"`
	Date      string    `db:"date" json:"date"`
	Metrics   Metrics   `db:"-" json:"metrics"`
	RawJSON   string    `db:"metrics" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
