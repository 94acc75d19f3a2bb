package model

import (
	"time"
)

const (
	ChallengeStatusPending   = "pending"
	ChallengeStatusActive    = "active"
	ChallengeStatusDeclined  = "declined"
	ChallengeStatusCompleted = "completed"
)

const DefaultChallengeMetric = "steps"

// Challenge is a time-bounded joint activity proposed by the initiator and
// accepted or declined by the participant. Type is an open-ended tag.
type Challenge struct {
	ID            string     `db:"id" json:"id"`
	PairingID     string     `db:"pairing_id" json:"pairingId"`
	InitiatorID   string     `db:"initiator_id" json:"initiatorId"`
	ParticipantID string     `db:"participant_id" json:"participantId"`
	Type          string     `db:"type" json:"type"`
	Metric        string     `db:"metric" json:"metric"`
	Status        string     `db:"status" json:"status"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description,omitempty"`
	TargetValue   float64    `db:"target_value" json:"targetValue"`
	DurationDays  int        `db:"duration_days" json:"durationDays"`
	Reward        string     `db:"reward" json:"reward,omitempty"`
	StartDate     time.Time  `db:"start_date" json:"startDate"`
	EndDate       time.Time  `db:"end_date" json:"endDate"`
	DeclinedAt    *time.Time `db:"declined_at" json:"declinedAt,omitempty"`
	RespondedAt   *time.Time `db:"responded_at" json:"respondedAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

func (c *Challenge) HasParty(userID string) bool {
	return userID == c.InitiatorID || userID == c.ParticipantID
}

// PartnerOf returns the other party of the challenge.
func (c *Challenge) PartnerOf(userID string) string {
	if userID == c.InitiatorID {
		return c.ParticipantID
	}
	return c.InitiatorID
}

func (c *Challenge) Ended(now time.Time) bool {
	return !now.Before(c.EndDate)
}

// Started reports whether the calendar day is on or after the challenge's
// first day.
func (c *Challenge) Started(day time.Time) bool {
	return !day.Before(c.StartDate.Truncate(24 * time.Hour))
}

// ChallengeProgress holds one participant's cumulative metrics for a challenge.
// Version is bumped on every write and guards concurrent folds. CountedDays
// lists the comma separated sync dates already counted in DaysCompleted.
type ChallengeProgress struct {
	ChallengeID    string    `db:"challenge_id" json:"challengeId"`
	UserID         string    `db:"user_id" json:"userId"`
	Total          float64   `db:"total" json:"total"`
	AvgHeartRate   *float64  `db:"avg_heart_rate" json:"avgHeartRate,omitempty"`
	DaysCompleted  int       `db:"days_completed" json:"daysCompleted"`
	MaxMetricValue float64   `db:"max_metric_value" json:"maxMetricValue"`
	LastSyncDate   string    `db:"last_sync_date" json:"lastSyncDate,omitempty"`
	CountedDays    string    `db:"counted_days" json:"-"`
	Version        int64     `db:"version" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
