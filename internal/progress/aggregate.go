// Package progress holds the pure rules of the progress engine: normalized
// percentages, the goal and challenge state machines, ranking and the fold of
// external metric reports. Nothing here touches storage.
package progress

import (
	"math"
)

const maxPercent = 100

// Aggregate is one participant's cumulative contribution to a goal.
type Aggregate struct {
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
}

// NewAggregate derives the normalized percentage for total against target.
// The percentage is left unrounded; use Round1 at presentation boundaries.
func NewAggregate(total, target float64) Aggregate {
	return Aggregate{
		Total:   total,
		Percent: Percent(total, target),
	}
}

// Percent returns 100*total/target clamped to [0, 100]. A non-positive target
// yields 0 rather than dividing by zero.
func Percent(total, target float64) float64 {
	if target <= 0 || math.IsNaN(total) {
		return 0
	}
	p := 100 * total / target
	return math.Max(0, math.Min(maxPercent, p))
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Rounded returns a copy with the percentage rounded for display.
func (a Aggregate) Rounded() Aggregate {
	return Aggregate{Total: a.Total, Percent: Round1(a.Percent)}
}
