package progress

import (
	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
)

// NextGoalStatus is the goal state machine. An active goal completes once the
// acting participant's total reaches the target. Terminal states never change.
func NextGoalStatus(current string, total, target float64) string {
	if current != model.GoalStatusActive {
		return current
	}
	if target > 0 && total >= target {
		return model.GoalStatusCompleted
	}
	return current
}

var ErrChallengeAlreadyResponded = apperr.InvalidState("challenge already responded to")

// NextChallengeStatus validates a participant's response to a challenge.
// Only pending challenges accept a response and only active or declined are
// valid decisions.
func NextChallengeStatus(current, decision string) (string, error) {
	if decision != model.ChallengeStatusActive && decision != model.ChallengeStatusDeclined {
		return "", apperr.Validation("decision must be active or declined")
	}
	if current != model.ChallengeStatusPending {
		return "", ErrChallengeAlreadyResponded
	}
	return decision, nil
}

// ChallengeReached reports whether an active challenge should complete given
// one participant's total.
func ChallengeReached(current string, total, target float64) bool {
	return current == model.ChallengeStatusActive && target > 0 && total >= target
}

// ValidGoalStatus reports whether s is a known goal status.
func ValidGoalStatus(s string) bool {
	switch s {
	case model.GoalStatusActive, model.GoalStatusCompleted, model.GoalStatusFailed:
		return true
	}
	return false
}
