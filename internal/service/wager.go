package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/notify"
	"github.com/duetapp/duet/internal/repository"
	"github.com/duetapp/duet/internal/validation"
	"github.com/google/uuid"
)

var ErrWagerNeedsJointGoal = apperr.InvalidState("wagers can only be placed on joint goals")

type WagerService struct {
	repo     repository.WagerRepository
	goals    *GoalService
	notifier notify.Notifier
}

func NewWagerService(repo repository.WagerRepository, goals *GoalService, notifier notify.Notifier) *WagerService {
	return &WagerService{
		repo:     repo,
		goals:    goals,
		notifier: notifier,
	}
}

// Place attaches a free-text stake to a joint goal. Only current members of
// the goal's pairing may place one.
func (s *WagerService) Place(ctx context.Context, userID, goalID, description string) (*model.Wager, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.Validation("description is required")
	}
	if err := validation.ValidateDescription("description", description); err != nil {
		return nil, err
	}

	goal, partnerID, err := s.goals.access(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.IsJoint() {
		return nil, ErrWagerNeedsJointGoal
	}
	if partnerID == "" {
		return nil, fmt.Errorf("goal %s: %w", goalID, apperr.ErrForbidden)
	}

	wager := &model.Wager{
		ID:          uuid.New().String(),
		PairingID:   *goal.PairingID,
		GoalID:      goal.ID,
		CreatedBy:   userID,
		Description: description,
		CreatedAt:   s.goals.now(),
	}

	if err := s.repo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	s.notifier.Publish(ctx, wager.PairingID, notify.EventBetPlaced, wager)
	return wager, nil
}

func (s *WagerService) Wagers(ctx context.Context, userID, goalID string) ([]*model.Wager, error) {
	if _, _, err := s.goals.access(ctx, userID, goalID); err != nil {
		return nil, err
	}
	return s.repo.ByGoal(ctx, goalID)
}
