package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/metrics"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/notify"
	"github.com/duetapp/duet/internal/progress"
	"github.com/duetapp/duet/internal/repository"
	"github.com/duetapp/duet/internal/validation"
	"github.com/google/uuid"
)

var ErrGoalFailed = apperr.InvalidState("goal has failed")

type CreateGoalInput struct {
	Title        string
	Description  string
	TargetMetric string
	TargetValue  float64
	StartDate    time.Time
	EndDate      time.Time
	Joint        bool
	AutoSync     bool
}

// UpdateGoalInput carries the owner's edits. Nil fields are left unchanged.
type UpdateGoalInput struct {
	Title       *string
	Description *string
	Status      *string
}

// GoalProgress is a goal with the caller's and the partner's aggregates kept
// apart. Percentages are rounded for display.
type GoalProgress struct {
	Goal      *model.Goal         `json:"goal"`
	User      progress.Aggregate  `json:"user"`
	PartnerID string              `json:"partnerId,omitempty"`
	Partner   *progress.Aggregate `json:"partner,omitempty"`
}

// LogResult is returned for a recorded contribution.
type LogResult struct {
	Contribution *model.Contribution `json:"contribution"`
	Goal         *model.Goal         `json:"goal"`
	Progress     progress.Aggregate  `json:"progress"`
	Completed    bool                `json:"completed"`
}

type GoalService struct {
	repo          repository.GoalRepository
	contributions repository.ContributionRepository
	pairings      PairingDirectory
	notifier      notify.Notifier
	metrics       *metrics.Manager
	now           func() time.Time
}

func NewGoalService(
	repo repository.GoalRepository,
	contributions repository.ContributionRepository,
	pairings PairingDirectory,
	notifier notify.Notifier,
	metricsManager *metrics.Manager,
) *GoalService {
	return &GoalService{
		repo:          repo,
		contributions: contributions,
		pairings:      pairings,
		notifier:      notifier,
		metrics:       metricsManager,
		now:           utcNow,
	}
}

func (s *GoalService) Create(ctx context.Context, userID string, in CreateGoalInput) (*model.Goal, error) {
	now := s.now()
	if in.StartDate.IsZero() {
		in.StartDate = now
	}
	if in.TargetMetric == "" {
		in.TargetMetric = model.MetricSteps
	}

	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription("description", in.Description); err != nil {
		return nil, err
	}
	if err := validation.ValidateMetric(in.TargetMetric); err != nil {
		return nil, err
	}
	if err := validation.ValidateTarget(in.TargetValue); err != nil {
		return nil, err
	}
	if err := validation.ValidateWindow(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	goal := &model.Goal{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		TargetMetric: in.TargetMetric,
		TargetValue:  in.TargetValue,
		StartDate:    in.StartDate.UTC(),
		EndDate:      in.EndDate.UTC(),
		Status:       model.GoalStatusActive,
		AutoSync:     in.AutoSync,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if in.Joint {
		pairing, err := s.pairings.FindActivePairing(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up pairing: %w", err)
		}
		if pairing == nil {
			return nil, fmt.Errorf("%w: joint goals need an active pairing", apperr.ErrRelationshipNotFound)
		}
		goal.PairingID = &pairing.ID
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	s.publish(ctx, goal, notify.EventGoalCreated, goal)
	return goal, nil
}

// access loads a goal the user may see and returns the partner sharing it,
// if any. Owners keep access to joint goals after their pairing ended.
func (s *GoalService) access(ctx context.Context, userID, goalID string) (*model.Goal, string, error) {
	goal, err := s.repo.ByID(ctx, goalID)
	if err != nil {
		return nil, "", err
	}

	if !goal.IsJoint() {
		if goal.UserID != userID {
			return nil, "", fmt.Errorf("goal %s: %w", goalID, apperr.ErrForbidden)
		}
		return goal, "", nil
	}

	pairing, err := s.pairings.FindActivePairing(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up pairing: %w", err)
	}
	if pairing != nil && pairing.ID == *goal.PairingID {
		return goal, pairing.PartnerOf(userID), nil
	}
	if goal.UserID == userID {
		return goal, "", nil
	}

	return nil, "", fmt.Errorf("goal %s: %w", goalID, apperr.ErrForbidden)
}

// ByID returns the goal with derived progress for the caller and partner.
func (s *GoalService) ByID(ctx context.Context, userID, goalID string) (*GoalProgress, error) {
	goal, partnerID, err := s.access(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	view := &GoalProgress{Goal: goal, PartnerID: partnerID}

	view.User, err = s.Aggregate(ctx, goal, userID)
	if err != nil {
		return nil, err
	}
	view.User = view.User.Rounded()

	if partnerID != "" {
		agg, err := s.Aggregate(ctx, goal, partnerID)
		if err != nil {
			return nil, err
		}
		agg = agg.Rounded()
		view.Partner = &agg
	}

	return view, nil
}

// Aggregate sums userID's own contributions to the goal. The percentage is
// unrounded.
func (s *GoalService) Aggregate(ctx context.Context, goal *model.Goal, userID string) (progress.Aggregate, error) {
	total, err := s.contributions.Total(ctx, goal.ID, userID)
	if err != nil {
		return progress.Aggregate{}, fmt.Errorf("failed to sum contributions: %w", err)
	}
	return progress.NewAggregate(total, goal.TargetValue), nil
}

// Goals lists the user's own goals and the joint goals of their pairing.
func (s *GoalService) Goals(ctx context.Context, userID, sortBy string) ([]*model.Goal, error) {
	pairing, err := s.pairings.FindActivePairing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pairing: %w", err)
	}

	var pairingID string
	if pairing != nil {
		pairingID = pairing.ID
	}

	return s.repo.Goals(ctx, userID, pairingID, sortBy)
}

// Update applies the owner's edits. Terminal goals are immutable and the only
// status changes an owner may make are active to completed or failed.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, in UpdateGoalInput) (*model.Goal, error) {
	goal, err := s.repo.ByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal %s: %w", goalID, apperr.ErrForbidden)
	}
	if goal.IsTerminal() {
		return nil, repository.ErrGoalNotActive
	}

	if in.Status != nil && *in.Status != goal.Status {
		if !progress.ValidGoalStatus(*in.Status) || *in.Status == model.GoalStatusActive {
			return nil, apperr.Validation("status must be completed or failed")
		}
	}

	next := *goal
	changed := false
	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, err
		}
		next.Title = strings.TrimSpace(*in.Title)
		changed = true
	}
	if in.Description != nil {
		if err := validation.ValidateDescription("description", *in.Description); err != nil {
			return nil, err
		}
		next.Description = *in.Description
		changed = true
	}

	event := notify.EventGoalUpdated
	if in.Status != nil && *in.Status != goal.Status {
		next.Status = *in.Status
		changed = true
		if next.Status == model.GoalStatusCompleted {
			event = notify.EventGoalCompleted
		}
	}

	// Details and status land in one write guarded on the goal still being
	// active, so a lost race leaves the stored goal untouched.
	if changed {
		if err := s.repo.Update(ctx, &next); err != nil {
			return nil, err
		}
		if event == notify.EventGoalCompleted {
			s.metrics.CounterGoalsCompleted.Inc()
		}
	}

	updated, err := s.repo.ByID(ctx, goal.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, updated, event, updated)
	return updated, nil
}

// Log appends a contribution to the ledger and runs the goal state machine
// for the contributor.
func (s *GoalService) Log(ctx context.Context, userID, goalID string, amount float64, note string) (*LogResult, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := validation.ValidateNote(note); err != nil {
		return nil, err
	}

	goal, _, err := s.access(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, goal, userID, amount, note)
}

func (s *GoalService) record(ctx context.Context, goal *model.Goal, userID string, amount float64, note string) (*LogResult, error) {
	if goal.Status == model.GoalStatusFailed {
		return nil, ErrGoalFailed
	}

	contribution := &model.Contribution{
		ID:        uuid.New().String(),
		GoalID:    goal.ID,
		UserID:    userID,
		Amount:    amount,
		Note:      note,
		CreatedAt: s.now(),
	}

	if err := s.contributions.Append(ctx, contribution); err != nil {
		return nil, fmt.Errorf("failed to record contribution: %w", err)
	}

	return s.settle(ctx, goal, userID, contribution)
}

// recordSynced stores a day's running total as that day's single synced
// ledger row. It returns nil when the stored total did not grow.
func (s *GoalService) recordSynced(ctx context.Context, goal *model.Goal, userID, date string, total float64) (*LogResult, error) {
	if goal.Status == model.GoalStatusFailed {
		return nil, ErrGoalFailed
	}

	contribution := &model.Contribution{
		ID:        uuid.New().String(),
		GoalID:    goal.ID,
		UserID:    userID,
		Amount:    total,
		Note:      "synced " + date,
		SyncDate:  &date,
		CreatedAt: s.now(),
	}

	changed, err := s.contributions.UpsertSynced(ctx, contribution)
	if err != nil {
		return nil, fmt.Errorf("failed to record synced contribution: %w", err)
	}
	if !changed {
		return nil, nil
	}

	return s.settle(ctx, goal, userID, contribution)
}

// settle re-aggregates after a ledger write and runs the state machine.
func (s *GoalService) settle(ctx context.Context, goal *model.Goal, userID string, contribution *model.Contribution) (*LogResult, error) {
	s.metrics.CounterContributions.Inc()

	agg, err := s.Aggregate(ctx, goal, userID)
	if err != nil {
		return nil, err
	}

	completed, err := s.evaluate(ctx, goal, agg.Total)
	if err != nil {
		return nil, err
	}

	result := &LogResult{
		Contribution: contribution,
		Goal:         goal,
		Progress:     agg.Rounded(),
		Completed:    completed,
	}

	s.publish(ctx, goal, notify.EventLogAdded, result)
	return result, nil
}

// evaluate runs the goal state machine for a freshly computed total. The
// status write is conditional so only one caller ever observes completion.
func (s *GoalService) evaluate(ctx context.Context, goal *model.Goal, total float64) (bool, error) {
	next := progress.NextGoalStatus(goal.Status, total, goal.TargetValue)
	if next == goal.Status {
		return false, nil
	}

	moved, err := s.repo.TransitionStatus(ctx, goal.ID, goal.Status, next)
	if err != nil {
		return false, fmt.Errorf("failed to transition goal: %w", err)
	}
	if !moved {
		slog.Debug("goal already transitioned", "goal_id", goal.ID)
		if fresh, err := s.repo.ByID(ctx, goal.ID); err == nil {
			*goal = *fresh
		}
		return false, nil
	}

	goal.Status = next
	goal.UpdatedAt = s.now()
	s.metrics.CounterGoalsCompleted.Inc()
	s.publish(ctx, goal, notify.EventGoalCompleted, goal)
	return true, nil
}

func (s *GoalService) Contributions(ctx context.Context, userID, goalID string) ([]*model.Contribution, error) {
	if _, _, err := s.access(ctx, userID, goalID); err != nil {
		return nil, err
	}
	return s.contributions.Entries(ctx, goalID)
}

// SetStatus is the administrative correction path. It bypasses ownership but
// still refuses to leave a terminal state.
func (s *GoalService) SetStatus(ctx context.Context, goalID, status string) (*model.Goal, error) {
	goal, err := s.repo.ByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, goal.UserID, goalID, UpdateGoalInput{Status: &status})
}

// publish sends a goal event to the goal's pairing. Solo goals have nobody
// to notify.
func (s *GoalService) publish(ctx context.Context, goal *model.Goal, event string, payload any) {
	if !goal.IsJoint() {
		return
	}
	s.notifier.Publish(ctx, *goal.PairingID, event, payload)
}
