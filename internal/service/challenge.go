package service

import (
	"context"
	"fmt"
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

type CreateChallengeInput struct {
	ParticipantID string
	Type          string
	Metric        string
	Title         string
	Description   string
	TargetValue   float64
	DurationDays  int
	Reward        string
	StartDate     time.Time
}

// ParticipantProgress is one participant's row with its display percentage.
type ParticipantProgress struct {
	*model.ChallengeProgress
	Percent float64 `json:"percent"`
}

type ChallengeProgressView struct {
	Challenge    *model.Challenge       `json:"challenge"`
	Participants []*ParticipantProgress `json:"participants"`
}

type ChallengeService struct {
	repo     repository.ChallengeRepository
	progress repository.ChallengeProgressRepository
	pairings PairingDirectory
	notifier notify.Notifier
	metrics  *metrics.Manager
	now      func() time.Time
}

func NewChallengeService(
	repo repository.ChallengeRepository,
	progressRepo repository.ChallengeProgressRepository,
	pairings PairingDirectory,
	notifier notify.Notifier,
	metricsManager *metrics.Manager,
) *ChallengeService {
	return &ChallengeService{
		repo:     repo,
		progress: progressRepo,
		pairings: pairings,
		notifier: notifier,
		metrics:  metricsManager,
		now:      utcNow,
	}
}

// Create opens a pending challenge between the initiator and their partner.
// Both progress rows are written in the same transaction as the challenge.
func (s *ChallengeService) Create(ctx context.Context, initiatorID string, in CreateChallengeInput) (*model.Challenge, error) {
	if in.Metric == "" {
		in.Metric = model.DefaultChallengeMetric
	}

	if in.ParticipantID == "" {
		return nil, apperr.Validation("participant is required")
	}
	if in.ParticipantID == initiatorID {
		return nil, apperr.Validation("cannot challenge yourself")
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription("description", in.Description); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription("reward", in.Reward); err != nil {
		return nil, err
	}
	if err := validation.ValidateMetric(in.Metric); err != nil {
		return nil, err
	}
	if err := validation.ValidateTarget(in.TargetValue); err != nil {
		return nil, err
	}
	if err := validation.ValidateDurationDays(in.DurationDays); err != nil {
		return nil, err
	}

	pairing, err := s.pairings.FindActivePairing(ctx, initiatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pairing: %w", err)
	}
	if pairing == nil || pairing.PartnerOf(initiatorID) != in.ParticipantID {
		return nil, fmt.Errorf("%w: no active pairing with participant", apperr.ErrRelationshipNotFound)
	}

	now := s.now()
	start := in.StartDate.UTC()
	if in.StartDate.IsZero() {
		start = now
	}

	challenge := &model.Challenge{
		ID:            uuid.New().String(),
		PairingID:     pairing.ID,
		InitiatorID:   initiatorID,
		ParticipantID: in.ParticipantID,
		Type:          strings.TrimSpace(in.Type),
		Metric:        in.Metric,
		Status:        model.ChallengeStatusPending,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		TargetValue:   in.TargetValue,
		DurationDays:  in.DurationDays,
		Reward:        in.Reward,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, in.DurationDays),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	rows := []*model.ChallengeProgress{
		{ChallengeID: challenge.ID, UserID: initiatorID, UpdatedAt: now},
		{ChallengeID: challenge.ID, UserID: in.ParticipantID, UpdatedAt: now},
	}

	if err := s.repo.CreateWithProgress(ctx, challenge, rows); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.notifier.Publish(ctx, challenge.PairingID, notify.EventChallengeCreated, challenge)
	return challenge, nil
}

// Respond records the participant's accept or decline. It is the only
// user-driven challenge transition.
func (s *ChallengeService) Respond(ctx context.Context, challengeID, userID, decision string) (*model.Challenge, error) {
	challenge, err := s.repo.ByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if userID != challenge.ParticipantID {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, apperr.ErrForbidden)
	}

	next, err := progress.NextChallengeStatus(challenge.Status, decision)
	if err != nil {
		return nil, err
	}

	moved, err := s.repo.Respond(ctx, challengeID, next, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to respond to challenge: %w", err)
	}
	if !moved {
		return nil, progress.ErrChallengeAlreadyResponded
	}
	s.metrics.CounterChallengeResponses.WithLabelValues(next).Inc()

	updated, err := s.repo.ByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, updated.PairingID, notify.EventChallengeUpdated, updated)
	return updated, nil
}

func (s *ChallengeService) party(ctx context.Context, challengeID, userID string) (*model.Challenge, error) {
	challenge, err := s.repo.ByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.HasParty(userID) {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, apperr.ErrForbidden)
	}
	return challenge, nil
}

func (s *ChallengeService) Progress(ctx context.Context, challengeID, userID string) (*ChallengeProgressView, error) {
	challenge, err := s.party(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.progress.ByChallenge(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge progress: %w", err)
	}

	view := &ChallengeProgressView{
		Challenge:    challenge,
		Participants: make([]*ParticipantProgress, 0, len(rows)),
	}
	for _, row := range rows {
		view.Participants = append(view.Participants, &ParticipantProgress{
			ChallengeProgress: row,
			Percent:           progress.Round1(progress.Percent(row.Total, challenge.TargetValue)),
		})
	}

	return view, nil
}

func (s *ChallengeService) Challenges(ctx context.Context, userID string) ([]*model.Challenge, error) {
	return s.repo.ForUser(ctx, userID)
}
