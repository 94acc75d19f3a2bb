package service

import (
	"context"
	"fmt"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/progress"
	"github.com/duetapp/duet/internal/repository"
)

type ChallengeLeaderboard struct {
	Challenge *model.Challenge       `json:"challenge"`
	Entries   []progress.RankedEntry `json:"entries"`
	Winner    string                 `json:"winner,omitempty"`
}

// GoalStanding compares both partners on one active joint goal.
type GoalStanding struct {
	Goal    *model.Goal            `json:"goal"`
	User    progress.Aggregate     `json:"user"`
	Partner progress.Aggregate     `json:"partner"`
	Entries []progress.RankedEntry `json:"entries"`
	Winner  string                 `json:"winner,omitempty"`
}

type PairingLeaderboard struct {
	PairingID string          `json:"pairingId"`
	PartnerID string          `json:"partnerId"`
	Goals     []*GoalStanding `json:"goals"`
	Winner    string          `json:"winner,omitempty"`
}

type LeaderboardService struct {
	goals      *GoalService
	challenges repository.ChallengeRepository
	progress   repository.ChallengeProgressRepository
	pairings   PairingDirectory
	goalRepo   repository.GoalRepository
}

func NewLeaderboardService(
	goals *GoalService,
	goalRepo repository.GoalRepository,
	challenges repository.ChallengeRepository,
	progressRepo repository.ChallengeProgressRepository,
	pairings PairingDirectory,
) *LeaderboardService {
	return &LeaderboardService{
		goals:      goals,
		goalRepo:   goalRepo,
		challenges: challenges,
		progress:   progressRepo,
		pairings:   pairings,
	}
}

// Challenge ranks both participants of a challenge. The initiator is listed
// first so equal totals rank the initiator ahead.
func (s *LeaderboardService) Challenge(ctx context.Context, challengeID, userID string) (*ChallengeLeaderboard, error) {
	challenge, err := s.challenges.ByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.HasParty(userID) {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, apperr.ErrForbidden)
	}

	rows, err := s.progress.ByChallenge(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge progress: %w", err)
	}

	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.UserID] = row.Total
	}

	entries := []progress.Entry{
		{UserID: challenge.InitiatorID, Total: totals[challenge.InitiatorID]},
		{UserID: challenge.ParticipantID, Total: totals[challenge.ParticipantID]},
	}

	partnerID := challenge.PartnerOf(userID)
	return &ChallengeLeaderboard{
		Challenge: challenge,
		Entries:   progress.Rank(entries, challenge.TargetValue),
		Winner: progress.Winner(
			progress.Round1(progress.Percent(totals[userID], challenge.TargetValue)),
			progress.Round1(progress.Percent(totals[partnerID], challenge.TargetValue)),
		),
	}, nil
}

// Pairing compares the caller with their partner on every active joint goal
// of the pairing. The overall winner compares mean percentages.
func (s *LeaderboardService) Pairing(ctx context.Context, userID string) (*PairingLeaderboard, error) {
	pairing, err := s.pairings.FindActivePairing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pairing: %w", err)
	}
	if pairing == nil {
		return nil, fmt.Errorf("%w: no active pairing", apperr.ErrRelationshipNotFound)
	}
	partnerID := pairing.PartnerOf(userID)

	goals, err := s.goalRepo.ActiveJointGoals(ctx, pairing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load joint goals: %w", err)
	}

	board := &PairingLeaderboard{
		PairingID: pairing.ID,
		PartnerID: partnerID,
		Goals:     make([]*GoalStanding, 0, len(goals)),
	}

	var userSum, partnerSum float64
	for _, goal := range goals {
		user, err := s.goals.Aggregate(ctx, goal, userID)
		if err != nil {
			return nil, err
		}
		partner, err := s.goals.Aggregate(ctx, goal, partnerID)
		if err != nil {
			return nil, err
		}
		userSum += user.Percent
		partnerSum += partner.Percent

		user, partner = user.Rounded(), partner.Rounded()
		board.Goals = append(board.Goals, &GoalStanding{
			Goal:    goal,
			User:    user,
			Partner: partner,
			Entries: progress.Rank([]progress.Entry{
				{UserID: userID, Total: user.Total},
				{UserID: partnerID, Total: partner.Total},
			}, goal.TargetValue),
			Winner: progress.Winner(user.Percent, partner.Percent),
		})
	}

	if n := float64(len(goals)); n > 0 {
		board.Winner = progress.Winner(progress.Round1(userSum/n), progress.Round1(partnerSum/n))
	}

	return board, nil
}
