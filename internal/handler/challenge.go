package handler

import (
	"net/http"

	"github.com/duetapp/duet/internal/ctxkeys"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/service"
)

type ChallengeHandler struct {
	challengeService   *service.ChallengeService
	leaderboardService *service.LeaderboardService
}

func NewChallengeHandler(challengeService *service.ChallengeService, leaderboardService *service.LeaderboardService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService:   challengeService,
		leaderboardService: leaderboardService,
	}
}

type createChallengeRequest struct {
	ParticipantID string  `json:"participantId"`
	Type          string  `json:"type"`
	Metric        string  `json:"metric"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	TargetValue   float64 `json:"targetValue"`
	DurationDays  int     `json:"durationDays"`
	Reward        string  `json:"reward"`
	StartDate     string  `json:"startDate"`
}

type respondRequest struct {
	Decision string `json:"decision"`
}

// decisions accepts the verb forms clients send alongside the status names.
var decisions = map[string]string{
	"accept":                      model.ChallengeStatusActive,
	"decline":                     model.ChallengeStatusDeclined,
	model.ChallengeStatusActive:   model.ChallengeStatusActive,
	model.ChallengeStatusDeclined: model.ChallengeStatusDeclined,
}

func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req createChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	challenge, err := h.challengeService.Create(r.Context(), userID, service.CreateChallengeInput{
		ParticipantID: req.ParticipantID,
		Type:          req.Type,
		Metric:        req.Metric,
		Title:         req.Title,
		Description:   req.Description,
		TargetValue:   req.TargetValue,
		DurationDays:  req.DurationDays,
		Reward:        req.Reward,
		StartDate:     start,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, challenge)
}

func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	challenges, err := h.challengeService.Challenges(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req respondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	decision, ok := decisions[req.Decision]
	if !ok {
		// Unknown decisions are rejected by the state machine.
		decision = req.Decision
	}

	challenge, err := h.challengeService.Respond(r.Context(), r.PathValue("id"), userID, decision)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, challenge)
}

func (h *ChallengeHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	view, err := h.challengeService.Progress(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *ChallengeHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	board, err := h.leaderboardService.Challenge(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}
