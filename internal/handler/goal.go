package handler

import (
	"net/http"

	"github.com/duetapp/duet/internal/ctxkeys"
	"github.com/duetapp/duet/internal/service"
)

type GoalHandler struct {
	goalService  *service.GoalService
	wagerService *service.WagerService
}

func NewGoalHandler(goalService *service.GoalService, wagerService *service.WagerService) *GoalHandler {
	return &GoalHandler{
		goalService:  goalService,
		wagerService: wagerService,
	}
}

type createGoalRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	TargetMetric string  `json:"targetMetric"`
	TargetValue  float64 `json:"targetValue"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Joint        bool    `json:"joint"`
	AutoSync     bool    `json:"autoSync"`
}

type updateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type contributionRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

type wagerRequest struct {
	Description string `json:"description"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req createGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.Create(r.Context(), userID, service.CreateGoalInput{
		Title:        req.Title,
		Description:  req.Description,
		TargetMetric: req.TargetMetric,
		TargetValue:  req.TargetValue,
		StartDate:    start,
		EndDate:      end,
		Joint:        req.Joint,
		AutoSync:     req.AutoSync,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = "recent"
	}

	goals, err := h.goalService.Goals(r.Context(), userID, sortBy)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	progress, err := h.goalService.ByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req updateGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.Update(r.Context(), userID, r.PathValue("id"), service.UpdateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Log(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req contributionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.goalService.Log(r.Context(), userID, r.PathValue("id"), req.Amount, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *GoalHandler) Contributions(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	contributions, err := h.goalService.Contributions(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contributions)
}

func (h *GoalHandler) PlaceWager(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req wagerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	wager, err := h.wagerService.Place(r.Context(), userID, r.PathValue("id"), req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, wager)
}

func (h *GoalHandler) Wagers(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	wagers, err := h.wagerService.Wagers(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, wagers)
}
