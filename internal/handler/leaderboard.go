package handler

import (
	"net/http"

	"github.com/duetapp/duet/internal/ctxkeys"
	"github.com/duetapp/duet/internal/service"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

func (h *LeaderboardHandler) Pairing(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	board, err := h.leaderboardService.Pairing(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}
