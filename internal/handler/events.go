package handler

import (
	"fmt"
	"net/http"

	"github.com/duetapp/duet/internal/apperr"
	"github.com/duetapp/duet/internal/ctxkeys"
	"github.com/duetapp/duet/internal/notify"
	"github.com/duetapp/duet/internal/service"
)

type EventsHandler struct {
	hub      *notify.Hub
	pairings service.PairingDirectory
}

func NewEventsHandler(hub *notify.Hub, pairings service.PairingDirectory) *EventsHandler {
	return &EventsHandler{
		hub:      hub,
		pairings: pairings,
	}
}

// Stream subscribes the caller's websocket to their active pairing's events.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	pairing, err := h.pairings.FindActivePairing(r.Context(), userID)
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to look up pairing: %w", err))
		return
	}
	if pairing == nil {
		writeError(w, r, fmt.Errorf("%w: no active pairing", apperr.ErrRelationshipNotFound))
		return
	}

	h.hub.ServeWS(w, r, pairing.ID)
}
