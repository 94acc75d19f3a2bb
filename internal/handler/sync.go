package handler

import (
	"net/http"
	"time"

	"github.com/duetapp/duet/internal/ctxkeys"
	"github.com/duetapp/duet/internal/model"
	"github.com/duetapp/duet/internal/service"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// syncRequest takes arbitrary metrics plus the two shorthand fields wearable
// bridges send. Shorthand values win over the same key in Metrics.
type syncRequest struct {
	Date       string        `json:"date"`
	Metrics    model.Metrics `json:"metrics"`
	StepsTotal *float64      `json:"stepsTotal"`
	HeartRate  *float64      `json:"heartRate"`
}

func (r syncRequest) metrics() model.Metrics {
	m := model.Metrics{}
	for k, v := range r.Metrics {
		m[k] = v
	}
	if r.StepsTotal != nil {
		m[model.MetricSteps] = *r.StepsTotal
	}
	if r.HeartRate != nil {
		m[model.MetricHeartRate] = *r.HeartRate
	}
	return m
}

func (h *SyncHandler) ApplyMetrics(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req syncRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Date == "" {
		req.Date = time.Now().UTC().Format(model.SyncDateLayout)
	}

	result, err := h.syncService.ApplyExternalMetrics(r.Context(), userID, req.Date, req.metrics())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SyncHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	snapshot, err := h.syncService.Snapshot(r.Context(), userID, r.PathValue("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
