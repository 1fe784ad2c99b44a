package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cognisense-backend/internal/models"
)

// Ingester is the slice of services.IngestService the tracking routes use.
type Ingester interface {
	Ingest(ctx context.Context, ev models.ActivityEvent) (*models.IngestResult, error)
	Recent(userID string, limit int) ([]models.EnrichedRecord, int)
	Clear(userID string) int
}

type TrackingHandler struct {
	ingest Ingester
}

func NewTrackingHandler(ingest Ingester) *TrackingHandler {
	return &TrackingHandler{ingest: ingest}
}

func (h *TrackingHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var ev models.ActivityEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := h.ingest.Ingest(r.Context(), ev)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *TrackingHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit, err := parseLimit(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	items, total := h.ingest.Recent(userID, limit)
	if items == nil {
		items = []models.EnrichedRecord{}
	}

	writeJSON(w, http.StatusOK, models.ActivityList{
		UserID: userID,
		Count:  total,
		Items:  items,
	})
}

func (h *TrackingHandler) ClearActivity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	removed := h.ingest.Clear(userID)

	writeJSON(w, http.StatusOK, models.DeleteResult{Status: "ok", Removed: removed})
}
