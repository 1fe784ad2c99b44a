package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cognisense-backend/internal/models"
	"cognisense-backend/internal/services"
)

type Summarizer interface {
	Summary(userID string, period services.Period) (*models.SummaryView, bool)
	SitesTable(userID string, limit int) []models.SiteRow
}

type DashboardHandler struct {
	agg Summarizer
}

func NewDashboardHandler(agg Summarizer) *DashboardHandler {
	return &DashboardHandler{agg: agg}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	period, err := services.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	view, ok := h.agg.Summary(userID, period)
	if !ok {
		writeJSON(w, http.StatusOK, models.SummaryResponse{
			UserID:  userID,
			Period:  string(period),
			Summary: map[string]interface{}{},
		})
		return
	}

	writeJSON(w, http.StatusOK, models.SummaryResponse{UserID: userID, Summary: view})
}

func (h *DashboardHandler) Sites(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit, err := parseLimit(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	sites := h.agg.SitesTable(userID, limit)
	if sites == nil {
		sites = []models.SiteRow{}
	}

	writeJSON(w, http.StatusOK, models.SitesResponse{UserID: userID, Count: len(sites), Sites: sites})
}
