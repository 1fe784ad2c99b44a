package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cognisense-backend/internal/models"
	"cognisense-backend/internal/repository"
	"cognisense-backend/internal/services"
)

type TextAnalyzer interface {
	Analyze(ctx context.Context, text string, opts services.AnalyzeOptions) (*models.Analysis, error)
	AnalyzeBatch(ctx context.Context, inputs []services.BatchInput) ([]models.BatchItem, error)
}

type AnalysisReader interface {
	GetAnalysis(ctx context.Context, url string) (*models.AnalysisRow, error)
}

type ContentHandler struct {
	analyzer TextAnalyzer
	stored   AnalysisReader
}

// NewContentHandler builds the content routes. stored may be nil when no
// durable store is configured.
func NewContentHandler(analyzer TextAnalyzer, stored AnalysisReader) *ContentHandler {
	return &ContentHandler{analyzer: analyzer, stored: stored}
}

func (h *ContentHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "pong",
		"api_version": "v1",
	})
}

func (h *ContentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.Text, optionsFor(req))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ContentHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	inputs := make([]services.BatchInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, services.BatchInput{Text: item.Text, Options: optionsFor(item)})
	}

	results, err := h.analyzer.AnalyzeBatch(r.Context(), inputs)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.BatchAnalyzeResponse{Count: len(results), Results: results})
}

// Stored returns the durable analysis row for ?url=.
func (h *ContentHandler) Stored(w http.ResponseWriter, r *http.Request) {
	if h.stored == nil {
		handleServiceError(w, r, services.ErrNotConfigured)
		return
	}

	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		handleServiceError(w, r, &services.ValidationError{Fields: map[string]string{"url": "url is required"}})
		return
	}

	row, err := h.stored.GetAnalysis(r.Context(), url)
	if errors.Is(err, repository.ErrNotFound) {
		handleServiceError(w, r, &services.NotFoundError{Message: "No analysis stored for this URL"})
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, row)
}

func optionsFor(req models.AnalyzeRequest) services.AnalyzeOptions {
	opts := services.AnalyzeOptions{
		URL:          req.URL,
		Sentiment:    boolOr(req.IncludeSentiment, true),
		Category:     boolOr(req.IncludeCategory, true),
		Emotions:     boolOr(req.IncludeEmotions, true),
		Productivity: boolOr(req.IncludeProductivity, false),
	}
	if req.CategoryOverride != nil {
		opts.Override = strings.TrimSpace(*req.CategoryOverride)
	}
	return opts
}
