package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cognisense-backend/internal/middleware"
	"cognisense-backend/internal/models"
	"cognisense-backend/internal/repository"
	"cognisense-backend/internal/services"
)

const defaultRulePriority = 1

type RuleRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.DomainCategoryRule, error)
	Create(ctx context.Context, rule *models.DomainCategoryRule) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DomainCategoryRule, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) (bool, error)
}

// RuleHandler manages the authenticated user's domain category rules. Every
// route answers 503 when no durable store is configured.
type RuleHandler struct {
	repo RuleRepository
}

func NewRuleHandler(repo RuleRepository) *RuleHandler {
	return &RuleHandler{repo: repo}
}

func (h *RuleHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if h.repo == nil {
		handleServiceError(w, r, services.ErrNotConfigured)
		return false
	}
	return true
}

func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	userID := middleware.GetUserID(r.Context())

	rules, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list rules", r))
		return
	}
	if rules == nil {
		rules = []models.DomainCategoryRule{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rules),
		"rules": rules,
	})
}

func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	userID := middleware.GetUserID(r.Context())

	var req models.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	pattern := strings.TrimSpace(req.DomainPattern)
	if services.NormalizeDomain(pattern) == "" {
		fields["domain_pattern"] = "domain_pattern is required"
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		fields["category"] = "category is required"
	}
	if len(fields) > 0 {
		handleServiceError(w, r, &services.ValidationError{Fields: fields})
		return
	}

	rule := &models.DomainCategoryRule{
		UserID:        userID,
		DomainPattern: pattern,
		Category:      category,
		Priority:      defaultRulePriority,
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}

	if err := h.repo.Create(r.Context(), rule); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create rule", r))
		return
	}

	writeJSON(w, http.StatusCreated, rule)
}

func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	rule, err := h.owned(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	rule, err := h.owned(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	deleted, err := h.repo.Delete(r.Context(), rule.ID, rule.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete rule", r))
		return
	}
	if !deleted {
		handleServiceError(w, r, &services.NotFoundError{Message: "Rule not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// owned loads the {id} rule and checks it belongs to the caller.
func (h *RuleHandler) owned(r *http.Request) (*models.DomainCategoryRule, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, &services.ValidationError{Fields: map[string]string{"id": "Invalid rule id"}}
	}

	rule, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &services.NotFoundError{Message: "Rule not found"}
	}
	if err != nil {
		return nil, err
	}
	if rule.UserID != middleware.GetUserID(r.Context()) {
		return nil, &services.ForbiddenError{Message: "Rule belongs to another user"}
	}
	return rule, nil
}
