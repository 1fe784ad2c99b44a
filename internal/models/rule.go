package models

import (
	"time"

	"github.com/google/uuid"
)

type DomainCategoryRule struct {
	ID            uuid.UUID `json:"id"`
	UserID        string    `json:"user_id"`
	DomainPattern string    `json:"domain_pattern"`
	Category      string    `json:"category"`
	Priority      int       `json:"priority"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateRuleRequest struct {
	DomainPattern string `json:"domain_pattern"`
	Category      string `json:"category"`
	Priority      *int   `json:"priority"`
}
