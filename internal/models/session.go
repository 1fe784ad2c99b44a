package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionRow is the durable record of a single page visit.
type SessionRow struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	URL             string    `json:"url"`
	Domain          string    `json:"domain"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds *float64  `json:"duration_seconds"`
	Clicks          int       `json:"clicks"`
	Keypresses      int       `json:"keypresses"`
	CreatedAt       time.Time `json:"created_at"`
}
