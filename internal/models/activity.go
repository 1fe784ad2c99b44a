package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityEvent is one observed page visit as reported by the client.
type ActivityEvent struct {
	UserID           string   `json:"user_id"`
	URL              string   `json:"url"`
	Title            *string  `json:"title"`
	Text             *string  `json:"text"`
	StartTS          *float64 `json:"start_ts"`
	EndTS            *float64 `json:"end_ts"`
	DurationSeconds  *float64 `json:"duration_seconds"`
	Clicks           int      `json:"clicks"`
	Keypresses       int      `json:"keypresses"`
	EngagementScore  *float64 `json:"engagement_score"`
	CategoryOverride *string  `json:"category_override"`
}

type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EnrichedRecord is an ActivityEvent after ingestion. Records are never
// mutated once appended to the store.
type EnrichedRecord struct {
	ID uuid.UUID `json:"id"`
	ActivityEvent
	Domain             string       `json:"domain"`
	ReceivedAt         time.Time    `json:"received_at"`
	Sentiment          *LabelScore  `json:"sentiment"`
	ClassifiedCategory *string      `json:"classified_category"`
	ClassifiedScores   []LabelScore `json:"classified_scores,omitempty"`
	CategoryGroup      *string      `json:"category_group"`
	Emotions           []LabelScore `json:"emotions,omitempty"`
}

// EffectiveCategory is the client override when present, else the
// classified category. Empty when neither is set.
func (r *EnrichedRecord) EffectiveCategory() string {
	if r.CategoryOverride != nil {
		if o := strings.TrimSpace(*r.CategoryOverride); o != "" {
			return o
		}
	}
	if r.ClassifiedCategory != nil {
		return *r.ClassifiedCategory
	}
	return ""
}

// Timestamp picks received_at, then end_ts, then start_ts.
func (r *EnrichedRecord) Timestamp() (time.Time, bool) {
	if !r.ReceivedAt.IsZero() {
		return r.ReceivedAt, true
	}
	if r.EndTS != nil {
		return EpochToTime(*r.EndTS), true
	}
	if r.StartTS != nil {
		return EpochToTime(*r.StartTS), true
	}
	return time.Time{}, false
}

// EpochToTime converts fractional epoch seconds without overflowing the
// nanosecond range.
func EpochToTime(sec float64) time.Time {
	whole := int64(sec)
	nanos := int64((sec - float64(whole)) * 1e9)
	return time.Unix(whole, nanos)
}

type IngestResult struct {
	Status   string   `json:"status"`
	Ingested int      `json:"ingested"`
	Warnings []string `json:"warnings,omitempty"`
}

type ActivityList struct {
	UserID string           `json:"user_id"`
	Count  int              `json:"count"`
	Items  []EnrichedRecord `json:"items"`
}

type DeleteResult struct {
	Status  string `json:"status"`
	Removed int    `json:"removed"`
}
