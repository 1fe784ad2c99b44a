package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cognisense-backend/internal/models"
)

type SessionWriter interface {
	InsertSession(ctx context.Context, row *models.SessionRow) error
}

type AnalysisWriter interface {
	UpsertAnalysis(ctx context.Context, row *models.AnalysisRow) error
}

// Persister writes session and analysis rows to the durable store.
type Persister struct {
	sessions SessionWriter
	analyses AnalysisWriter
	now      func() time.Time
}

func NewPersister(sessions SessionWriter, analyses AnalysisWriter) *Persister {
	return &Persister{sessions: sessions, analyses: analyses, now: time.Now}
}

// Persist inserts the session row and, when the record carries any
// analysis, upserts the per-URL analysis row. Both are attempted; errors
// are joined.
func (p *Persister) Persist(ctx context.Context, rec *models.EnrichedRecord) error {
	var errs []error

	start, end := sessionWindow(rec, p.now())
	session := &models.SessionRow{
		ID:              uuid.New(),
		UserID:          rec.UserID,
		URL:             rec.URL,
		Domain:          rec.Domain,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: rec.DurationSeconds,
		Clicks:          rec.Clicks,
		Keypresses:      rec.Keypresses,
		CreatedAt:       p.now(),
	}
	if err := p.sessions.InsertSession(ctx, session); err != nil {
		errs = append(errs, fmt.Errorf("failed to insert session: %w", err))
	}

	if hasAnalysis(rec) {
		row := &models.AnalysisRow{
			URL:            rec.URL,
			Domain:         rec.Domain,
			Category:       rec.ClassifiedCategory,
			CategoryGroup:  rec.CategoryGroup,
			EmotionBuckets: ProjectEmotions(rec.Emotions),
			UpdatedAt:      p.now(),
		}
		if rec.Sentiment != nil {
			label, score := rec.Sentiment.Label, rec.Sentiment.Score
			row.SentimentLabel = &label
			row.SentimentScore = &score
		}
		if err := p.analyses.UpsertAnalysis(ctx, row); err != nil {
			errs = append(errs, fmt.Errorf("failed to upsert analysis: %w", err))
		}
	}

	return errors.Join(errs...)
}

func hasAnalysis(rec *models.EnrichedRecord) bool {
	return rec.Sentiment != nil || rec.ClassifiedCategory != nil || len(rec.Emotions) > 0
}

// sessionWindow reconstructs start/end from whichever of start_ts, end_ts
// and duration are present. Missing both ends means "now".
func sessionWindow(rec *models.EnrichedRecord, now time.Time) (time.Time, time.Time) {
	var dur time.Duration
	hasDur := rec.DurationSeconds != nil && *rec.DurationSeconds >= 0
	if hasDur {
		dur = time.Duration(*rec.DurationSeconds * float64(time.Second))
	}

	switch {
	case rec.StartTS != nil && rec.EndTS != nil:
		return epoch(*rec.StartTS), epoch(*rec.EndTS)
	case rec.StartTS != nil:
		start := epoch(*rec.StartTS)
		if hasDur {
			return start, start.Add(dur)
		}
		return start, start
	case rec.EndTS != nil:
		end := epoch(*rec.EndTS)
		if hasDur {
			return end.Add(-dur), end
		}
		return end, end
	case hasDur:
		return now.Add(-dur), now
	default:
		return now, now
	}
}

func epoch(sec float64) time.Time {
	return models.EpochToTime(sec).UTC()
}

var emotionAliases = map[string]string{
	"happy":   "happy",
	"joy":     "happy",
	"sad":     "sad",
	"sadness": "sad",
	"angry":   "angry",
	"anger":   "angry",
	"neutral": "neutral",
}

// ProjectEmotions folds a ranked emotion list into the four stored buckets.
// Labels with no bucket are dropped; the highest score wins per bucket.
func ProjectEmotions(emotions []models.LabelScore) models.EmotionBuckets {
	var b models.EmotionBuckets
	for _, e := range emotions {
		var slot *float64
		switch emotionAliases[strings.ToLower(strings.TrimSpace(e.Label))] {
		case "happy":
			slot = &b.Happy
		case "sad":
			slot = &b.Sad
		case "angry":
			slot = &b.Angry
		case "neutral":
			slot = &b.Neutral
		default:
			continue
		}
		if e.Score > *slot {
			*slot = e.Score
		}
	}
	return b
}
