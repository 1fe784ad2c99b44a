package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognisense-backend/internal/models"
)

func TestProjectEmotions(t *testing.T) {
	b := ProjectEmotions([]models.LabelScore{
		{Label: "Joy", Score: 0.5},
		{Label: "happy", Score: 0.7},
		{Label: "sadness", Score: 0.1},
		{Label: "anger", Score: 0.05},
		{Label: "fear", Score: 0.9},
		{Label: "surprise", Score: 0.4},
	})

	assert.InDelta(t, 0.7, b.Happy, 1e-9)
	assert.InDelta(t, 0.1, b.Sad, 1e-9)
	assert.InDelta(t, 0.05, b.Angry, 1e-9)
	assert.InDelta(t, 0.0, b.Neutral, 1e-9)
}

func TestSessionWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(sec float64) time.Time { return time.Unix(int64(sec), 0).UTC() }

	tests := []struct {
		name      string
		rec       models.EnrichedRecord
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"start and end", models.EnrichedRecord{ActivityEvent: models.ActivityEvent{StartTS: ptr(100.0), EndTS: ptr(160.0)}}, at(100), at(160)},
		{"start and duration", models.EnrichedRecord{ActivityEvent: models.ActivityEvent{StartTS: ptr(100.0), DurationSeconds: ptr(30.0)}}, at(100), at(130)},
		{"end and duration", models.EnrichedRecord{ActivityEvent: models.ActivityEvent{EndTS: ptr(100.0), DurationSeconds: ptr(30.0)}}, at(70), at(100)},
		{"duration only", models.EnrichedRecord{ActivityEvent: models.ActivityEvent{DurationSeconds: ptr(60.0)}}, now.Add(-time.Minute), now},
		{"nothing", models.EnrichedRecord{}, now, now},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := sessionWindow(&tc.rec, now)
			assert.True(t, tc.wantStart.Equal(start), "start %v", start)
			assert.True(t, tc.wantEnd.Equal(end), "end %v", end)
		})
	}
}

func TestSessionWindow_LargeEpochDoesNotOverflow(t *testing.T) {
	// Millisecond timestamps sent as seconds land far in the future, never
	// wrap into the past.
	rec := models.EnrichedRecord{ActivityEvent: models.ActivityEvent{StartTS: ptr(1.7e12), EndTS: ptr(1.7e12 + 60)}}

	start, end := sessionWindow(&rec, time.Now())

	assert.Equal(t, int64(1.7e12), start.Unix())
	assert.True(t, start.After(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 60*time.Second, end.Sub(start))
}

func TestEpoch_FractionalSeconds(t *testing.T) {
	got := epoch(1000.25)

	assert.Equal(t, int64(1000), got.Unix())
	assert.Equal(t, 250*time.Millisecond, time.Duration(got.Nanosecond()))
	assert.Equal(t, time.UTC, got.Location())
}

func TestPersist_WritesSessionAndAnalysis(t *testing.T) {
	w := &fakeWriters{}
	p := NewPersister(w, w)

	rec := &models.EnrichedRecord{
		ActivityEvent:      models.ActivityEvent{UserID: "u1", URL: "https://a.com", Clicks: 3},
		Domain:             "a.com",
		Sentiment:          &models.LabelScore{Label: "NEGATIVE", Score: 0.8},
		ClassifiedCategory: ptr("News"),
		Emotions:           []models.LabelScore{{Label: "anger", Score: 0.6}},
	}
	require.NoError(t, p.Persist(context.Background(), rec))

	require.Len(t, w.sessions, 1)
	assert.Equal(t, "u1", w.sessions[0].UserID)
	assert.Equal(t, 3, w.sessions[0].Clicks)

	require.Len(t, w.analyses, 1)
	assert.Equal(t, "https://a.com", w.analyses[0].URL)
	assert.Equal(t, "NEGATIVE", *w.analyses[0].SentimentLabel)
	assert.InDelta(t, 0.6, w.analyses[0].Angry, 1e-9)
}

func TestPersist_SkipsAnalysisWithoutEnrichment(t *testing.T) {
	w := &fakeWriters{}
	p := NewPersister(w, w)

	require.NoError(t, p.Persist(context.Background(), &models.EnrichedRecord{
		ActivityEvent: models.ActivityEvent{UserID: "u1", URL: "https://a.com"},
	}))

	assert.Len(t, w.sessions, 1)
	assert.Empty(t, w.analyses)
}

func TestPersist_SessionErrorStillUpserts(t *testing.T) {
	w := &fakeWriters{sessionErr: errBoom}
	p := NewPersister(w, w)

	err := p.Persist(context.Background(), &models.EnrichedRecord{
		ActivityEvent:      models.ActivityEvent{UserID: "u1", URL: "https://a.com"},
		ClassifiedCategory: ptr("News"),
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, w.analyses, 1)
}
