package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognisense-backend/internal/models"
	"cognisense-backend/internal/store"
)

func stored(url string, dur float64, received time.Time, category, sentiment string) models.EnrichedRecord {
	rec := models.EnrichedRecord{
		ActivityEvent: models.ActivityEvent{UserID: "u1", URL: url, DurationSeconds: &dur},
		ReceivedAt:    received,
	}
	if category != "" {
		rec.ClassifiedCategory = &category
	}
	if sentiment != "" {
		rec.Sentiment = &models.LabelScore{Label: sentiment, Score: 0.9}
	}
	return rec
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	p, err = ParsePeriod("Daily")
	require.NoError(t, err)
	assert.Equal(t, PeriodDaily, p)

	_, err = ParsePeriod("monthly")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSummary_NoRecords(t *testing.T) {
	a := NewAggregator(store.NewActivityStore())

	view, ok := a.Summary("nobody", PeriodWeekly)

	assert.False(t, ok)
	assert.Nil(t, view)
}

func TestSummary_WindowAndProportions(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	s := store.NewActivityStore()
	s.Append(stored("https://news.com", 60, now.Add(-time.Hour), "News", "POSITIVE"))
	s.Append(stored("https://news.com", 60, now.Add(-2*time.Hour), "Finance", "NEGATIVE"))
	s.Append(stored("https://code.dev", 30, now.Add(-3*time.Hour), "Programming", "POSITIVE"))
	s.Append(stored("https://old.com", 500, now.Add(-3*24*time.Hour), "Gaming", "NEGATIVE"))

	a := NewAggregator(s)
	a.now = func() time.Time { return now }

	daily, ok := a.Summary("u1", PeriodDaily)
	require.True(t, ok)
	assert.Equal(t, "daily", daily.Period)
	assert.Equal(t, 3, daily.RecordsCounted)
	assert.InDelta(t, 150.0, daily.TotalTimeSeconds, 1e-9)
	require.Len(t, daily.TopSites, 2)
	assert.Equal(t, "https://news.com", daily.TopSites[0].Site)
	assert.InDelta(t, 120.0, daily.TopSites[0].TimeSeconds, 1e-9)

	var catSum float64
	for _, c := range daily.Categories {
		catSum += c.Proportion
	}
	assert.InDelta(t, 1.0, catSum, 1e-9)

	var sentSum float64
	for _, se := range daily.Sentiments {
		sentSum += se.Proportion
	}
	assert.InDelta(t, 1.0, sentSum, 1e-9)
	assert.Equal(t, "POSITIVE", daily.Sentiments[0].Sentiment)
	assert.Equal(t, 2, daily.Sentiments[0].Count)

	weekly, ok := a.Summary("u1", PeriodWeekly)
	require.True(t, ok)
	assert.Equal(t, 4, weekly.RecordsCounted)
	assert.Equal(t, "https://old.com", weekly.TopSites[0].Site)
}

func TestSummary_EmptyWindowHasEmptyLists(t *testing.T) {
	now := time.Now()
	s := store.NewActivityStore()
	s.Append(stored("https://old.com", 10, now.Add(-30*24*time.Hour), "News", "POSITIVE"))

	view, ok := NewAggregator(s).Summary("u1", PeriodWeekly)

	require.True(t, ok)
	assert.Equal(t, 0, view.RecordsCounted)
	assert.NotNil(t, view.TopSites)
	assert.Empty(t, view.TopSites)
	assert.Empty(t, view.Categories)
	assert.Empty(t, view.Sentiments)
}

func TestSummary_ZeroDurationWeighsOne(t *testing.T) {
	s := store.NewActivityStore()
	s.Append(stored("https://a.com", 0, time.Now(), "News", ""))
	s.Append(stored("https://b.com", 3, time.Now(), "Music", ""))

	view, _ := NewAggregator(s).Summary("u1", PeriodDaily)

	require.Len(t, view.Categories, 2)
	assert.InDelta(t, 1.0, view.Categories[0].Value, 1e-9)
	assert.InDelta(t, 0.25, view.Categories[0].Proportion, 1e-9)
	assert.InDelta(t, 0.75, view.Categories[1].Proportion, 1e-9)
}

func TestSummary_ScenarioAfterIngest(t *testing.T) {
	f := newIngestFixture(true)
	f.rules.rules = []models.DomainCategoryRule{rule("news.com", "Finance", 2)}
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, models.ActivityEvent{UserID: "u1", URL: "https://news.com", Text: ptr("a"), DurationSeconds: ptr(60.0)})
	require.NoError(t, err)
	_, err = f.svc.Ingest(ctx, models.ActivityEvent{UserID: "u1", URL: "https://news.com", Text: ptr("b"), DurationSeconds: ptr(60.0)})
	require.NoError(t, err)

	view, ok := NewAggregator(f.store).Summary("u1", PeriodDaily)
	require.True(t, ok)
	assert.Equal(t, 2, view.RecordsCounted)
	assert.InDelta(t, 120.0, view.TotalTimeSeconds, 1e-9)
	assert.Len(t, view.TopSites, 1)
}

func TestSitesTable(t *testing.T) {
	now := time.Now()
	s := store.NewActivityStore()
	s.Append(stored("https://a.com", 10, now, "", ""))
	s.Append(stored("https://a.com", 15, now, "News", ""))
	s.Append(stored("https://b.com", 40, now.Add(-365*24*time.Hour), "Music", ""))
	s.Append(stored("", 1, now, "", ""))

	rows := NewAggregator(s).SitesTable("u1", 100)

	require.Len(t, rows, 3)
	assert.Equal(t, "https://b.com", rows[0].Site)
	assert.Equal(t, "https://a.com", rows[1].Site)
	assert.Equal(t, 2, rows[1].Visits)
	assert.InDelta(t, 25.0, rows[1].TimeSeconds, 1e-9)
	assert.Equal(t, "News", *rows[1].Category)
	assert.Equal(t, "unknown", rows[2].Site)
	assert.Nil(t, rows[2].Category)

	assert.Len(t, NewAggregator(s).SitesTable("u1", 1), 1)
}

func TestSummary_BlankOverrideUsesClassifiedCategory(t *testing.T) {
	f := newIngestFixture(true)

	_, err := f.svc.Ingest(context.Background(), models.ActivityEvent{
		UserID: "u1", URL: "https://news.com", Text: ptr("stocks"), DurationSeconds: ptr(30.0), CategoryOverride: ptr("   "),
	})
	require.NoError(t, err)

	items, _ := f.store.Recent("u1", 1)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].CategoryOverride)
	assert.Equal(t, "News", *items[0].ClassifiedCategory)

	agg := NewAggregator(f.store)
	view, ok := agg.Summary("u1", PeriodDaily)
	require.True(t, ok)
	require.Len(t, view.Categories, 1)
	assert.Equal(t, "News", view.Categories[0].Category)

	rows := agg.SitesTable("u1", 10)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Category)
	assert.Equal(t, "News", *rows[0].Category)
}

func TestSummary_WhitespaceOverrideOnStoredRecord(t *testing.T) {
	s := store.NewActivityStore()
	rec := stored("https://a.com", 10, time.Now(), "Music", "")
	rec.CategoryOverride = ptr("  ")
	s.Append(rec)
	padded := stored("https://b.com", 10, time.Now(), "Music", "")
	padded.CategoryOverride = ptr(" Work ")
	s.Append(padded)

	view, _ := NewAggregator(s).Summary("u1", PeriodDaily)

	cats := map[string]bool{}
	for _, c := range view.Categories {
		cats[c.Category] = true
	}
	assert.Equal(t, map[string]bool{"Music": true, "Work": true}, cats)
}
