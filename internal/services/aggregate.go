package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"cognisense-backend/internal/models"
	"cognisense-backend/internal/store"
)

type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"

	maxTopSites = 20
	unknownSite = "unknown"
)

// ParsePeriod accepts "daily" or "weekly"; empty means weekly.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case "", PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodDaily:
		return PeriodDaily, nil
	}
	return "", &ValidationError{Fields: map[string]string{"period": "period must be 'daily' or 'weekly'"}}
}

func (p Period) Window() time.Duration {
	if p == PeriodDaily {
		return 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

// Aggregator derives dashboard views from the activity store at query time.
type Aggregator struct {
	store *store.ActivityStore
	now   func() time.Time
}

func NewAggregator(s *store.ActivityStore) *Aggregator {
	return &Aggregator{store: s, now: time.Now}
}

// Summary aggregates the user's in-window records. The bool is false when
// the user has no records at all.
func (a *Aggregator) Summary(userID string, period Period) (*models.SummaryView, bool) {
	records := a.store.All(userID)
	if len(records) == 0 {
		return nil, false
	}

	cutoff := a.now().Add(-period.Window())

	var total float64
	counted := 0
	var siteOrder, catOrder, sentOrder []string
	siteTime := make(map[string]float64)
	catWeight := make(map[string]float64)
	sentCounts := make(map[string]int)

	for i := range records {
		rec := &records[i]
		ts, ok := rec.Timestamp()
		if !ok || ts.Before(cutoff) {
			continue
		}
		counted++

		dur := durationOf(rec)
		total += dur

		site := siteOf(rec)
		if _, seen := siteTime[site]; !seen {
			siteOrder = append(siteOrder, site)
		}
		siteTime[site] += dur

		if cat := rec.EffectiveCategory(); cat != "" {
			if _, seen := catWeight[cat]; !seen {
				catOrder = append(catOrder, cat)
			}
			w := dur
			if w <= 0 {
				w = 1
			}
			catWeight[cat] += w
		}

		if rec.Sentiment != nil && rec.Sentiment.Label != "" {
			label := rec.Sentiment.Label
			if _, seen := sentCounts[label]; !seen {
				sentOrder = append(sentOrder, label)
			}
			sentCounts[label]++
		}
	}

	view := &models.SummaryView{
		Period:           string(period),
		RecordsCounted:   counted,
		TotalTimeSeconds: total,
		TopSites:         make([]models.SiteTime, 0, len(siteOrder)),
		Categories:       make([]models.CategoryShare, 0, len(catOrder)),
		Sentiments:       make([]models.SentimentShare, 0, len(sentOrder)),
	}

	for _, site := range siteOrder {
		view.TopSites = append(view.TopSites, models.SiteTime{Site: site, TimeSeconds: siteTime[site]})
	}
	sort.SliceStable(view.TopSites, func(i, j int) bool {
		return view.TopSites[i].TimeSeconds > view.TopSites[j].TimeSeconds
	})
	if len(view.TopSites) > maxTopSites {
		view.TopSites = view.TopSites[:maxTopSites]
	}

	var catTotal float64
	for _, c := range catOrder {
		catTotal += catWeight[c]
	}
	if catTotal == 0 {
		catTotal = 1
	}
	for _, c := range catOrder {
		view.Categories = append(view.Categories, models.CategoryShare{
			Category:   c,
			Value:      catWeight[c],
			Proportion: catWeight[c] / catTotal,
		})
	}

	sentTotal := 0
	for _, s := range sentOrder {
		sentTotal += sentCounts[s]
	}
	if sentTotal == 0 {
		sentTotal = 1
	}
	for _, s := range sentOrder {
		view.Sentiments = append(view.Sentiments, models.SentimentShare{
			Sentiment:  s,
			Count:      sentCounts[s],
			Proportion: float64(sentCounts[s]) / float64(sentTotal),
		})
	}

	return view, true
}

// SitesTable aggregates every stored record per site, regardless of time.
func (a *Aggregator) SitesTable(userID string, limit int) []models.SiteRow {
	records := a.store.All(userID)

	var order []string
	rows := make(map[string]*models.SiteRow)
	for i := range records {
		rec := &records[i]
		site := siteOf(rec)
		row, ok := rows[site]
		if !ok {
			row = &models.SiteRow{Site: site}
			rows[site] = row
			order = append(order, site)
		}
		row.TimeSeconds += durationOf(rec)
		row.Visits++
		if row.Category == nil {
			if cat := rec.EffectiveCategory(); cat != "" {
				row.Category = &cat
			}
		}
	}

	out := make([]models.SiteRow, 0, len(order))
	for _, site := range order {
		out = append(out, *rows[site])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeSeconds > out[j].TimeSeconds })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func siteOf(rec *models.EnrichedRecord) string {
	if rec.URL == "" {
		return unknownSite
	}
	return rec.URL
}

// durationOf treats missing, negative and non-finite durations as zero.
func durationOf(rec *models.EnrichedRecord) float64 {
	if rec.DurationSeconds == nil {
		return 0
	}
	d := *rec.DurationSeconds
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}
