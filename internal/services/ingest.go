package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"cognisense-backend/internal/logger"
	"cognisense-backend/internal/models"
	"cognisense-backend/internal/scraper"
	"cognisense-backend/internal/store"
)

const warnPersistenceDisabled = "persistence disabled"

// Publisher pushes live updates for a user. Best-effort.
type Publisher interface {
	PublishActivity(ctx context.Context, userID string, rec *models.EnrichedRecord)
}

type RecordPersister interface {
	Persist(ctx context.Context, rec *models.EnrichedRecord) error
}

type IngestDeps struct {
	Store     *store.ActivityStore
	Resolver  *CategoryResolver
	Analyzer  *Analyzer
	Clf       Classifier
	Fetcher   scraper.Fetcher
	Persister RecordPersister
	Publisher Publisher
	Log       *logger.Logger
}

// IngestService turns one activity event into a stored, enriched record.
// Only validation failures reject an event; every later failure becomes a
// warning.
type IngestService struct {
	store     *store.ActivityStore
	resolver  *CategoryResolver
	analyzer  *Analyzer
	clf       Classifier
	fetcher   scraper.Fetcher
	persister RecordPersister
	publisher Publisher
	now       func() time.Time
	log       *logger.Logger
}

func NewIngestService(d IngestDeps) *IngestService {
	return &IngestService{
		store:     d.Store,
		resolver:  d.Resolver,
		analyzer:  d.Analyzer,
		clf:       d.Clf,
		fetcher:   d.Fetcher,
		persister: d.Persister,
		publisher: d.Publisher,
		now:       time.Now,
		log:       logger.OrNop(d.Log),
	}
}

func (s *IngestService) Ingest(ctx context.Context, ev models.ActivityEvent) (*models.IngestResult, error) {
	if err := validateEvent(&ev); err != nil {
		return nil, err
	}

	rec := models.EnrichedRecord{
		ID:            uuid.New(),
		ActivityEvent: ev,
		ReceivedAt:    s.now().UTC(),
		Domain:        DomainFromURL(ev.URL),
	}
	var warnings []string

	inferDuration(&rec)

	override := ""
	if rec.CategoryOverride != nil {
		override = strings.TrimSpace(*rec.CategoryOverride)
	}
	if override == "" {
		res := s.resolver.Resolve(ctx, rec.UserID, rec.Domain)
		switch res.Status {
		case ResolutionResolved:
			override = res.Category
		case ResolutionDegraded:
			warnings = append(warnings, "category rules unavailable")
		}
	}

	if rec.Text == nil || strings.TrimSpace(*rec.Text) == "" {
		rec.Text = nil
		if w := s.scrape(ctx, &rec); w != "" {
			warnings = append(warnings, w)
		}
	}

	if rec.Text != nil {
		s.enrich(ctx, &rec, override)
	} else if override != "" {
		group := s.groupOf(override)
		rec.ClassifiedCategory = &override
		rec.CategoryGroup = &group
	}

	s.store.Append(rec)
	s.log.Info("Ingested activity", "user_id", rec.UserID, "url", rec.URL)

	if s.persister == nil {
		warnings = append(warnings, warnPersistenceDisabled)
	} else if err := s.persister.Persist(ctx, &rec); err != nil {
		s.log.Warn("Persistence failed", "user_id", rec.UserID, "url", rec.URL, "error", err)
		warnings = append(warnings, "persistence failed")
	}

	if s.publisher != nil {
		s.publisher.PublishActivity(ctx, rec.UserID, &rec)
	}

	return &models.IngestResult{Status: "ok", Ingested: 1, Warnings: warnings}, nil
}

func validateEvent(ev *models.ActivityEvent) error {
	ev.UserID = strings.TrimSpace(ev.UserID)
	ev.URL = strings.TrimSpace(ev.URL)
	if ev.CategoryOverride != nil {
		if o := strings.TrimSpace(*ev.CategoryOverride); o != "" {
			ev.CategoryOverride = &o
		} else {
			ev.CategoryOverride = nil
		}
	}

	fields := make(map[string]string)
	if ev.UserID == "" {
		fields["user_id"] = "user_id is required"
	}
	if ev.URL == "" {
		fields["url"] = "url is required"
	}
	if ev.Clicks < 0 {
		fields["clicks"] = "clicks must be non-negative"
	}
	if ev.Keypresses < 0 {
		fields["keypresses"] = "keypresses must be non-negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func inferDuration(rec *models.EnrichedRecord) {
	if rec.DurationSeconds != nil || rec.StartTS == nil || rec.EndTS == nil {
		return
	}
	d := *rec.EndTS - *rec.StartTS
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return
	}
	rec.DurationSeconds = &d
}

// scrape fills text (and title when missing) from the page. It returns a
// warning on failure.
func (s *IngestService) scrape(ctx context.Context, rec *models.EnrichedRecord) string {
	if s.fetcher == nil {
		return ""
	}
	page, err := s.fetcher.Fetch(ctx, rec.URL)
	if err != nil {
		s.log.Warn("Scrape failed", "url", rec.URL, "error", err)
		return "scrape failed"
	}
	if strings.TrimSpace(page.VisibleText) == "" {
		return ""
	}
	text := page.VisibleText
	rec.Text = &text
	if rec.Title == nil && page.Title != "" {
		title := page.Title
		rec.Title = &title
	}
	return ""
}

func (s *IngestService) enrich(ctx context.Context, rec *models.EnrichedRecord, override string) {
	analysis, err := s.analyze(ctx, *rec.Text, AllSignals(rec.URL), override)
	if err != nil {
		s.log.Warn("Analyzer failed, falling back to direct classifier calls", "url", rec.URL, "error", err)
		s.enrichDirect(ctx, rec, override)
		return
	}
	applyAnalysis(rec, analysis)
}

func (s *IngestService) analyze(ctx context.Context, text string, opts AnalyzeOptions, override string) (a *models.Analysis, err error) {
	if s.analyzer == nil {
		return nil, errors.New("analyzer not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panicked: %v", r)
		}
	}()
	opts.Override = override
	return s.analyzer.Analyze(ctx, text, opts)
}

func applyAnalysis(rec *models.EnrichedRecord, a *models.Analysis) {
	if a.Sentiment != nil {
		s := *a.Sentiment
		rec.Sentiment = &s
	}
	if a.Category != nil {
		primary, group := a.Category.Primary, a.Category.Group
		rec.ClassifiedCategory = &primary
		rec.CategoryGroup = &group
		if !a.Category.Overridden {
			rec.ClassifiedScores = a.Category.Ranked
		}
	}
	if a.Emotions != nil {
		rec.Emotions = a.Emotions.AllEmotions
	}
}

// enrichDirect calls each classifier capability on its own, absorbing
// every failure.
func (s *IngestService) enrichDirect(ctx context.Context, rec *models.EnrichedRecord, override string) {
	if s.clf == nil {
		return
	}
	text := *rec.Text

	func() {
		defer s.absorb("sentiment")
		if sent, err := s.clf.AnalyzeSentiment(ctx, text); err == nil {
			rec.Sentiment = &sent
		}
	}()

	func() {
		defer s.absorb("category")
		if override != "" {
			group := s.clf.GroupOf(override)
			rec.ClassifiedCategory = &override
			rec.CategoryGroup = &group
			return
		}
		c := s.clf.ClassifyWithGroup(ctx, text)
		if c.Err == nil && len(c.Labels) > 0 {
			label, group := c.Labels[0], c.Group
			rec.ClassifiedCategory = &label
			rec.CategoryGroup = &group
			rec.ClassifiedScores = c.Ranked()
		}
	}()

	func() {
		defer s.absorb("emotions")
		if ems, err := s.clf.DetectEmotions(ctx, text); err == nil {
			rec.Emotions = ems
		}
	}()
}

func (s *IngestService) absorb(signal string) {
	if r := recover(); r != nil {
		s.log.Error("Classifier panicked", "signal", signal, "panic", r)
	}
}

func (s *IngestService) groupOf(label string) string {
	if s.clf == nil {
		return "Other"
	}
	return s.clf.GroupOf(label)
}

// Recent returns the user's last limit records and their total count.
func (s *IngestService) Recent(userID string, limit int) ([]models.EnrichedRecord, int) {
	return s.store.Recent(userID, limit)
}

func (s *IngestService) Clear(userID string) int {
	return s.store.Clear(userID)
}

// DomainFromURL returns the lowercased host of rawURL without port. Inputs
// without a scheme are treated as bare hosts.
func DomainFromURL(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return NormalizeDomain(rawURL)
	}
	return strings.ToLower(u.Hostname())
}
