package services

import (
	"context"
	"errors"
	"sync"

	"cognisense-backend/internal/classifier"
	"cognisense-backend/internal/models"
	"cognisense-backend/internal/scraper"
)

type fakeClassifier struct {
	mu            sync.Mutex
	sentiment     models.LabelScore
	sentimentErr  error
	category      classifier.Classification
	emotions      []models.LabelScore
	emotionErr    error
	panicCategory bool
	categoryCalls int
	productivity  classifier.Classification
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{
		sentiment: models.LabelScore{Label: "POSITIVE", Score: 0.9},
		category: classifier.Classification{
			Labels: []string{"News", "Politics", "Finance", "Music"},
			Scores: []float64{0.6, 0.2, 0.15, 0.05},
			Group:  "Information",
		},
		emotions: []models.LabelScore{{Label: "joy", Score: 0.7}, {Label: "neutral", Score: 0.3}},
		productivity: classifier.Classification{
			Labels: []string{"Distracting", "Productive"},
			Scores: []float64{0.8, 0.2},
		},
	}
}

func (f *fakeClassifier) AnalyzeSentiment(context.Context, string) (models.LabelScore, error) {
	return f.sentiment, f.sentimentErr
}

func (f *fakeClassifier) ClassifyWithGroup(context.Context, string) classifier.Classification {
	f.mu.Lock()
	f.categoryCalls++
	f.mu.Unlock()
	if f.panicCategory {
		panic("model exploded")
	}
	return f.category
}

func (f *fakeClassifier) DetectEmotions(context.Context, string) ([]models.LabelScore, error) {
	return f.emotions, f.emotionErr
}

func (f *fakeClassifier) ClassifyProductivity(context.Context, string) classifier.Classification {
	return f.productivity
}

func (f *fakeClassifier) GroupOf(label string) string {
	return classifier.DefaultTaxonomy().GroupOf(label)
}

func (f *fakeClassifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categoryCalls
}

type fakeRules struct {
	rules []models.DomainCategoryRule
	err   error
}

func (f *fakeRules) ListByUser(_ context.Context, userID string) ([]models.DomainCategoryRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.DomainCategoryRule
	for _, r := range f.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeFetcher struct {
	page *scraper.Page
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) (*scraper.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type fakePersister struct {
	records []*models.EnrichedRecord
	err     error
}

func (f *fakePersister) Persist(_ context.Context, rec *models.EnrichedRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

type fakePublisher struct {
	users []string
}

func (f *fakePublisher) PublishActivity(_ context.Context, userID string, _ *models.EnrichedRecord) {
	f.users = append(f.users, userID)
}

type fakeWriters struct {
	sessions   []*models.SessionRow
	analyses   []*models.AnalysisRow
	sessionErr error
}

func (f *fakeWriters) InsertSession(_ context.Context, row *models.SessionRow) error {
	if f.sessionErr != nil {
		return f.sessionErr
	}
	f.sessions = append(f.sessions, row)
	return nil
}

func (f *fakeWriters) UpsertAnalysis(_ context.Context, row *models.AnalysisRow) error {
	f.analyses = append(f.analyses, row)
	return nil
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }
