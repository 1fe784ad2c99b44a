package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"cognisense-backend/internal/classifier"
	"cognisense-backend/internal/logger"
	"cognisense-backend/internal/models"
)

const (
	signalSentiment    = "sentiment"
	signalCategory     = "category"
	signalEmotions     = "emotions"
	signalProductivity = "productivity"

	topCategories = 3
)

// Classifier is the enrichment surface the analyzer depends on.
type Classifier interface {
	AnalyzeSentiment(ctx context.Context, text string) (models.LabelScore, error)
	ClassifyWithGroup(ctx context.Context, text string) classifier.Classification
	DetectEmotions(ctx context.Context, text string) ([]models.LabelScore, error)
	GroupOf(label string) string
}

// ProductivityClassifier rates text as productive or distracting. The
// analyzer runs it only when the classifier implements it.
type ProductivityClassifier interface {
	ClassifyProductivity(ctx context.Context, text string) classifier.Classification
}

var _ ProductivityClassifier = (*classifier.Adapter)(nil)

type AnalyzeOptions struct {
	URL       string
	Sentiment bool
	Category  bool
	Emotions  bool
	// Productivity is opt-in and never part of AllSignals.
	Productivity bool
	// Override replaces category classification when non-empty.
	Override string
}

func AllSignals(url string) AnalyzeOptions {
	return AnalyzeOptions{URL: url, Sentiment: true, Category: true, Emotions: true}
}

type BatchInput struct {
	Text    string
	Options AnalyzeOptions
}

// Analyzer runs the enabled enrichment signals for a text and merges them
// into one bundle. A failing signal is recorded and left out; it never fails
// the whole analysis.
type Analyzer struct {
	clf         Classifier
	concurrency int
	log         *logger.Logger
}

func NewAnalyzer(clf Classifier, concurrency int, log *logger.Logger) *Analyzer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Analyzer{clf: clf, concurrency: concurrency, log: logger.OrNop(log)}
}

func (a *Analyzer) Analyze(ctx context.Context, text string, opts AnalyzeOptions) (*models.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{
			Fields: map[string]string{"text": "Text is required"},
			Err:    classifier.ErrEmptyText,
		}
	}

	result := &models.Analysis{
		URL:        opts.URL,
		TextLength: utf8.RuneCountInString(text),
		WordCount:  len(strings.Fields(text)),
	}

	outcomes := [3]models.SignalOutcome{
		{Signal: signalSentiment, Status: models.SignalSkipped},
		{Signal: signalCategory, Status: models.SignalSkipped},
		{Signal: signalEmotions, Status: models.SignalSkipped},
	}
	errs := [3]error{}

	var g errgroup.Group

	if opts.Sentiment {
		g.Go(func() error {
			errs[0] = a.safely(signalSentiment, func() error {
				s, err := a.clf.AnalyzeSentiment(ctx, text)
				if err != nil {
					return err
				}
				result.Sentiment = &s
				return nil
			})
			return nil
		})
	}

	switch {
	case opts.Override != "":
		outcomes[1].Status = models.SignalOverridden
		result.Category = &models.CategoryResult{
			Primary:    opts.Override,
			Group:      a.clf.GroupOf(opts.Override),
			Overridden: true,
		}
	case opts.Category:
		g.Go(func() error {
			errs[1] = a.safely(signalCategory, func() error {
				c := a.clf.ClassifyWithGroup(ctx, text)
				if c.Err != nil {
					return c.Err
				}
				result.Category = categoryResult(c)
				return nil
			})
			return nil
		})
	}

	if opts.Emotions {
		g.Go(func() error {
			errs[2] = a.safely(signalEmotions, func() error {
				ems, err := a.clf.DetectEmotions(ctx, text)
				if err != nil {
					return err
				}
				if len(ems) == 0 {
					return errors.New("no emotions detected")
				}
				result.Emotions = &models.EmotionResult{
					Dominant:    ems[0].Label,
					AllEmotions: ems,
					Balance:     classifier.EmotionalBalance(ems),
				}
				return nil
			})
			return nil
		})
	}

	var prodErr error
	if opts.Productivity {
		g.Go(func() error {
			prodErr = a.safely(signalProductivity, func() error {
				pc, ok := a.clf.(ProductivityClassifier)
				if !ok {
					return fmt.Errorf("productivity: %w", ErrNotConfigured)
				}
				c := pc.ClassifyProductivity(ctx, text)
				if c.Err != nil {
					return c.Err
				}
				ranked := c.Ranked()
				if len(ranked) == 0 {
					return errors.New("no productivity label")
				}
				result.Productivity = &ranked[0]
				return nil
			})
			return nil
		})
	}

	_ = g.Wait()

	enabled := [3]bool{opts.Sentiment, opts.Category && opts.Override == "", opts.Emotions}
	attempted, unconfigured := 0, 0
	for i, on := range enabled {
		if !on {
			continue
		}
		attempted++
		if errs[i] == nil {
			outcomes[i].Status = models.SignalOK
			continue
		}
		outcomes[i].Status = models.SignalFailed
		outcomes[i].Error = errs[i].Error()
		if errors.Is(errs[i], ErrNotConfigured) {
			unconfigured++
		}
		a.log.Warn("Enrichment signal failed", "signal", outcomes[i].Signal, "url", opts.URL, "error", errs[i])
	}
	result.Signals = outcomes[:]

	if opts.Productivity {
		attempted++
		prod := models.SignalOutcome{Signal: signalProductivity, Status: models.SignalOK}
		if prodErr != nil {
			prod.Status = models.SignalFailed
			prod.Error = prodErr.Error()
			if errors.Is(prodErr, ErrNotConfigured) {
				unconfigured++
			}
			a.log.Warn("Enrichment signal failed", "signal", signalProductivity, "url", opts.URL, "error", prodErr)
		}
		result.Signals = append(result.Signals, prod)
	}

	if attempted > 0 && unconfigured == attempted {
		return nil, fmt.Errorf("analysis unavailable: %w", ErrNotConfigured)
	}
	return result, nil
}

// AnalyzeBatch analyzes every input with bounded concurrency. A failing item
// carries its error in its own slot.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, inputs []BatchInput) ([]models.BatchItem, error) {
	if len(inputs) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"items": "At least one text required"}}
	}

	results := make([]models.BatchItem, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			res, err := a.Analyze(gctx, in.Text, in.Options)
			if err != nil {
				results[i] = models.BatchItem{Error: batchError(err)}
				return nil
			}
			results[i] = models.BatchItem{Analysis: res}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func batchError(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, msg := range ve.Fields {
			return msg
		}
	}
	return err.Error()
}

// safely runs fn, turning a panic into an error.
func (a *Analyzer) safely(signal string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Enrichment signal panicked", "signal", signal, "panic", r)
			err = fmt.Errorf("%s panicked: %v", signal, r)
		}
	}()
	return fn()
}

func categoryResult(c classifier.Classification) *models.CategoryResult {
	ranked := c.Ranked()
	top := ranked
	if len(top) > topCategories {
		top = top[:topCategories]
	}
	conf := ranked[0].Score
	return &models.CategoryResult{
		Primary:       ranked[0].Label,
		Confidence:    &conf,
		Group:         c.Group,
		AllCategories: top,
		Ranked:        ranked,
	}
}
