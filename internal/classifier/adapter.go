package classifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cognisense-backend/internal/logger"
	"cognisense-backend/internal/models"
)

const (
	DefaultMaxWords = 512
	maxEmotions     = 5
)

var productivityLabels = []string{"Productive", "Distracting"}

// Classification is the structured category result. Failures never surface
// as Go errors: they come back as Other/1.0 with Error set.
type Classification struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
	Group  string    `json:"group,omitempty"`
	Error  string    `json:"error,omitempty"`
	Err    error     `json:"-"`
}

// Ranked zips labels and scores.
func (c Classification) Ranked() []models.LabelScore {
	out := make([]models.LabelScore, 0, len(c.Labels))
	for i, l := range c.Labels {
		ls := models.LabelScore{Label: l}
		if i < len(c.Scores) {
			ls.Score = c.Scores[i]
		}
		out = append(out, ls)
	}
	return out
}

func fallbackClassification(err error) Classification {
	return Classification{
		Labels: []string{"Other"},
		Scores: []float64{1.0},
		Group:  OtherGroup,
		Error:  err.Error(),
		Err:    err,
	}
}

// Adapter is the uniform front for the sentiment, category and emotion
// models. Models are loaded lazily, once per capability.
type Adapter struct {
	sentiment lazy[SentimentModel]
	zeroShot  lazy[ZeroShotModel]
	emotion   lazy[EmotionModel]

	taxonomy *Taxonomy
	maxWords int
	log      *logger.Logger
}

func NewAdapter(loaders Loaders, taxonomy *Taxonomy, maxWords int, log *logger.Logger) *Adapter {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	a := &Adapter{
		taxonomy: taxonomy,
		maxWords: maxWords,
		log:      logger.OrNop(log),
	}
	a.sentiment.load = loaders.Sentiment
	a.zeroShot.load = loaders.ZeroShot
	a.emotion.load = loaders.Emotion
	return a
}

func (a *Adapter) Taxonomy() *Taxonomy { return a.taxonomy }

func (a *Adapter) GroupOf(label string) string { return a.taxonomy.GroupOf(label) }

// truncate keeps the first maxWords whitespace-separated words.
func (a *Adapter) truncate(text string) string {
	words := strings.Fields(text)
	if len(words) <= a.maxWords {
		return text
	}
	a.log.Warn("Text truncated for classification", "words", len(words), "max_words", a.maxWords)
	return strings.Join(words[:a.maxWords], " ")
}

func modelErr(capability string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return fmt.Errorf("%s: %w", capability, err)
	}
	return fmt.Errorf("%s: %w: %w", capability, ErrModelUnavailable, err)
}

func (a *Adapter) AnalyzeSentiment(ctx context.Context, text string) (models.LabelScore, error) {
	if strings.TrimSpace(text) == "" {
		return models.LabelScore{}, ErrEmptyText
	}
	m, err := a.sentiment.get(ctx)
	if err != nil {
		a.log.Error("Failed to load sentiment model", "error", err)
		return models.LabelScore{}, modelErr("sentiment", err)
	}
	res, err := m.Sentiment(ctx, a.truncate(text))
	if err != nil {
		return models.LabelScore{}, fmt.Errorf("sentiment analysis failed: %w", err)
	}
	return res, nil
}

// ClassifyCategory ranks labels (the taxonomy when nil) for text.
func (a *Adapter) ClassifyCategory(ctx context.Context, text string, labels []string, multiLabel bool) Classification {
	if strings.TrimSpace(text) == "" {
		return fallbackClassification(ErrEmptyText)
	}
	if len(labels) == 0 {
		labels = a.taxonomy.Labels
	}

	m, err := a.zeroShot.get(ctx)
	if err != nil {
		a.log.Error("Failed to load zero-shot model", "error", err)
		return fallbackClassification(modelErr("zero-shot", err))
	}

	ranked, err := m.ZeroShot(ctx, a.truncate(text), labels, multiLabel)
	if err != nil {
		a.log.Error("Zero-shot classification failed", "error", err)
		return fallbackClassification(fmt.Errorf("zero-shot classification failed: %w", err))
	}
	if len(ranked) == 0 {
		return fallbackClassification(errors.New("zero-shot model returned no labels"))
	}

	sortByScore(ranked)
	c := Classification{
		Labels: make([]string, len(ranked)),
		Scores: make([]float64, len(ranked)),
	}
	for i, ls := range ranked {
		c.Labels[i] = ls.Label
		c.Scores[i] = ls.Score
	}
	a.log.Debug("Classification", "label", c.Labels[0], "score", c.Scores[0])
	return c
}

// ClassifyWithGroup classifies against the taxonomy and attaches the group
// of the top label.
func (a *Adapter) ClassifyWithGroup(ctx context.Context, text string) Classification {
	c := a.ClassifyCategory(ctx, text, nil, false)
	if c.Err == nil && len(c.Labels) > 0 {
		c.Group = a.taxonomy.GroupOf(c.Labels[0])
	}
	return c
}

func (a *Adapter) ClassifyProductivity(ctx context.Context, text string) Classification {
	return a.ClassifyCategory(ctx, text, productivityLabels, false)
}

// DetectEmotions returns the top emotions. When no emotion model can be
// loaded the sentiment model stands in as a one-entry proxy.
func (a *Adapter) DetectEmotions(ctx context.Context, text string) ([]models.LabelScore, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	text = a.truncate(text)

	m, err := a.emotion.get(ctx)
	if err != nil {
		a.log.Warn("Emotion model unavailable, falling back to sentiment", "error", err)
		s, serr := a.AnalyzeSentiment(ctx, text)
		if serr != nil {
			return nil, modelErr("emotion", errors.Join(err, serr))
		}
		return []models.LabelScore{s}, nil
	}

	ranked, err := m.Emotions(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("emotion detection failed: %w", err)
	}
	sortByScore(ranked)
	if len(ranked) > maxEmotions {
		ranked = ranked[:maxEmotions]
	}
	return ranked, nil
}

func sortByScore(ls []models.LabelScore) {
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].Score > ls[j].Score })
}

var (
	positiveEmotions = map[string]bool{
		"joy": true, "happy": true, "love": true, "surprise": true,
		"optimism": true, "positive": true, "admiration": true, "gratitude": true,
	}
	negativeEmotions = map[string]bool{
		"sadness": true, "sad": true, "anger": true, "angry": true, "fear": true,
		"disgust": true, "negative": true, "annoyance": true, "disappointment": true,
	}
)

// EmotionalBalance sums scores into positive, negative and neutral shares.
// Score is positive minus negative, in [-1, 1].
func EmotionalBalance(emotions []models.LabelScore) models.EmotionalBalance {
	var b models.EmotionalBalance
	var total float64
	for _, e := range emotions {
		label := strings.ToLower(e.Label)
		switch {
		case positiveEmotions[label]:
			b.Positive += e.Score
		case negativeEmotions[label]:
			b.Negative += e.Score
		default:
			b.Neutral += e.Score
		}
		total += e.Score
	}
	if total <= 0 {
		return b
	}
	b.Positive /= total
	b.Negative /= total
	b.Neutral /= total
	b.Score = b.Positive - b.Negative
	return b
}
