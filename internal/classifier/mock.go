package classifier

import (
	"context"
	"strings"
	"unicode"

	"cognisense-backend/internal/models"
)

// MockBackend is a deterministic keyword-counting Backend for development
// and tests. It needs no network access.
type MockBackend struct{}

func NewMockBackend() *MockBackend { return &MockBackend{} }

var (
	positiveWords = []string{"good", "great", "love", "excellent", "happy", "amazing", "best", "enjoy", "win", "success", "helpful", "wonderful"}
	negativeWords = []string{"bad", "terrible", "hate", "awful", "sad", "worst", "fail", "angry", "problem", "broken", "crisis", "war"}

	labelKeywords = map[string][]string{
		"Programming":   {"code", "golang", "python", "function", "compiler", "github", "api", "bug"},
		"Documentation": {"docs", "reference", "manual", "guide"},
		"News":          {"breaking", "reported", "headline", "journalist", "news"},
		"Finance":       {"stock", "market", "bank", "money", "price", "finance"},
		"Social Media":  {"followers", "likes", "share", "tweet", "post", "friends"},
		"Gaming":        {"game", "player", "level", "console"},
		"Shopping":      {"cart", "buy", "discount", "order", "shop"},
		"Education":     {"learn", "course", "lesson", "student", "study"},
		"Music":         {"song", "album", "playlist", "music"},
		"Sports":        {"match", "team", "score", "league"},
		"Productive":    {"work", "task", "project", "learn", "code", "study", "docs"},
		"Distracting":   {"video", "meme", "game", "feed", "celebrity", "scroll"},
	}

	emotionKeywords = map[string][]string{
		"joy":      {"happy", "joy", "love", "great", "wonderful", "enjoy"},
		"sadness":  {"sad", "loss", "cry", "miss", "lonely"},
		"anger":    {"angry", "hate", "furious", "outrage"},
		"fear":     {"afraid", "fear", "scared", "threat", "crisis"},
		"surprise": {"surprise", "unexpected", "shock", "wow"},
		"disgust":  {"disgust", "gross", "awful"},
	}
)

func tokenize(text string) map[string]int {
	counts := make(map[string]int)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		counts[w]++
	}
	return counts
}

func hits(counts map[string]int, words []string) int {
	n := 0
	for _, w := range words {
		n += counts[w]
	}
	return n
}

func (m *MockBackend) Sentiment(_ context.Context, text string) (models.LabelScore, error) {
	counts := tokenize(text)
	pos := hits(counts, positiveWords)
	neg := hits(counts, negativeWords)

	label := "POSITIVE"
	if neg > pos {
		label = "NEGATIVE"
	}
	diff := pos - neg
	if diff < 0 {
		diff = -diff
	}
	score := 0.5 + 0.5*float64(diff)/float64(pos+neg+1)
	return models.LabelScore{Label: label, Score: score}, nil
}

func (m *MockBackend) ZeroShot(_ context.Context, text string, labels []string, multiLabel bool) ([]models.LabelScore, error) {
	counts := tokenize(text)

	ranked := make([]models.LabelScore, 0, len(labels))
	for _, label := range labels {
		keywords := labelKeywords[label]
		if keywords == nil {
			keywords = labelWords(label)
		}
		score := float64(hits(counts, keywords))
		if label == "Other" {
			score += 0.5
		}
		ranked = append(ranked, models.LabelScore{Label: label, Score: score + 0.01})
	}

	if multiLabel {
		for i := range ranked {
			ranked[i].Score = ranked[i].Score / (ranked[i].Score + 1)
		}
	} else {
		normalize(ranked)
	}
	sortByScore(ranked)
	return ranked, nil
}

func (m *MockBackend) Emotions(_ context.Context, text string) ([]models.LabelScore, error) {
	counts := tokenize(text)

	ranked := make([]models.LabelScore, 0, len(emotionLabels))
	for _, label := range emotionLabels {
		score := float64(hits(counts, emotionKeywords[label]))
		if label == "neutral" {
			score = 1
		}
		ranked = append(ranked, models.LabelScore{Label: label, Score: score})
	}
	normalize(ranked)
	sortByScore(ranked)
	return ranked, nil
}

// labelWords turns "Food & Cooking" into ["food", "cooking"].
func labelWords(label string) []string {
	var out []string
	for w := range tokenize(label) {
		if len(w) >= 3 {
			out = append(out, w)
		}
	}
	return out
}
