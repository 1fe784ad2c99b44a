package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"cognisense-backend/internal/models"
)

var emotionLabels = []string{"anger", "disgust", "fear", "joy", "neutral", "sadness", "surprise"}

const systemPrompt = "You are a text classification engine. Respond with a single JSON object and nothing else."

// completer sends one prompt to an LLM and returns the raw text reply.
type completer interface {
	complete(ctx context.Context, system, prompt string) (string, error)
}

// promptBackend implements Backend on top of any completer.
type promptBackend struct {
	llm completer
}

type labelScoreJSON struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type rankingJSON struct {
	Scores []labelScoreJSON `json:"scores"`
}

func (b *promptBackend) Sentiment(ctx context.Context, text string) (models.LabelScore, error) {
	raw, err := b.llm.complete(ctx, systemPrompt, buildSentimentPrompt(text))
	if err != nil {
		return models.LabelScore{}, err
	}
	var out labelScoreJSON
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
		return models.LabelScore{}, fmt.Errorf("failed to parse sentiment response: %w", err)
	}
	label := strings.ToUpper(strings.TrimSpace(out.Label))
	if label != "POSITIVE" && label != "NEGATIVE" {
		return models.LabelScore{}, fmt.Errorf("unexpected sentiment label %q", out.Label)
	}
	return models.LabelScore{Label: label, Score: clamp01(out.Score)}, nil
}

func (b *promptBackend) ZeroShot(ctx context.Context, text string, labels []string, multiLabel bool) ([]models.LabelScore, error) {
	raw, err := b.llm.complete(ctx, systemPrompt, buildZeroShotPrompt(text, labels, multiLabel))
	if err != nil {
		return nil, err
	}
	ranked, err := parseRanking(raw, labels)
	if err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}
	if !multiLabel {
		normalize(ranked)
	}
	return ranked, nil
}

func (b *promptBackend) Emotions(ctx context.Context, text string) ([]models.LabelScore, error) {
	raw, err := b.llm.complete(ctx, systemPrompt, buildEmotionPrompt(text))
	if err != nil {
		return nil, err
	}
	ranked, err := parseRanking(raw, emotionLabels)
	if err != nil {
		return nil, fmt.Errorf("failed to parse emotion response: %w", err)
	}
	normalize(ranked)
	return ranked, nil
}

func buildSentimentPrompt(text string) string {
	return fmt.Sprintf(`Classify the overall sentiment of the text below as POSITIVE or NEGATIVE.
Return JSON: {"label": "POSITIVE" | "NEGATIVE", "score": <confidence between 0 and 1>}

TEXT:
%s`, text)
}

func buildZeroShotPrompt(text string, labels []string, multiLabel bool) string {
	mode := "The scores are a probability distribution and must sum to 1."
	if multiLabel {
		mode = "Score each label independently between 0 and 1; several labels may apply."
	}
	return fmt.Sprintf(`Score how well each candidate label describes the text below.
%s
Use only these labels, spelled exactly: %s
Return JSON: {"scores": [{"label": "<label>", "score": <number>}, ...]}

TEXT:
%s`, mode, quoteAll(labels), text)
}

func buildEmotionPrompt(text string) string {
	return fmt.Sprintf(`Detect the emotions expressed in the text below.
Score every one of these emotions between 0 and 1 so that the scores sum to 1: %s
Return JSON: {"scores": [{"label": "<emotion>", "score": <number>}, ...]}

TEXT:
%s`, quoteAll(emotionLabels), text)
}

func quoteAll(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	return strings.Join(quoted, ", ")
}

// parseRanking keeps only the candidate labels, fills in missing ones with
// zero and returns them best first.
func parseRanking(raw string, candidates []string) ([]models.LabelScore, error) {
	var out rankingJSON
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
		return nil, err
	}

	byLower := make(map[string]string, len(candidates))
	for _, c := range candidates {
		byLower[strings.ToLower(c)] = c
	}

	scores := make(map[string]float64, len(candidates))
	for _, s := range out.Scores {
		label, ok := byLower[strings.ToLower(strings.TrimSpace(s.Label))]
		if !ok {
			continue
		}
		if v := clamp01(s.Score); v > scores[label] {
			scores[label] = v
		}
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no candidate labels in response")
	}

	ranked := make([]models.LabelScore, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, models.LabelScore{Label: c, Score: scores[c]})
	}
	sortByScore(ranked)
	return ranked, nil
}

func normalize(ls []models.LabelScore) {
	var sum float64
	for _, l := range ls {
		sum += l.Score
	}
	if sum <= 0 {
		return
	}
	for i := range ls {
		ls[i].Score /= sum
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// cleanJSON strips markdown code fences around a JSON reply.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
