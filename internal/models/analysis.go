package models

import "time"

type CategoryResult struct {
	Primary       string       `json:"primary"`
	Confidence    *float64     `json:"confidence"`
	Group         string       `json:"group"`
	Overridden    bool         `json:"overridden"`
	AllCategories []LabelScore `json:"all_categories"`
	// Ranked is the full model ranking; AllCategories is its top 3.
	Ranked []LabelScore `json:"-"`
}

type EmotionalBalance struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Score    float64 `json:"score"`
}

type EmotionResult struct {
	Dominant    string           `json:"dominant"`
	AllEmotions []LabelScore     `json:"all_emotions"`
	Balance     EmotionalBalance `json:"balance"`
}

// Per-signal outcome statuses.
const (
	SignalOK         = "ok"
	SignalSkipped    = "skipped"
	SignalFailed     = "failed"
	SignalOverridden = "overridden"
)

type SignalOutcome struct {
	Signal string `json:"signal"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Analysis is the unified enrichment bundle for one text.
type Analysis struct {
	URL        string          `json:"url,omitempty"`
	TextLength int             `json:"text_length"`
	WordCount  int             `json:"word_count"`
	Sentiment  *LabelScore     `json:"sentiment,omitempty"`
	Category   *CategoryResult `json:"category,omitempty"`
	Emotions   *EmotionResult  `json:"emotions,omitempty"`
	// Productivity is set only when requested.
	Productivity *LabelScore     `json:"productivity,omitempty"`
	Signals      []SignalOutcome `json:"signals"`
}

// BatchItem holds either an analysis or the error that prevented it.
type BatchItem struct {
	*Analysis
	Error string `json:"error,omitempty"`
}

type AnalyzeRequest struct {
	Text                string  `json:"text"`
	URL                 string  `json:"url"`
	IncludeSentiment    *bool   `json:"include_sentiment"`
	IncludeCategory     *bool   `json:"include_category"`
	IncludeEmotions     *bool   `json:"include_emotions"`
	IncludeProductivity *bool   `json:"include_productivity"`
	CategoryOverride    *string `json:"category_override"`
}

type BatchAnalyzeRequest struct {
	Items []AnalyzeRequest `json:"items"`
}

type BatchAnalyzeResponse struct {
	Count   int         `json:"count"`
	Results []BatchItem `json:"results"`
}

type EmotionBuckets struct {
	Happy   float64 `json:"emotion_happy"`
	Sad     float64 `json:"emotion_sad"`
	Angry   float64 `json:"emotion_angry"`
	Neutral float64 `json:"emotion_neutral"`
}

// AnalysisRow is the durable per-URL analysis, upserted last-write-wins.
type AnalysisRow struct {
	URL            string   `json:"url"`
	Domain         string   `json:"domain"`
	Category       *string  `json:"category"`
	CategoryGroup  *string  `json:"category_group"`
	SentimentLabel *string  `json:"sentiment_label"`
	SentimentScore *float64 `json:"sentiment_score"`
	EmotionBuckets
	UpdatedAt time.Time `json:"updated_at"`
}
