package models

type SiteTime struct {
	Site        string  `json:"site"`
	TimeSeconds float64 `json:"time_seconds"`
}

type CategoryShare struct {
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	Proportion float64 `json:"proportion"`
}

type SentimentShare struct {
	Sentiment  string  `json:"sentiment"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// SummaryView is derived at query time and never persisted.
type SummaryView struct {
	Period           string           `json:"period"`
	RecordsCounted   int              `json:"records_counted"`
	TotalTimeSeconds float64          `json:"total_time_seconds"`
	TopSites         []SiteTime       `json:"top_sites"`
	Categories       []CategoryShare  `json:"categories"`
	Sentiments       []SentimentShare `json:"sentiments"`
}

type SummaryResponse struct {
	UserID  string      `json:"user_id"`
	Period  string      `json:"period,omitempty"`
	Summary interface{} `json:"summary"`
}

type SiteRow struct {
	Site        string  `json:"site"`
	TimeSeconds float64 `json:"time_seconds"`
	Visits      int     `json:"visits"`
	Category    *string `json:"category"`
}

type SitesResponse struct {
	UserID string    `json:"user_id"`
	Count  int       `json:"count"`
	Sites  []SiteRow `json:"sites"`
}
