package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cognisense-backend/internal/models"
)

type AnalysisRepo struct {
	pool *pgxpool.Pool
}

func NewAnalysisRepo(pool *pgxpool.Pool) *AnalysisRepo {
	return &AnalysisRepo{pool: pool}
}

// UpsertAnalysis writes the per-URL analysis; the latest write wins.
func (r *AnalysisRepo) UpsertAnalysis(ctx context.Context, a *models.AnalysisRow) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO content_analysis (
			url, domain, category, category_group, sentiment_label, sentiment_score,
			emotion_happy, emotion_sad, emotion_angry, emotion_neutral, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (url) DO UPDATE SET
			domain = EXCLUDED.domain,
			category = EXCLUDED.category,
			category_group = EXCLUDED.category_group,
			sentiment_label = EXCLUDED.sentiment_label,
			sentiment_score = EXCLUDED.sentiment_score,
			emotion_happy = EXCLUDED.emotion_happy,
			emotion_sad = EXCLUDED.emotion_sad,
			emotion_angry = EXCLUDED.emotion_angry,
			emotion_neutral = EXCLUDED.emotion_neutral,
			updated_at = EXCLUDED.updated_at
	`, a.URL, a.Domain, a.Category, a.CategoryGroup, a.SentimentLabel, a.SentimentScore,
		a.Happy, a.Sad, a.Angry, a.Neutral, a.UpdatedAt)
	return err
}

func (r *AnalysisRepo) GetAnalysis(ctx context.Context, url string) (*models.AnalysisRow, error) {
	var a models.AnalysisRow
	err := r.pool.QueryRow(ctx, `
		SELECT url, domain, category, category_group, sentiment_label, sentiment_score,
			emotion_happy, emotion_sad, emotion_angry, emotion_neutral, updated_at
		FROM content_analysis
		WHERE url = $1
	`, url).Scan(&a.URL, &a.Domain, &a.Category, &a.CategoryGroup, &a.SentimentLabel, &a.SentimentScore,
		&a.Happy, &a.Sad, &a.Angry, &a.Neutral, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
