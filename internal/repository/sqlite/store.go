package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"cognisense-backend/internal/models"
	"cognisense-backend/internal/repository"
)

// Store implements the rule, session and analysis repositories on SQLite.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.DomainCategoryRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, domain_pattern, category, priority, created_at
		FROM domain_category_rules
		WHERE user_id = ?
		ORDER BY rowid ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.DomainCategoryRule
	for rows.Next() {
		var rule models.DomainCategoryRule
		if err := rows.Scan(&rule.ID, &rule.UserID, &rule.DomainPattern, &rule.Category, &rule.Priority, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *Store) Create(ctx context.Context, rule *models.DomainCategoryRule) error {
	rule.ID = uuid.New()
	rule.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domain_category_rules (id, user_id, domain_pattern, category, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rule.ID.String(), rule.UserID, rule.DomainPattern, rule.Category, rule.Priority, rule.CreatedAt)
	return err
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.DomainCategoryRule, error) {
	var rule models.DomainCategoryRule
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, domain_pattern, category, priority, created_at
		FROM domain_category_rules
		WHERE id = ?
	`, id.String()).Scan(&rule.ID, &rule.UserID, &rule.DomainPattern, &rule.Category, &rule.Priority, &rule.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM domain_category_rules WHERE id = ? AND user_id = ?`, id.String(), userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) InsertSession(ctx context.Context, row *models.SessionRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, url, domain, start_time, end_time, duration_seconds, clicks, keypresses, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID.String(), row.UserID, row.URL, row.Domain, row.StartTime.UTC(), row.EndTime.UTC(),
		row.DurationSeconds, row.Clicks, row.Keypresses, row.CreatedAt.UTC())
	return err
}

func (s *Store) UpsertAnalysis(ctx context.Context, a *models.AnalysisRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_analysis (
			url, domain, category, category_group, sentiment_label, sentiment_score,
			emotion_happy, emotion_sad, emotion_angry, emotion_neutral, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			domain = excluded.domain,
			category = excluded.category,
			category_group = excluded.category_group,
			sentiment_label = excluded.sentiment_label,
			sentiment_score = excluded.sentiment_score,
			emotion_happy = excluded.emotion_happy,
			emotion_sad = excluded.emotion_sad,
			emotion_angry = excluded.emotion_angry,
			emotion_neutral = excluded.emotion_neutral,
			updated_at = excluded.updated_at
	`, a.URL, a.Domain, a.Category, a.CategoryGroup, a.SentimentLabel, a.SentimentScore,
		a.Happy, a.Sad, a.Angry, a.Neutral, a.UpdatedAt.UTC())
	return err
}

func (s *Store) GetAnalysis(ctx context.Context, url string) (*models.AnalysisRow, error) {
	var a models.AnalysisRow
	err := s.db.QueryRowContext(ctx, `
		SELECT url, domain, category, category_group, sentiment_label, sentiment_score,
			emotion_happy, emotion_sad, emotion_angry, emotion_neutral, updated_at
		FROM content_analysis
		WHERE url = ?
	`, url).Scan(&a.URL, &a.Domain, &a.Category, &a.CategoryGroup, &a.SentimentLabel, &a.SentimentScore,
		&a.Happy, &a.Sad, &a.Angry, &a.Neutral, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
