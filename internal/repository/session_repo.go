package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"cognisense-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) InsertSession(ctx context.Context, s *models.SessionRow) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, url, domain, start_time, end_time, duration_seconds, clicks, keypresses, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID, s.UserID, s.URL, s.Domain, s.StartTime, s.EndTime, s.DurationSeconds, s.Clicks, s.Keypresses, s.CreatedAt)
	return err
}
