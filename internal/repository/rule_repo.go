package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cognisense-backend/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type RuleRepo struct {
	pool *pgxpool.Pool
}

func NewRuleRepo(pool *pgxpool.Pool) *RuleRepo {
	return &RuleRepo{pool: pool}
}

// ListByUser returns the user's rules in insertion order.
func (r *RuleRepo) ListByUser(ctx context.Context, userID string) ([]models.DomainCategoryRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, domain_pattern, category, priority, created_at
		FROM domain_category_rules
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
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

func (r *RuleRepo) Create(ctx context.Context, rule *models.DomainCategoryRule) error {
	query := `
		INSERT INTO domain_category_rules (user_id, domain_pattern, category, priority)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, rule.UserID, rule.DomainPattern, rule.Category, rule.Priority).Scan(
		&rule.ID,
		&rule.CreatedAt,
	)
}

func (r *RuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DomainCategoryRule, error) {
	var rule models.DomainCategoryRule
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, domain_pattern, category, priority, created_at
		FROM domain_category_rules
		WHERE id = $1
	`, id).Scan(&rule.ID, &rule.UserID, &rule.DomainPattern, &rule.Category, &rule.Priority, &rule.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Delete removes a rule owned by userID. It reports whether a row was
// deleted.
func (r *RuleRepo) Delete(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM domain_category_rules WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
