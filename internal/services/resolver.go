package services

import (
	"context"
	"sort"
	"strings"

	"cognisense-backend/internal/logger"
	"cognisense-backend/internal/models"
)

// RuleSource lists a user's domain category rules in insertion order.
type RuleSource interface {
	ListByUser(ctx context.Context, userID string) ([]models.DomainCategoryRule, error)
}

// Resolution statuses.
const (
	ResolutionResolved = "resolved"
	ResolutionNone     = "none"
	ResolutionDegraded = "degraded"
)

type Resolution struct {
	Status   string
	Category string
	Rule     *models.DomainCategoryRule
	Err      error
}

// CategoryResolver picks the single override category a user's rules assign
// to a domain.
type CategoryResolver struct {
	rules RuleSource
	loose bool
	log   *logger.Logger
}

// NewCategoryResolver returns a resolver. A nil rules source resolves
// nothing. loose additionally accepts raw suffix matches ("myexample.com"
// for pattern "example.com").
func NewCategoryResolver(rules RuleSource, loose bool, log *logger.Logger) *CategoryResolver {
	return &CategoryResolver{rules: rules, loose: loose, log: logger.OrNop(log)}
}

func (r *CategoryResolver) Resolve(ctx context.Context, userID, domain string) Resolution {
	if r == nil || r.rules == nil {
		return Resolution{Status: ResolutionNone}
	}
	domain = NormalizeDomain(domain)
	if domain == "" {
		return Resolution{Status: ResolutionNone}
	}

	rules, err := r.rules.ListByUser(ctx, userID)
	if err != nil {
		r.log.Warn("Domain rule lookup failed", "user_id", userID, "domain", domain, "error", err)
		return Resolution{Status: ResolutionDegraded, Err: err}
	}

	type candidate struct {
		rule    models.DomainCategoryRule
		pattern string
	}
	var matches []candidate
	for _, rule := range rules {
		p := NormalizeDomain(rule.DomainPattern)
		if p != "" && r.matches(domain, p) {
			matches = append(matches, candidate{rule: rule, pattern: p})
		}
	}
	if len(matches) == 0 {
		return Resolution{Status: ResolutionNone}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rule.Priority != matches[j].rule.Priority {
			return matches[i].rule.Priority > matches[j].rule.Priority
		}
		return len(matches[i].pattern) > len(matches[j].pattern)
	})

	win := matches[0].rule
	return Resolution{Status: ResolutionResolved, Category: win.Category, Rule: &win}
}

func (r *CategoryResolver) matches(domain, pattern string) bool {
	if domain == pattern || strings.HasSuffix(domain, "."+pattern) {
		return true
	}
	return r.loose && strings.HasSuffix(domain, pattern)
}

// NormalizeDomain lowercases, drops the scheme, one leading "*." or "." and
// anything from the first "/".
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if strings.HasPrefix(s, "*.") {
		s = s[2:]
	} else {
		s = strings.TrimPrefix(s, ".")
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
