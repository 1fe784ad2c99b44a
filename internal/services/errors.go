package services

import "cognisense-backend/internal/classifier"

// ErrNotConfigured means a required collaborator (durable store,
// classifier backend) is absent.
var ErrNotConfigured = classifier.ErrNotConfigured

type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string { return "Validation error" }

func (e *ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }
