package classifier

import (
	"context"
	"errors"
	"sync"

	"cognisense-backend/internal/models"
)

var (
	// ErrNotConfigured means no backend is available for a capability.
	ErrNotConfigured = errors.New("classifier not configured")
	// ErrModelUnavailable wraps failures to load a model.
	ErrModelUnavailable = errors.New("model unavailable")
	ErrEmptyText        = errors.New("empty text")
)

type SentimentModel interface {
	Sentiment(ctx context.Context, text string) (models.LabelScore, error)
}

// ZeroShotModel ranks candidate labels for a text, best first.
type ZeroShotModel interface {
	ZeroShot(ctx context.Context, text string, labels []string, multiLabel bool) ([]models.LabelScore, error)
}

// EmotionModel returns emotion labels ranked by score.
type EmotionModel interface {
	Emotions(ctx context.Context, text string) ([]models.LabelScore, error)
}

type Backend interface {
	SentimentModel
	ZeroShotModel
	EmotionModel
}

// Loaders resolve each capability's model on first use. A nil loader means
// the capability is not configured.
type Loaders struct {
	Sentiment func(ctx context.Context) (SentimentModel, error)
	ZeroShot  func(ctx context.Context) (ZeroShotModel, error)
	Emotion   func(ctx context.Context) (EmotionModel, error)
}

// LoadersFor exposes one lazily built backend under all three capabilities.
func LoadersFor(build func(ctx context.Context) (Backend, error)) Loaders {
	shared := &lazy[Backend]{load: build}
	return Loaders{
		Sentiment: func(ctx context.Context) (SentimentModel, error) { return shared.get(ctx) },
		ZeroShot:  func(ctx context.Context) (ZeroShotModel, error) { return shared.get(ctx) },
		Emotion:   func(ctx context.Context) (EmotionModel, error) { return shared.get(ctx) },
	}
}

// lazy initializes a value at most once successfully. A failed load is
// retried on the next call.
type lazy[T any] struct {
	mu    sync.Mutex
	load  func(ctx context.Context) (T, error)
	val   T
	ready bool
	loads int
}

func (l *lazy[T]) get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return l.val, nil
	}
	var zero T
	if l.load == nil {
		return zero, ErrNotConfigured
	}

	l.loads++
	v, err := l.load(ctx)
	if err != nil {
		return zero, err
	}
	l.val = v
	l.ready = true
	return v, nil
}
