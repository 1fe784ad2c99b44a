package classifier

import (
	"context"
	"fmt"
	"sync"
)

type ProviderConfig struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
}

// ProviderLoaders returns lazy loaders for the configured provider and a
// close func releasing whatever client was built.
func ProviderLoaders(cfg ProviderConfig) (Loaders, func()) {
	var (
		mu      sync.Mutex
		closers []func() error
	)
	closeAll := func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range closers {
			_ = c()
		}
		closers = nil
	}

	build := func(ctx context.Context) (Backend, error) {
		switch cfg.Provider {
		case "mock":
			return NewMockBackend(), nil
		case "openai":
			return NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		case "gemini", "":
			b, closer, err := NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return nil, err
			}
			mu.Lock()
			closers = append(closers, closer)
			mu.Unlock()
			return b, nil
		default:
			return nil, fmt.Errorf("unknown classifier provider %q: %w", cfg.Provider, ErrNotConfigured)
		}
	}

	return LoadersFor(build), closeAll
}
