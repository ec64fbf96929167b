package llm

import (
	"context"
	"fmt"
	"io"

	"github.com/markdave123-py/Chatlens/internal/config"
	"github.com/markdave123-py/Chatlens/internal/core"
)

// NewProvider builds the model backend selected by cfg.ModelBackend.
// The returned closer releases backend resources and is never nil.
func NewProvider(ctx context.Context, cfg *config.Config) (core.LLMProvider, io.Closer, error) {
	switch cfg.ModelBackend {
	case config.BackendOllama:
		m, err := NewOllamaLLM(cfg.OllamaHost, cfg.OllamaModel)
		if err != nil {
			return nil, nil, err
		}
		return m, nopCloser{}, nil

	case config.BackendGemini:
		if cfg.AIAPIKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY required for gemini backend")
		}
		m, err := NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, nil, err
		}
		return m, m, nil

	default:
		return nil, nil, fmt.Errorf("unsupported model backend: %s", cfg.ModelBackend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
