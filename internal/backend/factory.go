package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/bernsteinjack-debug/shelfsnap/internal/config"
)

// New builds one adapter by name. Unknown names are a configuration error.
func New(ctx context.Context, name string, cfg *config.Config) (Adapter, error) {
	switch strings.ToLower(name) {
	case "claude":
		return NewClaudeBackend(cfg.Anthropic.APIKey, cfg.Anthropic.Model), nil

	case "openai":
		return NewOpenAIBackend(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil

	case "gemini":
		return NewGeminiBackend(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)

	case "google_vision":
		return NewGoogleVisionBackend(ctx, cfg.GoogleVision.APIKey)

	case "tesseract":
		return NewTesseractBackend(cfg.Tesseract.Languages), nil

	default:
		return nil, fmt.Errorf("unsupported detection backend: %s", name)
	}
}

// Chain builds the configured fallback chain in order.
func Chain(ctx context.Context, cfg *config.Config) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(cfg.Detection.Backends))
	for _, name := range cfg.Detection.Backends {
		a, err := New(ctx, name, cfg)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}
