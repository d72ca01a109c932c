// Package embedding provides factory functions for creating embedding
// provider adapters from configuration.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/doccloud/retrieval/internal/adapters/driven/embedding/ollama"
	"github.com/doccloud/retrieval/internal/adapters/driven/embedding/openai"
	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// New creates the embedding provider selected by configuration.
//
// Config keys:
//
//	embedding.provider  "openai" | "ollama" | "" (disabled)
//	embedding.model     provider-specific model name
//	embedding.base_url  provider endpoint override
//	embedding.api_key   API key (openai only)
//
// Returns (nil, nil) when no provider is configured: semantic scoring is
// simply disabled and the engine runs lexical-only.
func New(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := cfg.GetString("embedding.provider")
	switch provider {
	case "":
		return nil, nil
	case "openai":
		return openai.New(openai.Config{
			APIKey:  cfg.GetString("embedding.api_key"),
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
	case "ollama":
		return ollama.New(ollama.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, provider)
	}
}

// NewValidated creates the configured provider and validates connectivity
// with a lightweight ping. On ping failure the provider is closed and an
// error wrapping domain.ErrEmbeddingUnavailable is returned; callers may
// choose to continue lexical-only.
func NewValidated(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	svc, err := New(cfg)
	if err != nil || svc == nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: provider unreachable: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}
