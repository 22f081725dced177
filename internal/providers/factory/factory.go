package factory

import (
	"fmt"

	"github.com/afterus/afterus-backend/internal/config"
	"github.com/afterus/afterus-backend/internal/providers"
	"github.com/afterus/afterus-backend/internal/providers/anthropic"
	"github.com/afterus/afterus-backend/internal/providers/openai"
)

// ProviderCanned selects the built-in keyword replies; no provider is built
const ProviderCanned = "canned"

// CreateProvider creates a provider instance based on configuration. It
// returns nil and no error for the canned generator.
func CreateProvider(cfg config.AIConfig) (providers.Provider, error) {
	switch cfg.Provider {
	case "", ProviderCanned:
		return nil, nil
	case "openai":
		return openai.NewProvider("openai", cfg)
	case "openai-compatible", "ollama":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%s provider requires ai.base_url", cfg.Provider)
		}
		return openai.NewProvider(cfg.Provider, cfg)
	case "anthropic":
		return anthropic.NewProvider("anthropic", cfg)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider)
	}
}

