package llm

import (
	"fmt"
	"os"
	"strings"

	"threadlens/internal/model"
)

// NewClient creates a generation client from the pipeline configuration
func NewClient(cfg model.Config) (Client, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "", "ollama":
		return NewOllamaClient(cfg.Host, cfg.Timeout, cfg.Retries), nil

	case "openai":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		baseURL := ""
		if cfg.Host != model.DefaultHost {
			baseURL = cfg.Host
		}
		return NewOpenAIClient(apiKey, baseURL, cfg.Timeout, cfg.Retries)

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: ollama, openai)", cfg.Provider)
	}
}
