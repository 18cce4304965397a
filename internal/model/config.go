package model

import (
	"fmt"
	"time"
)

// Default model and pipeline parameters
const (
	DefaultProvider           = "ollama"
	DefaultHost               = "http://localhost:11434"
	DefaultChatModel          = "llama3.2:latest"
	DefaultEmbedModel         = "nomic-embed-text"
	DefaultTopK               = 10
	DefaultMaxSummaryComments = 40
	DefaultMMRLambda          = 0.65
	DefaultClassifyWorkers    = 4
	DefaultTimeout            = 60 * time.Second
	DefaultRetries            = 2
)

// DefaultWeights returns the default ranking weights
// (novelty, controversy, popularity)
func DefaultWeights() [3]float64 {
	return [3]float64{0.45, 0.45, 0.10}
}

// Config holds the per-invocation pipeline configuration.
// It is passed by value and never mutated in place; concurrent invocations
// with different configs do not interfere.
type Config struct {
	Provider           string        `yaml:"provider" json:"provider"`       // "ollama" or "openai"
	Host               string        `yaml:"host" json:"host"`               // Service base URL
	APIKey             string        `yaml:"api_key,omitempty" json:"-"`     // Only for OpenAI-compatible endpoints
	ChatModel          string        `yaml:"chat_model" json:"chat_model"`
	EmbedModel         string        `yaml:"embed_model" json:"embed_model"`
	TopK               int           `yaml:"topk" json:"topk"`
	MaxSummaryComments int           `yaml:"max_summary_comments" json:"max_summary_comments"`
	Weights            [3]float64    `yaml:"weights" json:"weights"` // novelty, controversy, popularity
	MMRLambda          float64       `yaml:"mmr_lambda" json:"mmr_lambda"`
	ClassifyWorkers    int           `yaml:"classify_workers" json:"classify_workers"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout"`
	Retries            int           `yaml:"retries" json:"retries"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Provider:           DefaultProvider,
		Host:               DefaultHost,
		ChatModel:          DefaultChatModel,
		EmbedModel:         DefaultEmbedModel,
		TopK:               DefaultTopK,
		MaxSummaryComments: DefaultMaxSummaryComments,
		Weights:            DefaultWeights(),
		MMRLambda:          DefaultMMRLambda,
		ClassifyWorkers:    DefaultClassifyWorkers,
		Timeout:            DefaultTimeout,
		Retries:            DefaultRetries,
	}
}

// ConfigOverride carries optional per-request overrides. Nil fields leave the
// base configuration untouched.
type ConfigOverride struct {
	Provider           *string    `json:"provider,omitempty"`
	Host               *string    `json:"host,omitempty"`
	ChatModel          *string    `json:"chat_model,omitempty"`
	EmbedModel         *string    `json:"embed_model,omitempty"`
	TopK               *int       `json:"topk,omitempty"`
	MaxSummaryComments *int       `json:"max_summary_comments,omitempty"`
	Weights            *[]float64 `json:"weights,omitempty"`
}

// Override returns a copy of base with every non-nil override applied
func (o ConfigOverride) Override(base Config) Config {
	cfg := base
	if o.Provider != nil {
		cfg.Provider = *o.Provider
	}
	if o.Host != nil {
		cfg.Host = *o.Host
	}
	if o.ChatModel != nil {
		cfg.ChatModel = *o.ChatModel
	}
	if o.EmbedModel != nil {
		cfg.EmbedModel = *o.EmbedModel
	}
	if o.TopK != nil {
		cfg.TopK = *o.TopK
	}
	if o.MaxSummaryComments != nil {
		cfg.MaxSummaryComments = *o.MaxSummaryComments
	}
	if o.Weights != nil {
		cfg.Weights = PadWeights(*o.Weights)
	}
	return cfg
}

// PadWeights converts a variable-length weight slice into the fixed
// (novelty, controversy, popularity) triple, padding missing entries with 0
func PadWeights(w []float64) [3]float64 {
	var out [3]float64
	for i := 0; i < len(w) && i < 3; i++ {
		out[i] = w[i]
	}
	return out
}

// Validate rejects configurations that would misbehave downstream.
// It runs at the call boundary, before any service call is issued.
func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("config: topk must be positive, got %d", c.TopK)
	}
	if c.MaxSummaryComments <= 0 {
		return fmt.Errorf("config: max_summary_comments must be positive, got %d", c.MaxSummaryComments)
	}
	for i, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("config: weight %d must be non-negative, got %g", i, w)
		}
	}
	if c.MMRLambda < 0 || c.MMRLambda > 1 {
		return fmt.Errorf("config: mmr_lambda must be in [0,1], got %g", c.MMRLambda)
	}
	if c.ClassifyWorkers < 0 {
		return fmt.Errorf("config: classify_workers must not be negative, got %d", c.ClassifyWorkers)
	}
	return nil
}

// Used summarizes the effective configuration for inclusion in results
func (c Config) Used() ConfigUsed {
	return ConfigUsed{
		Host:               c.Host,
		Provider:           c.Provider,
		ChatModel:          c.ChatModel,
		EmbedModel:         c.EmbedModel,
		TopK:               c.TopK,
		MaxSummaryComments: c.MaxSummaryComments,
		Weights:            []float64{c.Weights[0], c.Weights[1], c.Weights[2]},
	}
}
