package llm

import (
	"context"
	"fmt"
)

// defaultTemperature keeps rewrites close to the source wording.
const defaultTemperature = 0.1

// Client is the model surface used by job-skill extraction, skill
// categorization and the rewrite proposer.
type Client interface {
	// GenerateContent returns free-form text for prompt.
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON returns a JSON document for prompt with any markdown
	// fence already stripped.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient builds the client for config.Provider. The fixture provider has
// no model behind it and is rejected.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderFixture:
		return nil, fmt.Errorf("provider %s has no model client", config.Provider)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}

// ResponseError reports a model reply that carried no usable text, such as
// a safety block or an empty completion.
type ResponseError struct {
	Provider Provider
	Model    string
	Reason   string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s model %s returned no usable output: %s", e.Provider, e.Model, e.Reason)
}
