// Package llm provides the language-model clients used to propose bullet
// rewrites, categorize skills and extract job skills, plus the proposer that
// adapts a client to the rewrite pipeline.
package llm

import "fmt"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for classification and extraction
	TierLite ModelTier = "lite"
	// TierStandard is for structured reasoning output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for candidate generation
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	// ProviderFixture serves canned proposals and never calls a model.
	ProviderFixture Provider = "fixture"
)

// ParseProvider converts a configuration string into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI, ProviderFixture:
		return Provider(s), nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q", s)
	}
}

// Config holds the model configuration for a provider
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o-mini",
			TierAdvanced: "gpt-4o",
		},
	}
}

// ConfigFor returns the default configuration of a provider.
func ConfigFor(p Provider) *Config {
	if p == ProviderOpenAI {
		return DefaultOpenAIConfig()
	}
	return DefaultGeminiConfig()
}

// GetModel returns the model name for a given tier, falling back to the
// standard tier and then the lite tier.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with model set for tier. An empty
// model leaves the config unchanged.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string, len(c.Models)+1),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	if model != "" {
		newConfig.Models[tier] = model
	}
	return newConfig
}
