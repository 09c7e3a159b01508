// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/types"
)

// EnvPrefix is prepended to every environment variable, so reuse.min-fit is
// read from RESUME_TAILOR_REUSE_MIN_FIT.
const EnvPrefix = "RESUME_TAILOR"

// Config represents the settings that can be loaded from a JSON or YAML file
// and overridden by environment variables. Missing values use defaults.
type Config struct {
	// LLM
	Provider     string `mapstructure:"provider" json:"provider,omitempty"`
	GeminiAPIKey string `mapstructure:"gemini-api-key" json:"-"`
	OpenAIAPIKey string `mapstructure:"openai-api-key" json:"-"`
	Model        string `mapstructure:"model" json:"model,omitempty"`             // overrides the candidate-generation model
	FixturePath  string `mapstructure:"fixture-path" json:"fixture_path,omitempty"` // canned proposals for the fixture provider

	// Storage
	DatabaseURL  string `mapstructure:"database-url" json:"-"`
	RegistryPath string `mapstructure:"registry-path" json:"registry_path,omitempty"` // YAML verified-skill registry
	FeedbackPath string `mapstructure:"feedback-path" json:"feedback_path,omitempty"`

	// Behavior
	Intent              string  `mapstructure:"intent" json:"intent,omitempty"`
	SimilarityThreshold float64 `mapstructure:"similarity-threshold" json:"similarity_threshold,omitempty"`

	Reuse   ReuseConfig   `mapstructure:"reuse" json:"reuse"`
	Breaker BreakerConfig `mapstructure:"breaker" json:"breaker"`
	Server  ServerConfig  `mapstructure:"server" json:"server"`
	Log     LogConfig     `mapstructure:"log" json:"log"`
}

// ReuseConfig bounds the search for a stored resume that already fits.
type ReuseConfig struct {
	MinFit        float64 `mapstructure:"min-fit" json:"min_fit"`
	MinSimilarity float64 `mapstructure:"min-similarity" json:"min_similarity"`
}

// BreakerConfig tunes the circuit breaker around model calls.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled" json:"enabled"`
	OpenTimeout      time.Duration `mapstructure:"open-timeout" json:"open_timeout"`
	MinRequests      uint32        `mapstructure:"min-requests" json:"min_requests"`
	FailureRatio     float64       `mapstructure:"failure-ratio" json:"failure_ratio"`
	RetryMaxAttempts int           `mapstructure:"retry-max-attempts" json:"retry_max_attempts"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int     `mapstructure:"port" json:"port"`
	RateLimit float64 `mapstructure:"rate-limit" json:"rate_limit"` // requests per second per client, 0 disables
	Burst     int     `mapstructure:"burst" json:"burst"`
}

// LogConfig selects the log encoding and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json" json:"json"`
	Debug bool `mapstructure:"debug" json:"debug"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	breaker := llm.DefaultBreakerConfig()
	return Config{
		Provider:            string(llm.ProviderGemini),
		Intent:              string(types.IntentEmphasizeSkills),
		SimilarityThreshold: matching.DefaultSimilarityThreshold,
		Reuse: ReuseConfig{
			MinFit:        matching.DefaultMinReuseFit,
			MinSimilarity: matching.DefaultSimilarityThreshold,
		},
		Breaker: BreakerConfig{
			Enabled:          breaker.Enabled,
			OpenTimeout:      breaker.OpenTimeout,
			MinRequests:      breaker.MinRequests,
			FailureRatio:     breaker.FailureRatio,
			RetryMaxAttempts: breaker.RetryMaxAttempts,
		},
		Server: ServerConfig{
			Port:      8080,
			RateLimit: 5,
			Burst:     10,
		},
	}
}

// LoadConfig reads path (JSON or YAML, by extension) when it is not empty,
// applies RESUME_TAILOR_* environment overrides and fills defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The provider SDKs' conventional variables are honored as fallbacks.
	_ = v.BindEnv("gemini-api-key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("openai-api-key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("database-url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("gemini-api-key", "")
	v.SetDefault("openai-api-key", "")
	v.SetDefault("model", "")
	v.SetDefault("fixture-path", "")
	v.SetDefault("database-url", "")
	v.SetDefault("registry-path", "")
	v.SetDefault("feedback-path", "")
	v.SetDefault("intent", d.Intent)
	v.SetDefault("similarity-threshold", d.SimilarityThreshold)
	v.SetDefault("reuse.min-fit", d.Reuse.MinFit)
	v.SetDefault("reuse.min-similarity", d.Reuse.MinSimilarity)
	v.SetDefault("breaker.enabled", d.Breaker.Enabled)
	v.SetDefault("breaker.open-timeout", d.Breaker.OpenTimeout)
	v.SetDefault("breaker.min-requests", d.Breaker.MinRequests)
	v.SetDefault("breaker.failure-ratio", d.Breaker.FailureRatio)
	v.SetDefault("breaker.retry-max-attempts", d.Breaker.RetryMaxAttempts)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.rate-limit", d.Server.RateLimit)
	v.SetDefault("server.burst", d.Server.Burst)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.debug", d.Log.Debug)
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for API keys since the fixture provider and the
// offline commands never need one.
func (c *Config) Validate() error {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if provider == llm.ProviderFixture && c.FixturePath == "" {
		return fmt.Errorf("config error: 'fixture-path' is required for the fixture provider")
	}

	if _, err := types.ParseRewriteIntent(c.Intent); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Validate numeric ranges
	for name, value := range map[string]float64{
		"similarity-threshold": c.SimilarityThreshold,
		"reuse.min-fit":        c.Reuse.MinFit,
		"reuse.min-similarity": c.Reuse.MinSimilarity,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("config error: '%s' must be between 0 and 1", name)
		}
	}
	if c.Breaker.FailureRatio < 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("config error: 'breaker.failure-ratio' must be between 0 and 1")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 0 and 65535")
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("config error: 'server.rate-limit' and 'server.burst' must be non-negative")
	}

	// Validate file paths exist (if specified)
	for name, path := range map[string]string{
		"registry-path": c.RegistryPath,
		"fixture-path":  c.FixturePath,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s not found: %s", name, path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. The CLI uses it to lay flag values over the loaded config.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.Provider, defaults.Provider)
	mergeString(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	mergeString(&result.OpenAIAPIKey, defaults.OpenAIAPIKey)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.FixturePath, defaults.FixturePath)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.RegistryPath, defaults.RegistryPath)
	mergeString(&result.FeedbackPath, defaults.FeedbackPath)
	mergeString(&result.Intent, defaults.Intent)

	// Numeric fields: use default if zero
	mergeFloat(&result.SimilarityThreshold, defaults.SimilarityThreshold)
	mergeFloat(&result.Reuse.MinFit, defaults.Reuse.MinFit)
	mergeFloat(&result.Reuse.MinSimilarity, defaults.Reuse.MinSimilarity)
	mergeFloat(&result.Breaker.FailureRatio, defaults.Breaker.FailureRatio)
	mergeFloat(&result.Server.RateLimit, defaults.Server.RateLimit)
	if result.Breaker.OpenTimeout == 0 {
		result.Breaker.OpenTimeout = defaults.Breaker.OpenTimeout
	}
	if result.Breaker.MinRequests == 0 {
		result.Breaker.MinRequests = defaults.Breaker.MinRequests
	}
	if result.Breaker.RetryMaxAttempts == 0 {
		result.Breaker.RetryMaxAttempts = defaults.Breaker.RetryMaxAttempts
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.Burst == 0 {
		result.Server.Burst = defaults.Server.Burst
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeFloat(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if llm.Provider(c.Provider) == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// LLMConfig returns the model configuration for the configured provider with
// the Model override applied to candidate generation.
func (c *Config) LLMConfig() *llm.Config {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		provider = llm.ProviderGemini
	}
	return llm.ConfigFor(provider).WithModel(llm.TierAdvanced, c.Model)
}

// BreakerSettings converts the breaker section to the llm package's form.
func (c *Config) BreakerSettings() llm.BreakerConfig {
	out := llm.DefaultBreakerConfig()
	out.Enabled = c.Breaker.Enabled
	if c.Breaker.OpenTimeout > 0 {
		out.OpenTimeout = c.Breaker.OpenTimeout
	}
	if c.Breaker.MinRequests > 0 {
		out.MinRequests = c.Breaker.MinRequests
	}
	if c.Breaker.FailureRatio > 0 {
		out.FailureRatio = c.Breaker.FailureRatio
	}
	if c.Breaker.RetryMaxAttempts > 0 {
		out.RetryMaxAttempts = c.Breaker.RetryMaxAttempts
	}
	return out
}

// Timeouts used by callers that wrap model calls.
const (
	DefaultRequestTimeout = 2 * time.Minute
)
