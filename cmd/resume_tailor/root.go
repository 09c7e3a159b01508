package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debugLogs  bool
	jsonLogs   bool
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Log in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print a human readable summary to stderr")
}

// session bundles what every subcommand needs after startup.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *db.DB
}

// newSession loads configuration and builds the logger. The database is
// connected only when withDB is set and a URL is configured.
func newSession(ctx context.Context, withDB bool) (*session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if debugLogs {
		cfg.Log.Debug = true
	}
	if jsonLogs {
		cfg.Log.JSON = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	s := &session{cfg: cfg, logger: logger}
	if withDB && cfg.DatabaseURL != "" {
		store, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		s.store = store
	}
	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
	_ = s.logger.Sync()
}

// requireDB fails commands that only make sense against stored jobs.
func (s *session) requireDB(command string) error {
	if s.store == nil {
		return fmt.Errorf("%s needs a database: set database-url or %s_DATABASE_URL", command, config.EnvPrefix)
	}
	return nil
}

// registry prefers an explicit registry file, then the user skills stored in
// the database, then the built-in ontology with nothing verified.
func (s *session) registry(ctx context.Context) (*skills.Registry, error) {
	switch {
	case s.cfg.RegistryPath != "":
		return skills.LoadRegistry(s.cfg.RegistryPath)
	case s.store != nil:
		return s.store.LoadRegistry(ctx)
	default:
		s.logger.Warn("no skill registry configured, rewrites cannot introduce new skills")
		return skills.NewRegistry(skills.DefaultOntology(), nil), nil
	}
}

// llmClient builds the model client for the configured provider.
func (s *session) llmClient(ctx context.Context) (llm.Client, error) {
	provider, err := llm.ParseProvider(s.cfg.Provider)
	if err != nil {
		return nil, err
	}
	if provider == llm.ProviderFixture {
		return nil, fmt.Errorf("the fixture provider cannot call a model; set provider to gemini or openai")
	}
	client, err := llm.NewClient(ctx, s.cfg.LLMConfig(), s.cfg.APIKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", provider, err)
	}
	return client, nil
}

// proposer returns the text proposer for rewrites and a function that
// releases it.
func (s *session) proposer(ctx context.Context) (rewriting.TextProposer, func(), error) {
	provider, err := llm.ParseProvider(s.cfg.Provider)
	if err != nil {
		return nil, nil, err
	}
	if provider == llm.ProviderFixture {
		fixture, err := llm.LoadFixtureProposer(s.cfg.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		return fixture, func() {}, nil
	}

	client, err := s.llmClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	p := llm.NewProposer(client,
		llm.WithLogger(s.logger.With(zap.String(logging.FieldProvider, string(provider)))),
		llm.WithBreaker(s.cfg.BreakerSettings()),
	)
	return p, func() { _ = p.Close() }, nil
}

// feedback opens the configured feedback store, or an in-memory one.
func (s *session) feedback() (*rewriting.FeedbackStore, error) {
	if s.cfg.FeedbackPath == "" {
		return rewriting.NewFeedbackStore(), nil
	}
	return rewriting.OpenFeedbackStore(s.cfg.FeedbackPath)
}

// printer writes the verbose summary, or nothing without --verbose.
func printer(cmd *cobra.Command) *observability.Printer {
	if !verbose {
		return nil
	}
	return observability.NewPrinter(cmd.ErrOrStderr())
}
