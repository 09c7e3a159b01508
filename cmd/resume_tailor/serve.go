package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/metrics"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Start the HTTP API server for matching, similarity search, rewrites, approval, highlighting and ordering.",
	RunE:  runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config, 8080)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	port := s.cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	registry, err := s.registry(ctx)
	if err != nil {
		return err
	}

	proposer, release, err := s.proposer(ctx)
	if err != nil {
		return err
	}
	defer release()

	feedback, err := s.feedback()
	if err != nil {
		return err
	}

	m := metrics.New()
	deps := server.Deps{
		Registry: registry,
		Rewriter: rewriting.NewRewriter(proposer, registry,
			rewriting.WithLogger(s.logger),
			rewriting.WithFeedback(feedback),
			rewriting.WithObserver(m),
		),
		Metrics: m,
		Logger:  s.logger,
	}
	if s.store != nil {
		deps.Jobs = s.store
	}

	srv, err := server.New(server.Config{
		Port:           port,
		RateLimit:      s.cfg.Server.RateLimit,
		Burst:          s.cfg.Server.Burst,
		RequestTimeout: config.DefaultRequestTimeout,
	}, deps)
	if err != nil {
		return err
	}
	defer srv.Close()

	s.logger.Info("dependencies ready",
		zap.Int("port", port),
		zap.String("provider", s.cfg.Provider),
		zap.Bool("database", s.store != nil))
	return srv.Start(ctx)
}
