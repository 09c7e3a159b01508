package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/jonathan/resume-tailor/internal/types"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Propose ranked rewrites for bullets that can close skill gaps",
	Long: "Generate reasoning and up to four validated, ranked candidates for every bullet " +
		"that can address a missing job skill. The output feeds the approve command.",
	RunE: runRewrite,
}

var (
	rewriteResumeFile string
	rewriteJobFile    string
	rewriteMatchFile  string
	rewriteIntent     string
	rewriteBulletKey  string
	rewriteOutputFile string
)

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	rewriteCmd.Flags().StringVarP(&rewriteJobFile, "job", "j", "", "Path to job skills JSON or YAML file (required)")
	rewriteCmd.Flags().StringVar(&rewriteMatchFile, "match", "", "Path to a match JSON file from the match command (computed when omitted)")
	rewriteCmd.Flags().StringVar(&rewriteIntent, "intent", "", "Rewrite intent: emphasize_skills, more_technical, more_concise, conservative or reword_only")
	rewriteCmd.Flags().StringVar(&rewriteBulletKey, "bullet", "", "Regenerate a single bullet, e.g. exp_0_bullet_1")
	rewriteCmd.Flags().StringVarP(&rewriteOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = rewriteCmd.MarkFlagRequired("resume")
	_ = rewriteCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	intent, err := types.ParseRewriteIntent(firstNonEmpty(rewriteIntent, s.cfg.Intent))
	if err != nil {
		return err
	}

	in, err := loadInputs(ctx, s, rewriteResumeFile, rewriteJobFile)
	if err != nil {
		return err
	}

	match, err := loadOrComputeMatch(rewriteMatchFile, in)
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
	rewriter := rewriting.NewRewriter(proposer, in.registry,
		rewriting.WithLogger(s.logger),
		rewriting.WithFeedback(feedback),
	)

	ctx, cancel := withRequestTimeout(ctx)
	defer cancel()

	var result types.RewriteResult
	if rewriteBulletKey != "" {
		var variations types.BulletVariations
		variations, err = rewriter.RegenerateBullet(ctx, in.resume, match, in.job, rewriteBulletKey, intent)
		result = types.RewriteResult{rewriteBulletKey: variations}
	} else {
		result, err = rewriter.GenerateVariations(ctx, in.resume, match, in.job, intent)
	}
	if err != nil {
		return fmt.Errorf("failed to generate rewrites: %w", err)
	}

	s.logger.Info("generated rewrites",
		zap.String(logging.FieldIntent, string(intent)),
		zap.Int("bullets", len(result)))
	if p := printer(cmd); p != nil {
		p.PrintJobMatch(match)
		p.PrintRewriteResult(result)
	}
	return writeOutput(cmd, rewriteOutputFile, server.RewriteResponse{Match: match, Result: result})
}

// loadOrComputeMatch reads a stored match or scores the resume now.
func loadOrComputeMatch(path string, in *inputs) (*types.JobMatch, error) {
	if path == "" {
		match, err := matching.NewSkillMatcher(in.registry).MatchJob(in.resume, in.job)
		if err != nil {
			return nil, fmt.Errorf("failed to match resume: %w", err)
		}
		return match, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read match file: %w", err)
	}
	var match types.JobMatch
	if err := json.Unmarshal(data, &match); err != nil {
		return nil, fmt.Errorf("failed to parse match JSON: %w", err)
	}
	if err := match.Validate(); err != nil {
		return nil, err
	}
	return &match, nil
}

func withRequestTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, config.DefaultRequestTimeout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
