package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/relevance"
	"github.com/jonathan/resume-tailor/internal/server"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Reorder experience, projects and skills by relevance to a job",
	RunE:  runOptimize,
}

var (
	optimizeResumeFile string
	optimizeJobFile    string
	optimizeOutputFile string
)

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	optimizeCmd.Flags().StringVarP(&optimizeJobFile, "job", "j", "", "Path to job skills JSON or YAML file (required)")
	optimizeCmd.Flags().StringVarP(&optimizeOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = optimizeCmd.MarkFlagRequired("resume")
	_ = optimizeCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	in, err := loadInputs(ctx, s, optimizeResumeFile, optimizeJobFile)
	if err != nil {
		return err
	}
	match, err := matching.NewSkillMatcher(in.registry).MatchJob(in.resume, in.job)
	if err != nil {
		return fmt.Errorf("failed to match resume: %w", err)
	}

	optimized := relevance.NewOptimizer(in.job, match).OptimizeAll(in.resume)
	if p := printer(cmd); p != nil {
		p.PrintJobMatch(match)
	}
	return writeOutput(cmd, optimizeOutputFile, server.OptimizeResponse{Match: match, Resume: optimized})
}
