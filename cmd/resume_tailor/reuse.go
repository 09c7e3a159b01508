package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/matching"
)

var reuseCmd = &cobra.Command{
	Use:   "reuse",
	Short: "Look for a stored resume that already fits a job",
	Long: "Search resumes tailored for similar stored jobs and return the first one whose " +
		"fit against this job reaches the configured minimum. Prints null when none qualifies.",
	RunE: runReuse,
}

var (
	reuseJobFile    string
	reuseExcludeJob string
	reuseOutputFile string
)

func init() {
	reuseCmd.Flags().StringVarP(&reuseJobFile, "job", "j", "", "Path to job skills JSON or YAML file (required)")
	reuseCmd.Flags().StringVar(&reuseExcludeJob, "exclude-job", "", "Stored job ID to skip, usually the job itself")
	reuseCmd.Flags().StringVarP(&reuseOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = reuseCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(reuseCmd)
}

func runReuse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.requireDB("reuse"); err != nil {
		return err
	}

	in, err := loadInputs(ctx, s, "", reuseJobFile)
	if err != nil {
		return err
	}

	checker := matching.NewReuseChecker(s.store, matching.NewSkillMatcher(in.registry))
	reuse, err := checker.FindReusableResume(ctx, in.job, matching.ReuseOptions{
		ExcludeJobID:  reuseExcludeJob,
		MinFitScore:   s.cfg.Reuse.MinFit,
		MinSimilarity: s.cfg.Reuse.MinSimilarity,
	})
	if err != nil {
		return err
	}
	if p := printer(cmd); p != nil {
		p.PrintReuse(reuse)
	}
	return writeOutput(cmd, reuseOutputFile, reuse)
}
