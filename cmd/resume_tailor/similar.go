package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/types"
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find stored jobs whose skills resemble a job",
	Long: "Rank jobs by Jaccard similarity of their required and preferred skills. " +
		"Candidates come from --jobs or, without it, from the database.",
	RunE: runSimilar,
}

var (
	similarJobFile    string
	similarJobsFile   string
	similarThreshold  float64
	similarOutputFile string
)

func init() {
	similarCmd.Flags().StringVarP(&similarJobFile, "job", "j", "", "Path to job skills JSON or YAML file (required)")
	similarCmd.Flags().StringVar(&similarJobsFile, "jobs", "", "Path to a JSON array of jobs to compare against")
	similarCmd.Flags().Float64Var(&similarThreshold, "threshold", 0, "Minimum similarity (default from config)")
	similarCmd.Flags().StringVarP(&similarOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = similarCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, similarJobsFile == "")
	if err != nil {
		return err
	}
	defer s.Close()
	if similarJobsFile == "" {
		if err := s.requireDB("similar without --jobs"); err != nil {
			return err
		}
	}

	threshold := s.cfg.SimilarityThreshold
	if cmd.Flags().Changed("threshold") {
		threshold = similarThreshold
	}

	var (
		target types.JobSkills
		jobs   []types.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		target, err = readJobSkills(similarJobFile)
		return err
	})
	g.Go(func() error {
		var err error
		if similarJobsFile != "" {
			jobs, err = readJobs(similarJobsFile)
		} else {
			jobs, err = s.store.ListJobs(gctx)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	similar := matching.FindSimilarJobs(target, jobs, threshold)
	if similar == nil {
		similar = []matching.SimilarJob{}
	}
	if p := printer(cmd); p != nil {
		p.PrintSimilarJobs(similar)
	}
	return writeOutput(cmd, similarOutputFile, similar)
}
