package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/analytics"
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

var skillGapsCmd = &cobra.Command{
	Use:   "skill-gaps",
	Short: "Rank the skills a resume is missing across stored jobs",
	Long: "Match the resume against every job and total the missing skills: 3 points per job " +
		"requiring a skill, 2 per job preferring it and 1 per job listing it as a soft skill. " +
		"Jobs come from --jobs or, without it, from the database.",
	RunE: runSkillGaps,
}

var (
	gapsResumeFile string
	gapsJobsFile   string
	gapsBy         string
	gapsLimit      int
	gapsCategories bool
	gapsOutputFile string
)

func init() {
	skillGapsCmd.Flags().StringVarP(&gapsResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	skillGapsCmd.Flags().StringVar(&gapsJobsFile, "jobs", "", "Path to a JSON array of jobs to analyze")
	skillGapsCmd.Flags().StringVar(&gapsBy, "by", string(analytics.ByPriority), "Ranking: priority or frequency")
	skillGapsCmd.Flags().IntVar(&gapsLimit, "limit", 100, "Maximum number of skills to list, 0 for all")
	skillGapsCmd.Flags().BoolVar(&gapsCategories, "categories", false, "Also group the missing skills by resume category")
	skillGapsCmd.Flags().StringVarP(&gapsOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = skillGapsCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(skillGapsCmd)
}

// skillGapsReport is the skill-gaps output.
type skillGapsReport struct {
	JobsAnalyzed int                  `json:"jobs_analyzed"`
	Skills       []analytics.SkillGap `json:"skills"`
	ByCategory   map[string][]string  `json:"by_category,omitempty"`
}

func runSkillGaps(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	order, err := analytics.ParseOrder(gapsBy)
	if err != nil {
		return err
	}

	s, err := newSession(ctx, gapsJobsFile == "")
	if err != nil {
		return err
	}
	defer s.Close()
	if gapsJobsFile == "" {
		if err := s.requireDB("skill-gaps without --jobs"); err != nil {
			return err
		}
	}

	var (
		resume   *types.Resume
		jobs     []types.Job
		registry *skills.Registry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resume, err = readResume(gapsResumeFile)
		return err
	})
	g.Go(func() error {
		var err error
		if gapsJobsFile != "" {
			jobs, err = readJobs(gapsJobsFile)
		} else {
			jobs, err = s.store.ListJobs(gctx)
		}
		return err
	})
	g.Go(func() error {
		var err error
		registry, err = s.registry(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	gaps, err := analytics.NewAggregator(registry).SkillGaps(resume, jobs)
	if err != nil {
		return err
	}
	report := skillGapsReport{
		JobsAnalyzed: len(jobs),
		Skills:       analytics.Rank(gaps, order, gapsLimit),
	}
	if gapsCategories {
		report.ByCategory = analytics.ByCategory(ctx, report.Skills, nil)
	}
	s.logger.Debug("aggregated skill gaps",
		zap.Int("jobs", report.JobsAnalyzed),
		zap.Int("skills", len(gaps)))
	return writeOutput(cmd, gapsOutputFile, report)
}
