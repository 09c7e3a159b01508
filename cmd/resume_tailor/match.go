package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/matching"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a resume against a job's skills",
	Long: "Compute the weighted fit score, skill gaps and recommendations for a resume " +
		"against a job. With --save the job, the resume and the match are stored.",
	RunE: runMatch,
}

var (
	matchResumeFile string
	matchJobFile    string
	matchOutputFile string
	matchSave       bool
	matchTitle      string
	matchCompany    string
)

func init() {
	matchCmd.Flags().StringVarP(&matchResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	matchCmd.Flags().StringVarP(&matchJobFile, "job", "j", "", "Path to job skills JSON or YAML file (required)")
	matchCmd.Flags().StringVarP(&matchOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")
	matchCmd.Flags().BoolVar(&matchSave, "save", false, "Store the job, resume and match in the database")
	matchCmd.Flags().StringVar(&matchTitle, "title", "", "Job title recorded with --save")
	matchCmd.Flags().StringVar(&matchCompany, "company", "", "Company recorded with --save")

	_ = matchCmd.MarkFlagRequired("resume")
	_ = matchCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, matchSave)
	if err != nil {
		return err
	}
	defer s.Close()
	if matchSave {
		if err := s.requireDB("match --save"); err != nil {
			return err
		}
	}

	in, err := loadInputs(ctx, s, matchResumeFile, matchJobFile)
	if err != nil {
		return err
	}

	match, err := matching.NewSkillMatcher(in.registry).MatchJob(in.resume, in.job)
	if err != nil {
		return fmt.Errorf("failed to match resume: %w", err)
	}
	if p := printer(cmd); p != nil {
		p.PrintJobSkills(&in.job)
		p.PrintJobMatch(match)
	}

	if matchSave {
		jobID, err := s.store.SaveJob(ctx, db.JobInput{Title: matchTitle, Company: matchCompany, Skills: in.job})
		if err != nil {
			return err
		}
		resumeID, err := s.store.SaveResume(ctx, in.resume, "")
		if err != nil {
			return err
		}
		if _, err := s.store.SaveJobMatch(ctx, jobID, resumeID, match, false); err != nil {
			return err
		}
		s.logger.Info("saved match",
			zap.String(logging.FieldJobID, jobID),
			zap.String("resume_id", resumeID),
			zap.Float64("fit_score", match.FitScore))
	}

	return writeOutput(cmd, matchOutputFile, match)
}
