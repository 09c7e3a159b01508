package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/validation"
)

var extractSkillsCmd = &cobra.Command{
	Use:   "extract-skills",
	Short: "Extract required, preferred and soft skills from a job posting",
	Long: "Send a job posting (an HTML or text file, or a URL to fetch) to the configured model " +
		"and print the skills it asks for. With --save the posting and its skills are stored as a job.",
	RunE: runExtractSkills,
}

var (
	extractPostingFile string
	extractURL         string
	extractBrowser     bool
	extractOutputFile  string
	extractSave        bool
	extractTitle       string
	extractCompany     string
	extractSourceURL   string
)

func init() {
	extractSkillsCmd.Flags().StringVarP(&extractPostingFile, "posting", "p", "", "Path to job posting HTML or text file")
	extractSkillsCmd.Flags().StringVarP(&extractURL, "url", "u", "", "URL of the job posting to fetch")
	extractSkillsCmd.Flags().BoolVar(&extractBrowser, "browser", false, "Render the URL in headless Chrome when the page is mostly script")
	extractSkillsCmd.Flags().StringVarP(&extractOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")
	extractSkillsCmd.Flags().BoolVar(&extractSave, "save", false, "Store the job in the database")
	extractSkillsCmd.Flags().StringVar(&extractTitle, "title", "", "Job title recorded with --save")
	extractSkillsCmd.Flags().StringVar(&extractCompany, "company", "", "Company recorded with --save")
	extractSkillsCmd.Flags().StringVar(&extractSourceURL, "source-url", "", "Posting URL recorded with --save")

	extractSkillsCmd.MarkFlagsMutuallyExclusive("posting", "url")
	extractSkillsCmd.MarkFlagsOneRequired("posting", "url")

	rootCmd.AddCommand(extractSkillsCmd)
}

func runExtractSkills(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, extractSave)
	if err != nil {
		return err
	}
	defer s.Close()
	if extractSave {
		if err := s.requireDB("extract-skills --save"); err != nil {
			return err
		}
	}

	posting, sourceURL, err := readPosting(ctx, s)
	if err != nil {
		return err
	}

	if screening := validation.ScreenText(posting); screening.Suspicious() {
		s.logger.Warn("posting addresses the model, redacting before extraction",
			zap.Strings("matches", screening.Matches))
	}

	client, err := s.llmClient(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := withRequestTimeout(ctx)
	defer cancel()

	jobSkills, err := parsing.ExtractJobSkills(ctx, client, posting)
	if err != nil {
		return err
	}
	if p := printer(cmd); p != nil {
		p.PrintJobSkills(&jobSkills)
	}

	if extractSave {
		description, err := parsing.CleanJobText(posting)
		if err != nil {
			return err
		}
		jobID, err := s.store.SaveJob(ctx, db.JobInput{
			Title:       extractTitle,
			Company:     extractCompany,
			Description: description,
			SourceURL:   firstNonEmpty(extractSourceURL, sourceURL),
			Skills:      jobSkills,
		})
		if err != nil {
			return err
		}
		s.logger.Info("saved job", zap.String(logging.FieldJobID, jobID))
	}

	return writeOutput(cmd, extractOutputFile, jobSkills)
}

// readPosting returns the posting text and, when fetched, its URL.
func readPosting(ctx context.Context, s *session) (string, string, error) {
	if extractURL == "" {
		data, err := os.ReadFile(extractPostingFile)
		if err != nil {
			return "", "", fmt.Errorf("failed to read posting file: %w", err)
		}
		return string(data), "", nil
	}

	posting, err := fetch.JobPosting(ctx, extractURL, fetch.Options{
		Browser: extractBrowser,
		Logger:  s.logger,
	})
	if err != nil {
		return "", "", err
	}
	s.logger.Info("fetched posting",
		zap.String("url", posting.URL),
		zap.String("platform", string(posting.Platform)),
		zap.Bool("rendered", posting.Rendered))
	return posting.Text, posting.URL, nil
}
