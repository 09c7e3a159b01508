package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Regroup a resume's skills into resume categories",
	Long: "Collect every skill listed on a resume, normalize the names and group them into " +
		"categories. Skills the job asks for come first. With --llm the configured model " +
		"classifies them, falling back to the keyword table on any failure.",
	RunE: runCategorize,
}

var (
	categorizeResumeFile string
	categorizeJobFile    string
	categorizeUseLLM     bool
	categorizeOutputFile string
)

func init() {
	categorizeCmd.Flags().StringVarP(&categorizeResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	categorizeCmd.Flags().StringVarP(&categorizeJobFile, "job", "j", "", "Path to job skills JSON or YAML file")
	categorizeCmd.Flags().BoolVar(&categorizeUseLLM, "llm", false, "Classify with the configured model")
	categorizeCmd.Flags().StringVarP(&categorizeOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = categorizeCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(categorizeCmd)
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	resume, err := readResume(categorizeResumeFile)
	if err != nil {
		return err
	}
	var job types.JobSkills
	if categorizeJobFile != "" {
		if job, err = readJobSkills(categorizeJobFile); err != nil {
			return err
		}
	}

	var classifier skills.Classifier
	if categorizeUseLLM {
		client, err := s.llmClient(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		classifier = skills.NewLLMClassifier(client)
	}

	var names []string
	for _, category := range skills.OrderedCategories(resume.Skills) {
		names = append(names, resume.Skills[category]...)
	}
	if len(names) == 0 {
		return fmt.Errorf("resume %s lists no skills", categorizeResumeFile)
	}

	ctx, cancel := withRequestTimeout(ctx)
	defer cancel()
	grouped := skills.Categorize(ctx, names, job.Targeted(), classifier)
	return writeOutput(cmd, categorizeOutputFile, grouped)
}
