package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/highlight"
	"github.com/jonathan/resume-tailor/internal/types"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Decide which skills to bold in rewritten bullets",
	Long: "Compare every bullet of a rewritten resume with the original and list the job " +
		"relevant skills to emphasize and the removed ones to de-emphasize.",
	RunE: runHighlight,
}

var (
	highlightOriginalFile  string
	highlightRewrittenFile string
	highlightJobFile       string
	highlightOutputFile    string
)

func init() {
	highlightCmd.Flags().StringVar(&highlightOriginalFile, "original", "", "Path to the original resume JSON file (required)")
	highlightCmd.Flags().StringVar(&highlightRewrittenFile, "rewritten", "", "Path to the rewritten resume JSON file (required)")
	highlightCmd.Flags().StringVarP(&highlightJobFile, "job", "j", "", "Path to job skills JSON or YAML file (required)")
	highlightCmd.Flags().StringVarP(&highlightOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = highlightCmd.MarkFlagRequired("original")
	_ = highlightCmd.MarkFlagRequired("rewritten")
	_ = highlightCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, _ []string) error {
	var (
		original, rewritten *types.Resume
		job                 types.JobSkills
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		original, err = readResume(highlightOriginalFile)
		return err
	})
	g.Go(func() (err error) {
		rewritten, err = readResume(highlightRewrittenFile)
		return err
	})
	g.Go(func() (err error) {
		job, err = readJobSkills(highlightJobFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	decisions := highlight.NewTracker(original, job).DecideAll(rewritten)
	if p := printer(cmd); p != nil {
		p.PrintHighlights(decisions)
	}
	return writeOutput(cmd, highlightOutputFile, decisions)
}
