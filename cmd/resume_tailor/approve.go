package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

const keepOriginal = "Keep original"

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve rewrite candidates and apply them to a resume",
	Long: "Walk through the candidates produced by rewrite and choose one per bullet, or pass " +
		"--select bullet_key=index. Approved text is written into a copy of the resume with a " +
		"history entry per change and the version bumped. Chosen text is validated again " +
		"against the skill registry, and against the job when --job is given.",
	RunE: runApprove,
}

var (
	approveResumeFile   string
	approveRewriteFile  string
	approveJobFile      string
	approveSelections   []string
	approveOutputFile   string
	approveSave         bool
	approveJobID        string
	approveSkipFeedback bool
)

// chooseCandidate returns the chosen candidate index, or -1 to keep the
// original text.
var chooseCandidate = promptCandidate

func init() {
	approveCmd.Flags().StringVarP(&approveResumeFile, "resume", "r", "", "Path to resume JSON file (required)")
	approveCmd.Flags().StringVar(&approveRewriteFile, "rewrites", "", "Path to the rewrite command's JSON output (required)")
	approveCmd.Flags().StringVarP(&approveJobFile, "job", "j", "", "Path to job skills file; chosen text may then only mention its skills")
	approveCmd.Flags().StringArrayVarP(&approveSelections, "select", "s", nil, "Non-interactive choice as bullet_key=index (repeatable)")
	approveCmd.Flags().StringVarP(&approveOutputFile, "out", "o", "", "Path to output resume JSON file (default stdout)")
	approveCmd.Flags().BoolVar(&approveSave, "save", false, "Store the updated resume and its bullet changes in the database")
	approveCmd.Flags().StringVar(&approveJobID, "job-id", "", "Stored job the resume was tailored for, used with --save")
	approveCmd.Flags().BoolVar(&approveSkipFeedback, "no-feedback", false, "Do not record choices in the feedback store")

	_ = approveCmd.MarkFlagRequired("resume")
	_ = approveCmd.MarkFlagRequired("rewrites")

	rootCmd.AddCommand(approveCmd)
}

func runApprove(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession(ctx, approveSave)
	if err != nil {
		return err
	}
	defer s.Close()
	if approveSave {
		if err := s.requireDB("approve --save"); err != nil {
			return err
		}
	}

	resume, err := readResume(approveResumeFile)
	if err != nil {
		return err
	}
	rewrites, err := readRewrites(approveRewriteFile)
	if err != nil {
		return err
	}

	var (
		selections []rewriting.Selection
		reviewed   []string
	)
	if len(approveSelections) > 0 {
		selections, err = parseSelections(approveSelections)
		if err != nil {
			return err
		}
		for _, sel := range selections {
			reviewed = append(reviewed, sel.BulletKey)
		}
	} else {
		selections, reviewed, err = reviewCandidates(rewrites.Result, chooseCandidate)
		if err != nil {
			return err
		}
	}

	registry, err := s.registry(ctx)
	if err != nil {
		return err
	}
	opts := rewriting.ApplyOptions{
		Validator:       validation.NewValidator(registry),
		ApprovedByHuman: true,
	}
	if approveJobFile != "" {
		job, err := readJobSkills(approveJobFile)
		if err != nil {
			return err
		}
		opts.JobSkills = job.Targeted()
	}

	updated, err := rewriting.ApplySelections(resume, rewrites.Result, selections, opts)
	if err != nil {
		return err
	}
	if err := schemas.ValidateValue(schemas.Resume, updated); err != nil {
		return fmt.Errorf("approved resume is invalid: %w", err)
	}

	if !approveSkipFeedback {
		store, err := s.feedback()
		if err != nil {
			return err
		}
		if err := recordFeedback(store, rewrites.Result, reviewed, selections); err != nil {
			return err
		}
	}

	if approveSave {
		changes := newHistory(resume, updated, selections)
		resumeID, err := s.store.SaveApproval(ctx, updated, approveJobID, changes)
		if err != nil {
			return err
		}
		s.logger.Info("saved approved resume",
			zap.String("resume_id", resumeID),
			zap.String(logging.FieldJobID, approveJobID),
			zap.Int("version", updated.Version),
			zap.Int("changes", len(changes)))
	}

	return writeOutput(cmd, approveOutputFile, updated)
}

func readRewrites(path string) (*server.RewriteResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rewrites file: %w", err)
	}
	var resp server.RewriteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse rewrites JSON: %w", err)
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("rewrites file %s has no candidates", path)
	}
	return &resp, nil
}

// parseSelections reads bullet_key=index pairs.
func parseSelections(values []string) ([]rewriting.Selection, error) {
	out := make([]rewriting.Selection, 0, len(values))
	for _, v := range values {
		key, idx, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid selection %q, want bullet_key=index", v)
		}
		n, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return nil, fmt.Errorf("invalid candidate index in %q: %w", v, err)
		}
		out = append(out, rewriting.Selection{BulletKey: key, CandidateIndex: n})
	}
	return out, nil
}

// reviewCandidates asks choose about every bullet in key order. Fallback
// bullets only repeat the original and are not offered.
func reviewCandidates(result types.RewriteResult, choose func(types.BulletVariations) (int, error)) ([]rewriting.Selection, []string, error) {
	var (
		selections []rewriting.Selection
		reviewed   []string
	)
	for _, key := range slices.Sorted(maps.Keys(result)) {
		v := result[key]
		if v.Fallback || len(v.Candidates) == 0 {
			continue
		}
		v.BulletKey = key
		idx, err := choose(v)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil, nil, errors.New("approval cancelled")
			}
			return nil, nil, err
		}
		reviewed = append(reviewed, key)
		if idx >= 0 {
			selections = append(selections, rewriting.Selection{BulletKey: key, CandidateIndex: idx})
		}
	}
	return selections, reviewed, nil
}

func promptCandidate(v types.BulletVariations) (int, error) {
	items := make([]string, 0, len(v.Candidates)+1)
	for i, c := range v.Candidates {
		items = append(items, fmt.Sprintf("%d. [%s risk, %.2f] %s", i+1, c.RiskLevel, c.CompositeScore, c.Text))
	}
	items = append(items, keepOriginal)

	prompt := promptui.Select{
		Label: fmt.Sprintf("%s: %s", v.BulletKey, v.Original),
		Items: items,
		Size:  len(items),
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return 0, err
	}
	if idx >= len(v.Candidates) {
		return -1, nil
	}
	return idx, nil
}

// recordFeedback marks the chosen candidate of every reviewed bullet as
// accepted and the others as rejected.
func recordFeedback(store *rewriting.FeedbackStore, result types.RewriteResult, reviewed []string, selections []rewriting.Selection) error {
	chosen := make(map[string]int, len(selections))
	for _, sel := range selections {
		chosen[sel.BulletKey] = sel.CandidateIndex
	}
	for _, key := range reviewed {
		idx, ok := chosen[key]
		if !ok {
			idx = -1
		}
		for i, c := range result[key].Candidates {
			if err := store.Record(rewriting.NewFeedback(i == idx, c, 0, "")); err != nil {
				return err
			}
		}
	}
	return nil
}

// newHistory returns the history entry each selection appended. Selections
// that kept the original text appended nothing.
func newHistory(before, after *types.Resume, selections []rewriting.Selection) map[string]types.BulletHistory {
	out := make(map[string]types.BulletHistory)
	for _, sel := range selections {
		_, old, ok := before.LookupBullet(sel.BulletKey)
		if !ok {
			continue
		}
		_, updated, ok := after.LookupBullet(sel.BulletKey)
		if !ok || len(updated.History) == len(old.History) {
			continue
		}
		out[sel.BulletKey] = updated.History[len(updated.History)-1]
	}
	return out
}
