package rewriting

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

// Selection picks one ranked candidate for a bullet.
type Selection struct {
	BulletKey      string `json:"bullet_key"`
	CandidateIndex int    `json:"candidate_index"`
}

// ApplyOptions controls how approved selections are checked and recorded.
type ApplyOptions struct {
	// Validator re-checks every chosen text. Required.
	Validator *validation.Validator
	// JobSkills, when non-nil, also restricts skill mentions to the job.
	JobSkills       []string
	ApprovedByHuman bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// ApplySelections returns a copy of resume with each selected candidate's
// text written into its bullet, a history entry appended and the version
// bumped. The input resume is never modified. A selection that keeps the
// original text is a no-op.
//
// Chosen text must pass the validator again, and only the self-reported
// added skills that the text actually mentions reach the bullet's skills.
func ApplySelections(resume *types.Resume, result types.RewriteResult, selections []Selection, opts ApplyOptions) (*types.Resume, error) {
	if resume == nil {
		return nil, fmt.Errorf("resume is required")
	}
	if opts.Validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	out := resume.Clone()
	changed := 0
	for _, sel := range selections {
		variations, ok := result[sel.BulletKey]
		if !ok {
			return nil, fmt.Errorf("no candidates for bullet %q", sel.BulletKey)
		}
		if sel.CandidateIndex < 0 || sel.CandidateIndex >= len(variations.Candidates) || sel.CandidateIndex >= MaxCandidates {
			return nil, fmt.Errorf("candidate index %d out of range for bullet %q", sel.CandidateIndex, sel.BulletKey)
		}
		_, bullet, ok := out.LookupBullet(sel.BulletKey)
		if !ok {
			return nil, fmt.Errorf("bullet %q not found in resume", sel.BulletKey)
		}

		chosen := variations.Candidates[sel.CandidateIndex]
		if chosen.Text == bullet.Text {
			continue
		}
		check := opts.Validator.Validate(chosen.Text, bullet.Text, validation.Options{
			JobSkills: opts.JobSkills,
			Intent:    chosen.RewriteIntent,
		})
		if !check.Valid() {
			return nil, &validation.Error{
				Message:    fmt.Sprintf("selection for %s rejected", sel.BulletKey),
				Violations: check.Violations,
			}
		}
		mentioned := opts.Validator.SkillTokens(chosen.Text)
		added := mentionedSkills(chosen.DiffFromOriginal.Added, mentioned)

		reasoning := variations.Reasoning
		entry := types.BulletHistory{
			ID:           uuid.NewString(),
			OriginalText: bullet.Text,
			NewText:      chosen.Text,
			Justification: types.Justification{
				Trigger:          reasoning.ProblemIdentification,
				SkillsAdded:      added,
				ATSKeywordsAdded: types.DedupeSkills(chosen.Justification.JobRequirementsAddressed),
			},
			Reasoning:       &reasoning,
			ApprovedByHuman: opts.ApprovedByHuman,
			Timestamp:       now().UTC(),
			SelectedIndex:   sel.CandidateIndex,
		}
		if err := entry.Validate(); err != nil {
			return nil, &validation.Error{Message: fmt.Sprintf("selection for %s rejected", sel.BulletKey), Cause: err}
		}

		bullet.Text = chosen.Text
		bullet.Skills = mergeSkills(bullet.Skills, added, unmentioned(chosen.DiffFromOriginal.Removed, chosen.Text))
		bullet.AppendHistory(entry)
		changed++
	}

	if changed > 0 {
		out.Version++
		out.DateUpdated = now().UTC()
	}
	return out, nil
}

// mergeSkills adds and removes skill names case-insensitively, keeping the
// existing order.
func mergeSkills(current, added, removed []string) []string {
	drop := make(map[string]bool, len(removed))
	for _, s := range removed {
		drop[strings.ToLower(strings.TrimSpace(s))] = true
	}
	var out []string
	for _, s := range append(append([]string{}, current...), added...) {
		if !drop[strings.ToLower(strings.TrimSpace(s))] {
			out = append(out, s)
		}
	}
	return types.DedupeSkills(out)
}

// mentionedSkills keeps the claimed skills whose name is one of the skill
// tokens found in the text.
func mentionedSkills(claimed, tokens []string) []string {
	found := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		found[t] = true
	}
	var out []string
	for _, s := range claimed {
		if found[skills.Key(s)] {
			out = append(out, s)
		}
	}
	return types.DedupeSkills(out)
}

// unmentioned keeps the claimed removals the text no longer mentions.
func unmentioned(claimed []string, text string) []string {
	var out []string
	for _, s := range claimed {
		if !skills.MentionsTerm(text, s) {
			out = append(out, s)
		}
	}
	return out
}
