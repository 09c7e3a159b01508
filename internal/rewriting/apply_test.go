package rewriting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

func applyFixture() types.RewriteResult {
	return types.RewriteResult{
		"exp_Acme_0": {
			BulletKey: "exp_Acme_0",
			Original:  "Built REST APIs in Go for billing",
			Reasoning: types.Reasoning{ProblemIdentification: "Docker missing", ConfidenceScore: 0.8},
			Candidates: []types.BulletCandidate{
				{
					Text:             "Built REST APIs in Go for billing, packaged with Docker",
					DiffFromOriginal: types.Diff{Added: []string{"Docker"}},
					Justification:    types.CandidateJustification{JobRequirementsAddressed: []string{"Docker"}},
				},
				{Text: "Built REST APIs in Go for billing"},
			},
		},
	}
}

func applyOptions() ApplyOptions {
	return ApplyOptions{Validator: validation.NewValidator(testRegistry())}
}

func TestApplySelections(t *testing.T) {
	resume := testResume()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	opts := applyOptions()
	opts.ApprovedByHuman = true
	opts.Now = func() time.Time { return now }
	out, err := ApplySelections(resume, applyFixture(), []Selection{{BulletKey: "exp_Acme_0", CandidateIndex: 0}}, opts)
	require.NoError(t, err)

	bullet := out.Experience[0].Bullets[0]
	assert.Equal(t, "Built REST APIs in Go for billing, packaged with Docker", bullet.Text)
	assert.Equal(t, []string{"Go", "Docker"}, bullet.Skills)
	require.Len(t, bullet.History, 1)

	h := bullet.History[0]
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "Built REST APIs in Go for billing", h.OriginalText)
	assert.Equal(t, bullet.Text, h.NewText)
	assert.Equal(t, "Docker missing", h.Justification.Trigger)
	assert.Equal(t, []string{"Docker"}, h.Justification.SkillsAdded)
	assert.True(t, h.ApprovedByHuman)
	assert.Equal(t, now, h.Timestamp)
	assert.Equal(t, 0, h.SelectedIndex)
	require.NotNil(t, h.Reasoning)
	assert.Equal(t, 0.8, h.Reasoning.ConfidenceScore)

	assert.Equal(t, 2, out.Version)
	assert.Equal(t, now, out.DateUpdated)

	// Input untouched
	assert.Equal(t, "Built REST APIs in Go for billing", resume.Experience[0].Bullets[0].Text)
	assert.Empty(t, resume.Experience[0].Bullets[0].History)
	assert.Equal(t, 1, resume.Version)
}

func TestApplySelections_HistoryIsAppendOnly(t *testing.T) {
	first, err := ApplySelections(testResume(), applyFixture(), []Selection{{BulletKey: "exp_Acme_0"}}, applyOptions())
	require.NoError(t, err)

	next := types.RewriteResult{
		"exp_Acme_0": {
			Candidates: []types.BulletCandidate{{Text: "Built billing REST APIs in Go, shipped in Docker"}},
		},
	}
	second, err := ApplySelections(first, next, []Selection{{BulletKey: "exp_Acme_0"}}, applyOptions())
	require.NoError(t, err)

	history := second.Experience[0].Bullets[0].History
	require.Len(t, history, 2)
	assert.Equal(t, first.Experience[0].Bullets[0].History[0], history[0])
	assert.Equal(t, 3, second.Version)
	assert.Len(t, first.Experience[0].Bullets[0].History, 1)
}

func TestApplySelections_NoOpKeepsVersion(t *testing.T) {
	out, err := ApplySelections(testResume(), applyFixture(), []Selection{{BulletKey: "exp_Acme_0", CandidateIndex: 1}}, applyOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Version)
	assert.Empty(t, out.Experience[0].Bullets[0].History)
}

func TestApplySelections_Errors(t *testing.T) {
	tests := []struct {
		name      string
		result    types.RewriteResult
		selection Selection
	}{
		{name: "unknown key in result", result: applyFixture(), selection: Selection{BulletKey: "exp_Acme_5"}},
		{name: "index out of range", result: applyFixture(), selection: Selection{BulletKey: "exp_Acme_0", CandidateIndex: 2}},
		{name: "negative index", result: applyFixture(), selection: Selection{BulletKey: "exp_Acme_0", CandidateIndex: -1}},
		{
			name:      "key missing from resume",
			result:    types.RewriteResult{"exp_Other_0": {Candidates: []types.BulletCandidate{{Text: "x"}}}},
			selection: Selection{BulletKey: "exp_Other_0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplySelections(testResume(), tt.result, []Selection{tt.selection}, applyOptions())
			assert.Error(t, err)
		})
	}

	_, err := ApplySelections(nil, applyFixture(), nil, applyOptions())
	assert.Error(t, err)
}

func TestApplySelections_RejectsOverlongText(t *testing.T) {
	result := types.RewriteResult{
		"exp_Acme_0": {Candidates: []types.BulletCandidate{{Text: strings.Repeat("a", 151)}}},
	}
	_, err := ApplySelections(testResume(), result, []Selection{{BulletKey: "exp_Acme_0"}}, applyOptions())
	require.Error(t, err)

	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 1)
	assert.Equal(t, validation.ViolationLength, vErr.Violations[0].Type)
	assert.Contains(t, vErr.Error(), "151")
}

func TestApplySelections_OnlyMergesSkillsTheTextMentions(t *testing.T) {
	result := types.RewriteResult{
		"exp_Acme_0": {
			Candidates: []types.BulletCandidate{{
				Text: "Built billing REST APIs in Go",
				DiffFromOriginal: types.Diff{
					Added:   []string{"Kubernetes", "COBOL", "Docker"},
					Removed: []string{"Go"},
				},
			}},
		},
	}
	out, err := ApplySelections(testResume(), result, []Selection{{BulletKey: "exp_Acme_0"}}, applyOptions())
	require.NoError(t, err)

	bullet := out.Experience[0].Bullets[0]
	assert.Equal(t, []string{"Go"}, bullet.Skills)
	require.Len(t, bullet.History, 1)
	assert.Empty(t, bullet.History[0].Justification.SkillsAdded)
}

func TestApplySelections_RevalidatesChosenText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		jobSkills []string
		want      validation.ViolationType
	}{
		{name: "unverified skill", text: "Built REST APIs in Go on Kubernetes", want: validation.ViolationUnverifiedSkill},
		{name: "skill outside the job", text: "Built REST APIs in Go with PostgreSQL", jobSkills: []string{"Go", "Docker"}, want: validation.ViolationIrrelevantSkill},
		{name: "buzzword", text: "Built cutting-edge REST APIs in Go", want: validation.ViolationBuzzword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := types.RewriteResult{
				"exp_Acme_0": {Candidates: []types.BulletCandidate{{
					Text:             tt.text,
					DiffFromOriginal: types.Diff{Added: []string{"Kubernetes", "PostgreSQL"}},
				}}},
			}
			opts := applyOptions()
			opts.JobSkills = tt.jobSkills
			_, err := ApplySelections(testResume(), result, []Selection{{BulletKey: "exp_Acme_0"}}, opts)

			var vErr *validation.Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.want, vErr.Violations[0].Type)
		})
	}
}

func TestApplySelections_RequiresValidator(t *testing.T) {
	_, err := ApplySelections(testResume(), applyFixture(), []Selection{{BulletKey: "exp_Acme_0"}}, ApplyOptions{})
	assert.EqualError(t, err, "validator is required")
}
