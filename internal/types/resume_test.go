package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() *Resume {
	return &Resume{
		Name: "Ada Lovelace",
		Experience: []ExperienceItem{
			{
				Organization: "Analytical Engines",
				Role:         "Engineer",
				Bullets: []Bullet{
					NewBullet("Built a Python pipeline for ingestion", "Python"),
					NewBullet("Reduced latency by 40% with caching", "Redis"),
				},
			},
		},
		Projects: []ProjectItem{
			{
				Name:      "Resume Bot",
				TechStack: []string{"Go", "PostgreSQL"},
				Bullets:   []Bullet{NewBullet("Wrote a CLI in Go", "Go")},
			},
		},
		Skills:  map[string][]string{"Languages": {"Python", "Go"}},
		Version: 1,
	}
}

func TestResume_CloneIsDeep(t *testing.T) {
	original := sampleResume()
	clone := original.Clone()

	clone.Experience[0].Bullets[0].Text = "changed"
	clone.Experience[0].Bullets[0].Skills[0] = "Rust"
	clone.Projects[0].TechStack[0] = "Rust"
	clone.Skills["Languages"][0] = "Rust"
	clone.Skills["Tools"] = []string{"Git"}

	assert.Equal(t, "Built a Python pipeline for ingestion", original.Experience[0].Bullets[0].Text)
	assert.Equal(t, "Python", original.Experience[0].Bullets[0].Skills[0])
	assert.Equal(t, "Go", original.Projects[0].TechStack[0])
	assert.Equal(t, "Python", original.Skills["Languages"][0])
	assert.NotContains(t, original.Skills, "Tools")
}

func TestResume_CloneNil(t *testing.T) {
	var r *Resume
	assert.Nil(t, r.Clone())
}

func TestBullet_AppendHistoryDoesNotAlias(t *testing.T) {
	b := NewBullet("Wrote code", "Go")
	b.AppendHistory(BulletHistory{OriginalText: "a", NewText: "b"})

	clone := b
	clone.AppendHistory(BulletHistory{OriginalText: "b", NewText: "c"})
	b.AppendHistory(BulletHistory{OriginalText: "b", NewText: "d"})

	require.Len(t, clone.History, 2)
	require.Len(t, b.History, 2)
	assert.Equal(t, "c", clone.History[1].NewText)
	assert.Equal(t, "d", b.History[1].NewText)
}

func TestResume_BulletRefs(t *testing.T) {
	r := sampleResume()
	refs := r.BulletRefs()

	require.Len(t, refs, 3)
	assert.Equal(t, "exp_Analytical_Engines_0", refs[0].Key)
	assert.Equal(t, "exp_Analytical_Engines_1", refs[1].Key)
	assert.Equal(t, "proj_Resume_Bot_0", refs[2].Key)
	assert.True(t, refs[2].Project)

	ref, bullet, ok := r.LookupBullet("proj_Resume_Bot_0")
	require.True(t, ok)
	assert.Equal(t, refs[2], ref)
	assert.Equal(t, "Wrote a CLI in Go", bullet.Text)

	_, _, ok = r.LookupBullet("exp_missing_9")
	assert.False(t, ok)
}

func TestDedupeSkills(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "empty", input: nil, expected: nil},
		{name: "case insensitive", input: []string{"Go", "go", " GO "}, expected: []string{"Go"}},
		{name: "drops blanks", input: []string{"", "  ", "Python"}, expected: []string{"Python"}},
		{name: "keeps order", input: []string{"Docker", "AWS", "docker"}, expected: []string{"Docker", "AWS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeSkills(tt.input))
		})
	}
}

func TestNewJobMatch_FitScoreRange(t *testing.T) {
	tests := []struct {
		name    string
		fit     float64
		wantErr bool
	}{
		{name: "zero", fit: 0},
		{name: "one", fit: 1},
		{name: "middle", fit: 0.2857},
		{name: "negative", fit: -0.01, wantErr: true},
		{name: "above one", fit: 1.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewJobMatch(tt.fit, SkillGaps{}, nil, nil, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, m)
				assert.Contains(t, err.Error(), "fit_score")
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.fit, m.FitScore, 1e-9)
		})
	}
}

func TestBulletHistory_Validate(t *testing.T) {
	h := BulletHistory{NewText: "ok", SelectedIndex: 3}
	assert.NoError(t, h.Validate())

	h.SelectedIndex = 4
	assert.Error(t, h.Validate())

	h.SelectedIndex = 0
	h.NewText = strings.Repeat("x", MaxBulletLength+1)
	assert.Error(t, h.Validate())
}

func TestReasoning_Validate(t *testing.T) {
	r := Reasoning{ConfidenceScore: 0.85}
	assert.NoError(t, r.Validate())

	r.ConfidenceScore = 1.2
	assert.Error(t, r.Validate())
}

func TestParseRewriteIntent(t *testing.T) {
	intent, err := ParseRewriteIntent("")
	require.NoError(t, err)
	assert.Equal(t, IntentEmphasizeSkills, intent)

	for _, want := range RewriteIntents {
		got, err := ParseRewriteIntent(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = ParseRewriteIntent("make_it_pop")
	assert.Error(t, err)
}

func TestJobSkills_JSONTags(t *testing.T) {
	input := `{"required_skills":["Go"],"preferred_skills":["gRPC"],"soft_skills":["mentoring"],"seniority_indicators":["senior"]}`

	var js JobSkills
	require.NoError(t, json.Unmarshal([]byte(input), &js))
	assert.Equal(t, []string{"Go"}, js.RequiredSkills)
	assert.Equal(t, []string{"Go", "gRPC"}, js.Targeted())
	assert.Equal(t, []string{"senior"}, js.SeniorityIndicators)
}
