package parsing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestParseJobSkills_Shapes(t *testing.T) {
	want := types.JobSkills{
		RequiredSkills:      []string{"Go", "Kubernetes"},
		PreferredSkills:     []string{"PostgreSQL"},
		SoftSkills:          []string{"communication"},
		SeniorityIndicators: []string{"5+ years"},
	}

	tests := []struct {
		name  string
		input any
	}{
		{
			name: "typed",
			input: types.JobSkills{
				RequiredSkills:      []string{"golang", "Kubernetes", "go"},
				PreferredSkills:     []string{"postgresql"},
				SoftSkills:          []string{"Communication"},
				SeniorityIndicators: []string{"5+ years"},
			},
		},
		{
			name: "pointer",
			input: &types.JobSkills{
				RequiredSkills:      []string{"Go", "kubernetes"},
				PreferredSkills:     []string{"PostgreSQL"},
				SoftSkills:          []string{"communication"},
				SeniorityIndicators: []string{"5+ years"},
			},
		},
		{
			name: "map with lists",
			input: map[string]any{
				"required_skills":      []any{"Go", "Kubernetes"},
				"preferred_skills":     []any{"PostgreSQL"},
				"soft_skills":          []any{"communication"},
				"seniority_indicators": []any{"5+ years"},
			},
		},
		{
			name: "map with strings and legacy keys",
			input: map[string]any{
				"Required":     "Go, Kubernetes",
				"nice_to_have": "PostgreSQL",
				"soft":         "Communication",
				"seniority":    "5+ years",
			},
		},
		{
			name: "string map",
			input: map[string][]string{
				"required_skills":      {"Go", "Kubernetes"},
				"preferred_skills":     {"PostgreSQL"},
				"soft_skills":          {"communication"},
				"seniority_indicators": {"5+ years"},
			},
		},
		{
			name:  "JSON string",
			input: `{"required_skills":["Go","Kubernetes"],"preferred_skills":["PostgreSQL"],"soft_skills":["communication"],"seniority_indicators":["5+ years"]}`,
		},
		{
			name:  "JSON bytes",
			input: []byte(`{"required_skills":["go","k8s"],"preferred_skills":["postgresql"],"soft_skills":["communication"],"seniority_indicators":["5+ years"]}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJobSkills(tt.input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseJobSkills_RawMessage(t *testing.T) {
	got, err := ParseJobSkills(json.RawMessage(`{"soft_skills": ["Teamwork", "teamwork"], "required_skills": null}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"teamwork"}, got.SoftSkills)
	assert.Empty(t, got.RequiredSkills)
}

func TestParseJobSkills_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"nil", nil},
		{"nil pointer", (*types.JobSkills)(nil)},
		{"unsupported type", 42},
		{"invalid JSON", "{not json"},
		{"JSON array", `["Go"]`},
		{"no buckets", map[string]any{"title": "Engineer"}},
		{"wrong element type", map[string]any{"required_skills": []any{1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobSkills(tt.input)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindFormat))
		})
	}
}

func TestNormalizeSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "JavaScript", "Node.js"}, NormalizeSkills([]string{"golang", " javascript ", "nodejs", "Go", ""}))
}
