package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "golang", expected: "Go"},
		{input: "  node.js ", expected: "Node.js"},
		{input: `\textbf{python`, expected: "Python"},
		{input: "Scikit-learn}", expected: "Scikit-learn"},
		{input: "{react Native", expected: "React Native"},
		{input: "machine learning", expected: "Machine Learning"},
		{input: "AWS", expected: "AWS"},
		{input: "ci/cd", expected: "CI/CD"},
		{input: "design of experiments", expected: "Design of Experiments"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayName(tt.input))
		})
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"python", "Python", "golang", "Go", "k8s", "Kubernetes", ""})
	assert.Equal(t, []string{"Python", "Go", "Kubernetes"}, got)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps("React", "react native"))
	assert.True(t, Overlaps(" Go ", "go"))
	assert.True(t, Overlaps("Java", "JavaScript"))
	assert.False(t, Overlaps("Rust", "Go"))
	assert.False(t, Overlaps("", "Go"))
	assert.True(t, OverlapsAny("docker", []string{"Kubernetes", "Docker Compose"}))
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		skill    string
		category string
	}{
		{skill: "Python", category: CategoryLanguages},
		{skill: "TensorFlow", category: CategoryMLAI},
		{skill: "React Native", category: CategoryWeb},
		{skill: "PostgreSQL", category: CategoryBackend},
		{skill: "Kubernetes", category: CategoryDevOps},
		{skill: "Ubuntu", category: CategoryOS},
		{skill: "OAuth", category: CategorySecurity},
		{skill: "Grafana", category: CategoryTools},
		{skill: "k8s", category: CategoryDevOps},
		{skill: "Underwater Basket Weaving", category: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			assert.Equal(t, tt.category, CategoryFor(tt.skill))
		})
	}
}

func TestCategorize_HeuristicOnly(t *testing.T) {
	got := Categorize(context.Background(),
		[]string{"Docker", "python", "TensorFlow/Keras", "Pandas/NumPy", "go", "Weaving"},
		[]string{"Go"}, nil)

	assert.Equal(t, []string{"Go", "Python"}, got[CategoryLanguages])
	assert.Equal(t, []string{"NumPy", "Pandas", "TensorFlow"}, got[CategoryMLAI])
	assert.Equal(t, []string{"Docker"}, got[CategoryDevOps])
	assert.Equal(t, []string{"Weaving"}, got[CategoryOther])
}

func TestCategorize_JobRelevantFirst(t *testing.T) {
	got := Categorize(context.Background(), []string{"Java", "Python", "Go"}, []string{"python"}, nil)
	assert.Equal(t, []string{"Python", "Go", "Java"}, got[CategoryLanguages])
}

func TestCategorize_Empty(t *testing.T) {
	assert.Empty(t, Categorize(context.Background(), nil, nil, nil))
}

type stubClassifier struct {
	result map[string]string
	err    error
}

func (s stubClassifier) Classify(context.Context, []string) (map[string]string, error) {
	return s.result, s.err
}

func TestCategorize_ClassifierOverridesAndFallsBack(t *testing.T) {
	c := stubClassifier{result: map[string]string{
		"Docker":  CategoryTools,
		"Weaving": "Crafts",
	}}
	got := Categorize(context.Background(), []string{"Docker", "Weaving"}, nil, c)
	assert.Equal(t, []string{"Docker"}, got[CategoryTools])
	assert.Equal(t, []string{"Weaving"}, got[CategoryOther])

	failing := stubClassifier{err: errors.New("boom")}
	got = Categorize(context.Background(), []string{"Docker"}, nil, failing)
	assert.Equal(t, []string{"Docker"}, got[CategoryDevOps])
}

func TestOrderedCategories(t *testing.T) {
	m := map[string][]string{
		CategoryTools:     {"Git"},
		CategoryLanguages: {"Go"},
		"Zeta":            {"x"},
		"Alpha":           {"y"},
		CategoryDevOps:    nil,
	}
	assert.Equal(t, []string{CategoryLanguages, CategoryTools, "Alpha", "Zeta"}, OrderedCategories(m))
}

type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateContent(ctx, prompt, tier)
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake" }

func (f *fakeClient) Close() error { return nil }

func TestLLMClassifier_Classify(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"skills\":[{\"skill\":\"Docker\",\"category\":\"DevOps\"},{\"skill\":\"Vim\",\"category\":\"Editors\"}]}\n```"}
	c := NewLLMClassifier(client)

	got, err := c.Classify(context.Background(), []string{"Docker", "Vim"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"docker": CategoryDevOps}, got)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], `["Docker","Vim"]`)
}

func TestLLMClassifier_Errors(t *testing.T) {
	c := NewLLMClassifier(&fakeClient{err: errors.New("unavailable")})
	_, err := c.Classify(context.Background(), []string{"Docker"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM call failed")

	c = NewLLMClassifier(&fakeClient{response: "not json"})
	_, err = c.Classify(context.Background(), []string{"Docker"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse LLM response")

	got, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMentionsTerm(t *testing.T) {
	tests := []struct {
		text, term string
		want       bool
	}{
		{"Led the migration to Go", "led", true},
		{"Scaled the cluster", "led", false},
		{"Shipped a Node.js service", "node.js", true},
		{"Wrote C++ bindings", "C++", true},
		{"Designed system for billing", "designed system", true},
		{"Designed systems", "designed system", false},
		{"Handled led, then led again", "led", true},
		{"anything", "  ", false},
		{"Golang services", "go", false},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, MentionsTerm(tt.text, tt.term))
		})
	}
}
