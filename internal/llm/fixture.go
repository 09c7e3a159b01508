package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
	"gopkg.in/yaml.v3"
)

// FixtureWildcard matches any bullet key in a fixture file.
const FixtureWildcard = "*"

// FixtureReasoning is the YAML form of a reasoning proposal.
type FixtureReasoning struct {
	ProblemIdentification  string   `yaml:"problem_identification" json:"problem_identification"`
	Analysis               string   `yaml:"analysis" json:"analysis"`
	SolutionApproach       string   `yaml:"solution_approach" json:"solution_approach"`
	Evaluation             string   `yaml:"evaluation" json:"evaluation"`
	AlternativesConsidered []string `yaml:"alternatives_considered" json:"alternatives_considered"`
	ConfidenceScore        float64  `yaml:"confidence_score" json:"confidence_score"`
}

// FixtureCandidate is the YAML form of a single rewrite candidate.
type FixtureCandidate struct {
	Text                  string   `yaml:"text"`
	Coverage              float64  `yaml:"coverage"`
	KeywordGain           float64  `yaml:"keyword_gain"`
	Similarity            float64  `yaml:"similarity"`
	Violations            float64  `yaml:"violations"`
	Added                 []string `yaml:"added"`
	Removed               []string `yaml:"removed"`
	RequirementsAddressed []string `yaml:"requirements_addressed"`
	SkillsMapped          []string `yaml:"skills_mapped"`
	Why                   string   `yaml:"why"`
}

// FixtureFile holds canned proposals keyed by bullet key or FixtureWildcard.
type FixtureFile struct {
	Reasoning  map[string]FixtureReasoning   `yaml:"reasoning"`
	Candidates map[string][]FixtureCandidate `yaml:"candidates"`
}

// FixtureProposer answers proposal requests from a FixtureFile without
// calling a model. Bullets absent from the file get a deterministic
// proposal derived from the request.
type FixtureProposer struct {
	file FixtureFile
}

// NewFixtureProposer creates a proposer over file.
func NewFixtureProposer(file FixtureFile) *FixtureProposer {
	return &FixtureProposer{file: file}
}

// LoadFixtureProposer reads a YAML fixture file. An empty path yields a
// proposer that only synthesizes.
func LoadFixtureProposer(path string) (*FixtureProposer, error) {
	if path == "" {
		return NewFixtureProposer(FixtureFile{}), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file %s: %w", path, err)
	}
	var file FixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixture YAML: %w", err)
	}
	return NewFixtureProposer(file), nil
}

// ProposeReasoning returns reasoning JSON for the bullet.
func (f *FixtureProposer) ProposeReasoning(ctx context.Context, req types.ReasoningRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, ok := f.file.Reasoning[req.BulletKey]
	if !ok {
		r, ok = f.file.Reasoning[FixtureWildcard]
	}
	if !ok {
		r = synthesizeReasoning(req)
	}
	return marshalString(r)
}

// ProposeCandidates returns candidates JSON for the bullet.
func (f *FixtureProposer) ProposeCandidates(ctx context.Context, req types.CandidateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cands, ok := f.file.Candidates[req.BulletKey]
	if !ok {
		cands, ok = f.file.Candidates[FixtureWildcard]
	}
	if !ok {
		cands = synthesizeCandidates(req)
	}

	out := make([]types.BulletCandidate, 0, len(cands))
	for _, c := range cands {
		out = append(out, types.BulletCandidate{
			Text: c.Text,
			Score: types.CandidateScore{
				JobSkillCoverage:     c.Coverage,
				ATSKeywordGain:       c.KeywordGain,
				SemanticSimilarity:   c.Similarity,
				ConstraintViolations: c.Violations,
			},
			DiffFromOriginal: types.Diff{Added: nonNil(c.Added), Removed: nonNil(c.Removed)},
			Justification: types.CandidateJustification{
				JobRequirementsAddressed: nonNil(c.RequirementsAddressed),
				SkillsMapped:             nonNil(c.SkillsMapped),
				WhyThisVersion:           c.Why,
			},
			RewriteIntent: req.Intent,
		})
	}
	return marshalString(map[string]any{"candidates": out})
}

func synthesizeReasoning(req types.ReasoningRequest) FixtureReasoning {
	problem := "Bullet already reflects the targeted skills."
	if len(req.RequiredMissing) > 0 {
		problem = "Bullet does not surface required skills: " + strings.Join(firstN(req.RequiredMissing, 3), ", ")
	}
	approach := "Keep the original wording."
	if len(req.AllowedSkills) > 0 {
		approach = "Name verified skills the job asks for: " + strings.Join(firstN(req.AllowedSkills, 3), ", ")
	}
	return FixtureReasoning{
		ProblemIdentification:  problem,
		Analysis:               "Compared bullet skills against job requirements.",
		SolutionApproach:       approach,
		Evaluation:             "Rewrites stay within the verified skill set.",
		AlternativesConsidered: []string{"leave unchanged"},
		ConfidenceScore:        0.5,
	}
}

// synthesizeCandidates keeps the original text and, when allowed, adds one
// variant naming the first verified job skill the bullet lacks.
func synthesizeCandidates(req types.CandidateRequest) []FixtureCandidate {
	cands := []FixtureCandidate{{
		Text:       req.BulletText,
		Similarity: 1,
		Why:        "Original wording",
	}}
	if req.Intent == types.IntentRewordOnly || req.Intent == types.IntentConservative {
		return cands
	}

	text := strings.TrimRight(strings.TrimSpace(req.BulletText), ".")
	lower := strings.ToLower(text)
	for _, skill := range req.AllowedSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			continue
		}
		variant := text + " using " + skill
		if len([]rune(variant)) > types.MaxBulletLength {
			continue
		}
		cands = append(cands, FixtureCandidate{
			Text:                  variant,
			Coverage:              0.5,
			KeywordGain:           1,
			Similarity:            0.9,
			Added:                 []string{skill},
			RequirementsAddressed: []string{skill},
			SkillsMapped:          []string{skill},
			Why:                   "Surfaces a verified skill the job requires",
		})
		break
	}
	return cands
}

func marshalString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal fixture proposal: %w", err)
	}
	return string(data), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
