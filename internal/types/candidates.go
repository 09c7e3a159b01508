// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// RiskLevel classifies how far a rewrite strays from the original bullet.
type RiskLevel string

// Risk levels
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RewriteIntent selects the generation guidance for a rewrite.
type RewriteIntent string

// Rewrite intents
const (
	IntentEmphasizeSkills RewriteIntent = "emphasize_skills"
	IntentMoreTechnical   RewriteIntent = "more_technical"
	IntentMoreConcise     RewriteIntent = "more_concise"
	IntentConservative    RewriteIntent = "conservative"
	IntentRewordOnly      RewriteIntent = "reword_only"
)

// RewriteIntents lists every supported intent.
var RewriteIntents = []RewriteIntent{
	IntentEmphasizeSkills,
	IntentMoreTechnical,
	IntentMoreConcise,
	IntentConservative,
	IntentRewordOnly,
}

// ParseRewriteIntent converts a string into a RewriteIntent. The empty
// string maps to emphasize_skills.
func ParseRewriteIntent(s string) (RewriteIntent, error) {
	if s == "" {
		return IntentEmphasizeSkills, nil
	}
	for _, intent := range RewriteIntents {
		if string(intent) == s {
			return intent, nil
		}
	}
	return "", fmt.Errorf("unknown rewrite intent %q", s)
}

// CandidateScore holds the four self-reported quality components.
type CandidateScore struct {
	JobSkillCoverage     float64 `json:"job_skill_coverage"`
	ATSKeywordGain       float64 `json:"ats_keyword_gain"`
	SemanticSimilarity   float64 `json:"semantic_similarity"`
	ConstraintViolations float64 `json:"constraint_violations"`
}

// Diff lists skill tokens added and removed relative to the original bullet.
type Diff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// CandidateJustification explains what a candidate is trying to do.
type CandidateJustification struct {
	JobRequirementsAddressed []string `json:"job_requirements_addressed"`
	SkillsMapped             []string `json:"skills_mapped"`
	WhyThisVersion           string   `json:"why_this_version"`
}

// BulletCandidate is one proposed rewrite of a bullet.
type BulletCandidate struct {
	Text             string                 `json:"text"`
	Score            CandidateScore         `json:"score"`
	DiffFromOriginal Diff                   `json:"diff_from_original"`
	Justification    CandidateJustification `json:"justification"`
	RiskLevel        RiskLevel              `json:"risk_level"`
	RewriteIntent    RewriteIntent          `json:"rewrite_intent"`
	CompositeScore   float64                `json:"composite_score"`
}

// BulletVariations is the reasoning and ranked candidates for one bullet.
type BulletVariations struct {
	BulletKey  string            `json:"bullet_key"`
	Original   string            `json:"original"`
	Reasoning  Reasoning         `json:"reasoning"`
	Candidates []BulletCandidate `json:"candidates"`
	Fallback   bool              `json:"fallback,omitempty"`
}

// RewriteResult maps bullet keys to their variations.
type RewriteResult map[string]BulletVariations
