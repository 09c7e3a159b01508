// Package ranking scores rewrite candidates, ranks them and classifies how
// risky each rewrite is relative to the original bullet.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Weights for composite score components
const (
	coverageWeight   = 0.4
	similarityWeight = 0.3
	keywordWeight    = 0.2
	violationWeight  = 0.1

	// Keyword gain and violations saturate at these raw counts.
	maxKeywordGain = 10.0
	maxViolations  = 5.0
)

// skillHints mark an added diff token as a skill for risk purposes.
var skillHints = []string{"skill", "technology", "tool", "framework", "language"}

// ScopeVerbs signal scope expansion when a rewrite introduces them.
var ScopeVerbs = []string{"led", "managed", "architected", "designed", "built", "created", "established", "founded"}

// CompositeScore combines the self-reported candidate scores into [0,1].
// Out-of-range components are tolerated; only the result is clamped. NaN
// components count as 0.
func CompositeScore(s types.CandidateScore) float64 {
	gain := 0.0
	if s.ATSKeywordGain > 0 {
		gain = min(s.ATSKeywordGain/maxKeywordGain, 1.0)
	}
	violations := 0.0
	if s.ConstraintViolations > 0 {
		violations = min(s.ConstraintViolations/maxViolations, 1.0)
	}

	composite := coverageWeight*orZero(s.JobSkillCoverage) +
		similarityWeight*orZero(s.SemanticSimilarity) +
		keywordWeight*gain -
		violationWeight*violations

	return max(0.0, min(1.0, composite))
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// RankCandidates sets each candidate's composite score and sorts them best
// first. Equal scores keep their proposal order.
func RankCandidates(candidates []types.BulletCandidate) []types.BulletCandidate {
	for i := range candidates {
		candidates[i].CompositeScore = CompositeScore(candidates[i].Score)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CompositeScore > candidates[j].CompositeScore
	})
	return candidates
}

// RiskLevel classifies a candidate by the skills it adds, the scope verbs it
// introduces and whether it drops anything from the original.
func RiskLevel(c types.BulletCandidate, original string) types.RiskLevel {
	skillsAdded := 0
	for _, token := range c.DiffFromOriginal.Added {
		lower := strings.ToLower(token)
		for _, hint := range skillHints {
			if strings.Contains(lower, hint) {
				skillsAdded++
				break
			}
		}
	}

	scopeExpansion := 0
	for _, verb := range ScopeVerbs {
		if skills.MentionsTerm(c.Text, verb) && !skills.MentionsTerm(original, verb) {
			scopeExpansion++
		}
	}

	switch {
	case skillsAdded == 0 && scopeExpansion == 0 && len(c.DiffFromOriginal.Removed) == 0:
		return types.RiskLow
	case skillsAdded <= 2 && scopeExpansion == 0:
		return types.RiskMedium
	default:
		return types.RiskHigh
	}
}
