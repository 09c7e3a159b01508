package ranking

import (
	"math"
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCompositeScore(t *testing.T) {
	tests := []struct {
		name  string
		score types.CandidateScore
		want  float64
	}{
		{"zero", types.CandidateScore{}, 0},
		{
			name:  "weighted sum",
			score: types.CandidateScore{JobSkillCoverage: 0.5, SemanticSimilarity: 0.8, ATSKeywordGain: 3, ConstraintViolations: 1},
			want:  0.4*0.5 + 0.3*0.8 + 0.2*0.3 - 0.1*0.2,
		},
		{
			name:  "keyword gain saturates",
			score: types.CandidateScore{ATSKeywordGain: 100},
			want:  0.2,
		},
		{
			name:  "negative gain ignored",
			score: types.CandidateScore{JobSkillCoverage: 1, ATSKeywordGain: -4},
			want:  0.4,
		},
		{
			name:  "clamped high",
			score: types.CandidateScore{JobSkillCoverage: 5, SemanticSimilarity: 5, ATSKeywordGain: 50},
			want:  1,
		},
		{
			name:  "clamped low",
			score: types.CandidateScore{ConstraintViolations: 50},
			want:  0,
		},
		{
			name:  "NaN coverage counts as zero",
			score: types.CandidateScore{JobSkillCoverage: math.NaN(), SemanticSimilarity: 1},
			want:  0.3,
		},
		{
			name:  "NaN everywhere",
			score: types.CandidateScore{JobSkillCoverage: math.NaN(), SemanticSimilarity: math.NaN(), ATSKeywordGain: math.NaN(), ConstraintViolations: math.NaN()},
			want:  0,
		},
		{
			name:  "fallback candidate",
			score: types.CandidateScore{SemanticSimilarity: 1},
			want:  0.3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompositeScore(tt.score)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestRankCandidates_StableDescending(t *testing.T) {
	cands := []types.BulletCandidate{
		{Text: "a", Score: types.CandidateScore{SemanticSimilarity: 1}},
		{Text: "b", Score: types.CandidateScore{JobSkillCoverage: 1}},
		{Text: "c", Score: types.CandidateScore{SemanticSimilarity: 1}},
		{Text: "d", Score: types.CandidateScore{}},
	}

	ranked := RankCandidates(cands)

	var order []string
	for _, c := range ranked {
		order = append(order, c.Text)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, order)
	assert.InDelta(t, 0.4, ranked[0].CompositeScore, 1e-9)
	assert.InDelta(t, 0.3, ranked[1].CompositeScore, 1e-9)
	assert.Empty(t, RankCandidates(nil))
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		original string
		diff     types.Diff
		want     types.RiskLevel
	}{
		{"unchanged", "Built ETL jobs", "Built ETL jobs", types.Diff{}, types.RiskLow},
		{"plain added token", "Built ETL jobs in Go", "Built ETL jobs", types.Diff{Added: []string{"Go"}}, types.RiskLow},
		{"removed token", "Built jobs", "Built ETL jobs", types.Diff{Removed: []string{"ETL"}}, types.RiskMedium},
		{
			name:     "two skill-ish additions",
			text:     "Built ETL jobs",
			original: "Built ETL jobs",
			diff:     types.Diff{Added: []string{"Go language", "Airflow tool"}},
			want:     types.RiskMedium,
		},
		{
			name:     "three skill-ish additions",
			text:     "Built ETL jobs",
			original: "Built ETL jobs",
			diff:     types.Diff{Added: []string{"Go language", "Airflow tool", "dbt framework"}},
			want:     types.RiskHigh,
		},
		{"new scope verb", "Led ETL jobs", "Ran ETL jobs", types.Diff{}, types.RiskHigh},
		{"verb inside word", "Scaled ETL jobs", "Ran ETL jobs", types.Diff{}, types.RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.BulletCandidate{Text: tt.text, DiffFromOriginal: tt.diff}
			assert.Equal(t, tt.want, RiskLevel(c, tt.original))
		})
	}
}
