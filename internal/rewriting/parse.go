package rewriting

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/ranking"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// MaxCandidates is the number of proposed candidates consumed per bullet.
const MaxCandidates = 4

const truncationSuffix = "..."

func parseReasoning(raw string) (types.Reasoning, error) {
	doc := llm.CleanJSONBlock(raw)
	if doc == "" {
		return types.Reasoning{}, fmt.Errorf("empty reasoning response")
	}
	if err := schemas.Validate(schemas.Reasoning, []byte(doc)); err != nil {
		return types.Reasoning{}, err
	}

	var r types.Reasoning
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return types.Reasoning{}, fmt.Errorf("failed to parse reasoning JSON: %w", err)
	}
	r.ConfidenceScore = min(max(r.ConfidenceScore, 0), 1)
	if r.AlternativesConsidered == nil {
		r.AlternativesConsidered = []string{}
	}
	return r, nil
}

// parseCandidates decodes at most MaxCandidates candidates, truncating
// over-long text. Entries past the limit are never read; an entry that fails
// the candidate schema or has blank text is dropped on its own.
func parseCandidates(raw string, intent types.RewriteIntent) ([]types.BulletCandidate, error) {
	doc := llm.CleanJSONBlock(raw)
	if doc == "" {
		return nil, fmt.Errorf("empty candidates response")
	}
	if err := schemas.Validate(schemas.Candidates, []byte(doc)); err != nil {
		return nil, err
	}

	var payload struct {
		Candidates []json.RawMessage `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse candidates JSON: %w", err)
	}

	out := make([]types.BulletCandidate, 0, MaxCandidates)
	var lastErr error
	for _, entry := range firstN(payload.Candidates, MaxCandidates) {
		if err := schemas.Validate(schemas.Candidate, entry); err != nil {
			lastErr = err
			continue
		}
		var c types.BulletCandidate
		if err := json.Unmarshal(entry, &c); err != nil {
			lastErr = fmt.Errorf("failed to parse candidate: %w", err)
			continue
		}
		c.Text = truncateBullet(strings.TrimSpace(c.Text))
		if c.Text == "" {
			continue
		}
		if c.RewriteIntent == "" {
			c.RewriteIntent = intent
		}
		// Recomputed after validation.
		c.RiskLevel = ""
		c.CompositeScore = 0
		out = append(out, c)
	}
	if len(out) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("no usable candidates in response")
	}
	return out, nil
}

// truncateBullet cuts text longer than the bullet limit to fit, ending in an
// ellipsis.
func truncateBullet(text string) string {
	runes := []rune(text)
	if len(runes) <= types.MaxBulletLength {
		return text
	}
	keep := types.MaxBulletLength - len(truncationSuffix)
	return string(runes[:keep]) + truncationSuffix
}

// fallbackCandidate stands in for unusable proposer output: the original
// text, unchanged.
func fallbackCandidate(original string, intent types.RewriteIntent) types.BulletCandidate {
	c := types.BulletCandidate{
		Text:             original,
		Score:            types.CandidateScore{SemanticSimilarity: 1},
		DiffFromOriginal: types.Diff{Added: []string{}, Removed: []string{}},
		Justification: types.CandidateJustification{
			JobRequirementsAddressed: []string{},
			SkillsMapped:             []string{},
			WhyThisVersion:           "Original bullet kept; no usable rewrite was proposed",
		},
		RiskLevel:     types.RiskLow,
		RewriteIntent: intent,
	}
	c.CompositeScore = ranking.CompositeScore(c.Score)
	return c
}
