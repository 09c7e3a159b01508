package parsing

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// NormalizeSkills gives every name its conventional spelling and drops
// blanks and case-insensitive duplicates, keeping first-seen order.
func NormalizeSkills(names []string) []string {
	return skills.Dedupe(names)
}

// NormalizeJobSkills normalizes every bucket of j. Seniority indicators are
// phrases rather than skills; they are only trimmed and deduplicated.
func NormalizeJobSkills(j types.JobSkills) types.JobSkills {
	return types.JobSkills{
		RequiredSkills:      NormalizeSkills(j.RequiredSkills),
		PreferredSkills:     NormalizeSkills(j.PreferredSkills),
		SoftSkills:          normalizeSoft(j.SoftSkills),
		SeniorityIndicators: types.DedupeSkills(j.SeniorityIndicators),
	}
}

// normalizeSoft lowercases soft skills ("Communication" and "communication"
// are the same trait) and deduplicates them.
func normalizeSoft(names []string) []string {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(n))
	}
	return types.DedupeSkills(lowered)
}

// splitList splits a comma- or newline-separated skill list.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
