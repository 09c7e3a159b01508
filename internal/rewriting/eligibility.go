package rewriting

import (
	"slices"
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	poolRequired  = 5
	poolPreferred = 3
	poolMissing   = 3
)

// relatedTech maps a stack entry to technologies commonly used with it.
var relatedTech = map[string][]string{
	"python":     {"numpy", "pandas", "scikit-learn", "tensorflow", "pytorch", "matplotlib"},
	"javascript": {"typescript", "node.js", "react", "vue", "angular"},
	"java":       {"spring", "maven", "gradle"},
	"golang":     {"go"},
	"react":      {"react native", "next.js"},
	"node.js":    {"express", "trpc", "graphql"},
}

// relatedTechKeys fixes iteration order over relatedTech.
var relatedTechKeys = []string{"python", "javascript", "java", "golang", "react", "node.js"}

var (
	buildVerbs = []string{"develop", "build", "implement", "create", "design", "code"}
	techWords  = []string{"develop", "build", "implement", "create", "design", "code", "program", "system", "software", "application"}
)

// missingPool returns the gap skills a rewrite may try to surface: the top
// required, preferred and unknown gaps, deduplicated.
func missingPool(match *types.JobMatch) []string {
	if match == nil {
		return nil
	}
	var pool []string
	pool = append(pool, firstN(match.SkillGaps.RequiredMissing, poolRequired)...)
	pool = append(pool, firstN(match.SkillGaps.PreferredMissing, poolPreferred)...)
	pool = append(pool, firstN(match.MissingSkills, poolMissing)...)
	return types.DedupeSkills(pool)
}

// relevantToStack keeps the skills that match a project's tech stack
// directly or through relatedTech.
func relevantToStack(pool, stack []string) []string {
	lowerStack := make([]string, 0, len(stack))
	for _, tech := range stack {
		if t := skills.Key(tech); t != "" {
			lowerStack = append(lowerStack, t)
		}
	}
	var out []string
	for _, skill := range pool {
		if matchesStack(skills.Key(skill), lowerStack) {
			out = append(out, skill)
		}
	}
	return out
}

func matchesStack(skill string, stack []string) bool {
	if skill == "" {
		return false
	}
	for _, tech := range stack {
		if strings.Contains(tech, skill) || strings.Contains(skill, tech) {
			return true
		}
		for _, key := range relatedTechKeys {
			related := relatedTech[key]
			if strings.Contains(tech, key) && slices.Contains(related, skill) {
				return true
			}
			if skill == key {
				for _, r := range related {
					if strings.Contains(tech, r) {
						return true
					}
				}
			}
		}
	}
	return false
}

// eligible decides whether a bullet is worth rewriting. stack is nil for
// experience bullets. It returns the gap skills the rewrite should target.
func eligible(bullet types.Bullet, pool []string, stack []string, project bool) ([]string, bool) {
	if len(pool) == 0 {
		return nil, false
	}
	if project {
		pool = relevantToStack(pool, stack)
		if len(pool) == 0 {
			return nil, false
		}
	}
	if len(bullet.Skills) < 2 {
		return pool, true
	}

	text := strings.ToLower(bullet.Text)
	for _, skill := range pool {
		if strings.Contains(text, strings.ToLower(skill)) {
			return pool, true
		}
	}
	if containsAny(text, buildVerbs) {
		return pool, true
	}
	if !project && containsAny(text, techWords) {
		return pool, true
	}
	return nil, false
}

// AllowedSkills returns the verified skills that overlap the job's required
// or preferred skills. Without verified skills every targeted job skill is
// allowed and the validator falls back to the ontology.
func AllowedSkills(registry *skills.Registry, job types.JobSkills) []string {
	targeted := job.Targeted()
	if !registry.HasVerified() {
		return types.DedupeSkills(targeted)
	}
	var out []string
	for _, name := range registry.Verified() {
		if skills.OverlapsAny(name, targeted) {
			out = append(out, name)
		}
	}
	return types.DedupeSkills(out)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
