package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// ViolationType identifies which constraint a bullet broke.
type ViolationType string

// Violation types
const (
	ViolationLength          ViolationType = "length"
	ViolationUnverifiedSkill ViolationType = "unverified_skill"
	ViolationIrrelevantSkill ViolationType = "irrelevant_skill"
	ViolationRewordOnly      ViolationType = "reword_only"
	ViolationSeniorityClaim  ViolationType = "seniority_claim"
	ViolationBuzzword        ViolationType = "buzzword"
	ViolationMultipleClaims  ViolationType = "multiple_claims"
)

// Violation is one failed constraint.
type Violation struct {
	Type    ViolationType `json:"type"`
	Details string        `json:"details"`
}

// SeniorityClaims may only appear in a rewrite if the original had them.
var SeniorityClaims = []string{
	"led", "managed", "architected", "designed system", "built team",
	"established", "founded", "directed", "oversaw", "supervised",
}

// BannedBuzzwords are rejected wherever they appear.
var BannedBuzzwords = []string{
	"revolutionary", "game-changing", "cutting-edge", "state-of-the-art",
	"world-class", "industry-leading", "best-in-class", "top-tier",
	"unprecedented", "groundbreaking", "innovative solution", "disruptive",
}

var actionVerbs = []string{
	"developed", "built", "created", "designed", "implemented",
	"optimized", "improved", "reduced", "increased",
}

var conjunctions = []string{" and ", " while ", " also ", " plus ", " as well as "}

const (
	maxActionVerbs  = 2
	maxConjunctions = 1
)

// Options carries the job context of a validation.
type Options struct {
	// JobSkills, when non-nil, restricts skill mentions to ones overlapping
	// this list.
	JobSkills []string
	Intent    types.RewriteIntent
}

// Result holds every violation found; an empty result is valid.
type Result struct {
	Violations []Violation `json:"violations"`
}

// Valid reports whether no constraint failed.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Errors returns the violation messages in detection order.
func (r Result) Errors() []string {
	return Messages(r.Violations)
}

// Err returns nil for a valid result and an *Error otherwise.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &Error{Message: "bullet rejected", Violations: r.Violations}
}

// Messages flattens violations into their detail strings.
func Messages(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Details)
	}
	return out
}

// Validator checks proposed bullets against a skill registry.
type Validator struct {
	registry *skills.Registry
	terms    []string
}

// NewValidator builds a validator. Skill mentions are recognized from the
// user's verified skills, the ontology and their aliases, so an unverified
// skill the ontology knows about is still caught.
func NewValidator(registry *skills.Registry) *Validator {
	v := &Validator{registry: registry}
	seen := make(map[string]bool)
	add := func(term string, short bool) {
		key := skills.Key(term)
		if key == "" || seen[key] {
			return
		}
		// Single letters ("C", "R") mostly match initials and list markers.
		if !short && len([]rune(key)) < 2 {
			return
		}
		seen[key] = true
		v.terms = append(v.terms, key)
	}
	for _, name := range registry.Verified() {
		add(name, true)
		for _, alias := range registry.Aliases(name) {
			add(alias, true)
		}
	}
	for _, name := range registry.Canonical() {
		add(name, false)
		for _, alias := range registry.Aliases(name) {
			add(alias, false)
		}
	}
	return v
}

// SkillTokens returns the lowercase skill terms mentioned in text, sorted.
func (v *Validator) SkillTokens(text string) []string {
	var out []string
	for _, term := range v.terms {
		if skills.MentionsTerm(text, term) {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

// Validate runs every check against text and collects all failures.
func (v *Validator) Validate(text, original string, opts Options) Result {
	var res Result
	add := func(t ViolationType, format string, args ...any) {
		res.Violations = append(res.Violations, Violation{Type: t, Details: fmt.Sprintf(format, args...)})
	}

	if n := len([]rune(text)); n > types.MaxBulletLength {
		add(ViolationLength, "Bullet exceeds %d characters: %d", types.MaxBulletLength, n)
	}

	tokens := v.SkillTokens(text)
	originalTokens := make(map[string]bool)
	for _, t := range v.SkillTokens(original) {
		originalTokens[t] = true
	}

	for _, token := range tokens {
		if !v.skillVerified(token) {
			add(ViolationUnverifiedSkill, "Skill not in verified skills: %s", token)
			continue
		}
		if opts.JobSkills != nil && !skills.OverlapsAny(token, opts.JobSkills) && !v.aliasOverlaps(token, opts.JobSkills) {
			add(ViolationIrrelevantSkill, "Skill not relevant to job: %s", token)
		}
	}

	if opts.Intent == types.IntentRewordOnly {
		var added []string
		for _, token := range tokens {
			if !originalTokens[token] {
				added = append(added, token)
			}
		}
		if len(added) > 0 {
			add(ViolationRewordOnly, "Reword-only rewrite added skills: %s", strings.Join(added, ", "))
		}
	}

	for _, claim := range SeniorityClaims {
		if skills.MentionsTerm(text, claim) && !skills.MentionsTerm(original, claim) {
			add(ViolationSeniorityClaim, "New seniority claim introduced: '%s'", claim)
		}
	}

	lower := strings.ToLower(text)
	for _, buzzword := range BannedBuzzwords {
		if strings.Contains(lower, buzzword) {
			add(ViolationBuzzword, "Banned buzzword detected: '%s'", buzzword)
		}
	}

	if HasMultipleClaims(text) {
		add(ViolationMultipleClaims, "Bullet contains multiple distinct claims (should be one clear claim)")
	}

	return res
}

// ValidateCandidate validates a proposed candidate against the original text.
func (v *Validator) ValidateCandidate(c *types.BulletCandidate, original string, opts Options) Result {
	return v.Validate(c.Text, original, opts)
}

// skillVerified falls back to ontology membership when the user has no
// verified skills, leaving the job-overlap check as the only gate.
func (v *Validator) skillVerified(token string) bool {
	if v.registry.HasVerified() {
		return v.registry.IsVerified(token)
	}
	return v.registry.Known(token)
}

func (v *Validator) aliasOverlaps(token string, jobSkills []string) bool {
	canonical, ok := v.registry.Resolve(token)
	if !ok {
		return false
	}
	for _, js := range jobSkills {
		if c, ok := v.registry.Resolve(js); ok && c == canonical {
			return true
		}
	}
	return false
}

// HasMultipleClaims reports whether text reads as several accomplishments:
// more than two distinct action verbs or more than one joining conjunction.
func HasMultipleClaims(text string) bool {
	lower := strings.ToLower(text)
	verbs := 0
	for _, verb := range actionVerbs {
		if strings.Contains(lower, verb) {
			verbs++
		}
	}
	conj := 0
	for _, c := range conjunctions {
		if strings.Contains(lower, c) {
			conj++
		}
	}
	return verbs > maxActionVerbs || conj > maxConjunctions
}
