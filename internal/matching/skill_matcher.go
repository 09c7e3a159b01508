// Package matching compares resumes and jobs: skill fit with gap analysis,
// job-to-job similarity, and reuse of previously tailored resumes.
package matching

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Bucket weights shared by fit scoring and job similarity.
const (
	RequiredWeight  = 2.0
	PreferredWeight = 1.0
	SoftWeight      = 0.5
	totalWeight     = RequiredWeight + PreferredWeight + SoftWeight
)

const maxRecommendationItems = 3

// SkillMatcher scores a resume against a job's skill profile.
type SkillMatcher struct {
	registry *skills.Registry
}

// NewSkillMatcher creates a matcher that resolves aliases through registry.
// A nil registry disables alias resolution.
func NewSkillMatcher(registry *skills.Registry) *SkillMatcher {
	return &SkillMatcher{registry: registry}
}

// MatchJob computes the weighted fit score and gap analysis of resume
// against job.
func (m *SkillMatcher) MatchJob(resume *types.Resume, job types.JobSkills) (*types.JobMatch, error) {
	resumeSkills := ResumeSkills(resume)

	var (
		gaps     types.SkillGaps
		missing  []string
		matching []string
	)
	reqRatio, reqMissing, reqMatched := m.bucket(job.RequiredSkills, resumeSkills)
	prefRatio, prefMissing, prefMatched := m.bucket(job.PreferredSkills, resumeSkills)
	softRatio, softMissing, softMatched := m.bucket(job.SoftSkills, resumeSkills)

	gaps.RequiredMissing = reqMissing
	gaps.PreferredMissing = prefMissing
	gaps.SoftMissing = softMissing

	for _, skill := range reqMissing {
		if !m.registry.Known(skill) {
			missing = append(missing, skill)
		}
	}
	matching = append(matching, reqMatched...)
	matching = append(matching, prefMatched...)
	matching = append(matching, softMatched...)

	fit := clamp((reqRatio*RequiredWeight + prefRatio*PreferredWeight + softRatio*SoftWeight) / totalWeight)

	match, err := types.NewJobMatch(fit, gaps, nonNil(missing), nonNil(matching), recommendations(gaps, missing))
	if err != nil {
		return nil, fmt.Errorf("failed to build job match: %w", err)
	}
	return match, nil
}

// bucket returns the matched ratio of skills along with the missing and
// matched entries in input order. An empty bucket has ratio 0.
func (m *SkillMatcher) bucket(jobSkills []string, resumeSkills map[string]bool) (float64, []string, []string) {
	missing := []string{}
	var matched []string
	for _, skill := range jobSkills {
		if m.SkillMatches(skill, resumeSkills) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	total := len(jobSkills)
	if total == 0 {
		total = 1
	}
	return float64(len(matched)) / float64(total), missing, matched
}

// SkillMatches reports whether jobSkill is covered by resumeSkills, a set of
// lowercase names. It accepts an exact match, the job skill's canonical name
// from the registry, or a substring in either direction. The substring rule
// lets "React" match "React Native" and also lets "Java" match "JavaScript".
func (m *SkillMatcher) SkillMatches(jobSkill string, resumeSkills map[string]bool) bool {
	key := skills.Key(jobSkill)
	if key == "" {
		return false
	}
	if resumeSkills[key] {
		return true
	}
	if canonical, ok := m.registry.Resolve(jobSkill); ok && resumeSkills[canonical] {
		return true
	}
	for rs := range resumeSkills {
		if strings.Contains(rs, key) || strings.Contains(key, rs) {
			return true
		}
	}
	return false
}

// ResumeSkills collects the lowercase skill set of a resume from its skills
// section, every bullet's skills and each project's tech stack.
func ResumeSkills(resume *types.Resume) map[string]bool {
	out := make(map[string]bool)
	if resume == nil {
		return out
	}
	add := func(names []string) {
		for _, n := range names {
			if k := skills.Key(n); k != "" {
				out[k] = true
			}
		}
	}
	for _, list := range resume.Skills {
		add(list)
	}
	for _, exp := range resume.Experience {
		for _, b := range exp.Bullets {
			add(b.Skills)
		}
	}
	for _, p := range resume.Projects {
		for _, b := range p.Bullets {
			add(b.Skills)
		}
		add(p.TechStack)
	}
	return out
}

func recommendations(gaps types.SkillGaps, missing []string) []string {
	var recs []string
	if n := len(gaps.RequiredMissing); n > 0 {
		recs = append(recs, fmt.Sprintf("Add %d required skills to resume: %s",
			n, strings.Join(firstN(gaps.RequiredMissing, maxRecommendationItems), ", ")))
	}
	if n := len(gaps.PreferredMissing); n > 0 {
		recs = append(recs, fmt.Sprintf("Consider adding %d preferred skills: %s",
			n, strings.Join(firstN(gaps.PreferredMissing, maxRecommendationItems), ", ")))
	}
	if len(missing) > 0 {
		recs = append(recs, "Learn or gain experience with: "+
			strings.Join(firstN(missing, maxRecommendationItems), ", "))
	}
	if len(recs) == 0 {
		recs = append(recs, "Resume matches job requirements well!")
	}
	return recs
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
