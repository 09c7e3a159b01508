// Package relevance reorders resume sections by how relevant each entry is
// to a target job. It never calls out and never mutates its input.
package relevance

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Experience weights
const (
	expBulletSkillWeight = 0.6
	expHeaderWeight      = 0.2
	expMatchingWeight    = 0.2
)

// Project weights
const (
	projTechWeight   = 0.5
	projBulletWeight = 0.3
	projNameWeight   = 0.2
)

// Skill scores
const (
	skillRelevantScore = 1.0
	skillMatchingScore = 0.8
	skillPartialScore  = 0.5
)

// Optimizer scores resume entries against a job.
type Optimizer struct {
	jobSkills []string
	matching  map[string]bool
}

// NewOptimizer builds an optimizer for the job's required and preferred
// skills. match may be nil.
func NewOptimizer(job types.JobSkills, match *types.JobMatch) *Optimizer {
	o := &Optimizer{
		jobSkills: skills.Keys(job.Targeted()),
		matching:  map[string]bool{},
	}
	if match != nil {
		o.matching = skills.KeySet(match.MatchingSkills)
	}
	return o
}

func (o *Optimizer) isJobRelevant(skill string) bool {
	return skills.OverlapsAny(skill, o.jobSkills)
}

func (o *Optimizer) mentionsJobSkill(text string) bool {
	lower := strings.ToLower(text)
	for _, js := range o.jobSkills {
		if strings.Contains(lower, js) {
			return true
		}
	}
	return false
}

// ScoreExperience weighs the share of job-relevant bullet skills, whether
// the organization or role names a job skill, and overlap with the skills
// the resume already matched.
func (o *Optimizer) ScoreExperience(exp types.ExperienceItem) float64 {
	score := 0.0

	relevant, total := 0, 0
	expSkills := make(map[string]bool)
	for _, b := range exp.Bullets {
		for _, s := range b.Skills {
			total++
			if o.isJobRelevant(s) {
				relevant++
			}
			if k := skills.Key(s); k != "" {
				expSkills[k] = true
			}
		}
	}
	if total > 0 {
		score += float64(relevant) / float64(total) * expBulletSkillWeight
	}

	if o.mentionsJobSkill(exp.Organization) || o.mentionsJobSkill(exp.Role) {
		score += expHeaderWeight
	}

	if len(o.matching) > 0 {
		overlap := 0
		for k := range o.matching {
			if expSkills[k] {
				overlap++
			}
		}
		score += float64(overlap) / float64(len(o.matching)) * expMatchingWeight
	}

	return min(score, 1.0)
}

// ScoreProject weighs tech stack relevance, bullet skill relevance and
// whether the project name names a job skill.
func (o *Optimizer) ScoreProject(proj types.ProjectItem) float64 {
	score := 0.0

	if len(proj.TechStack) > 0 {
		relevant := 0
		for _, tech := range proj.TechStack {
			if o.isJobRelevant(tech) {
				relevant++
			}
		}
		score += float64(relevant) / float64(len(proj.TechStack)) * projTechWeight
	}

	relevant, total := 0, 0
	for _, b := range proj.Bullets {
		for _, s := range b.Skills {
			total++
			if o.isJobRelevant(s) {
				relevant++
			}
		}
	}
	if total > 0 {
		score += float64(relevant) / float64(total) * projBulletWeight
	}

	if o.mentionsJobSkill(proj.Name) {
		score += projNameWeight
	}

	return min(score, 1.0)
}

// ScoreSkill rates a single skill: directly relevant, already matched,
// partially overlapping, or unrelated.
func (o *Optimizer) ScoreSkill(skill string) float64 {
	if o.isJobRelevant(skill) {
		return skillRelevantScore
	}
	key := skills.Key(skill)
	if o.matching[key] {
		return skillMatchingScore
	}
	// isJobRelevant already accepts substring overlap, so this tier only
	// applies if that check is narrowed to exact matches.
	if key != "" && skills.OverlapsAny(key, o.jobSkills) {
		return skillPartialScore
	}
	return 0
}

// OptimizeExperience returns a copy of resume with experience sorted by score.
func (o *Optimizer) OptimizeExperience(resume *types.Resume) *types.Resume {
	out := resume.Clone()
	if out == nil {
		return nil
	}
	sortByScore(out.Experience, o.ScoreExperience)
	return out
}

// OptimizeProjects returns a copy of resume with projects sorted by score.
func (o *Optimizer) OptimizeProjects(resume *types.Resume) *types.Resume {
	out := resume.Clone()
	if out == nil {
		return nil
	}
	sortByScore(out.Projects, o.ScoreProject)
	return out
}

// OptimizeSkills returns a copy of resume with each skill category sorted
// by score. Categories are handled independently.
func (o *Optimizer) OptimizeSkills(resume *types.Resume) *types.Resume {
	out := resume.Clone()
	if out == nil {
		return nil
	}
	for category, list := range out.Skills {
		sortByScore(list, o.ScoreSkill)
		out.Skills[category] = list
	}
	return out
}

// OptimizeAll reorders experience, projects and skills.
func (o *Optimizer) OptimizeAll(resume *types.Resume) *types.Resume {
	return o.OptimizeSkills(o.OptimizeProjects(o.OptimizeExperience(resume)))
}

// sortByScore stably sorts items by descending score, computing each
// score once.
func sortByScore[T any](items []T, score func(T) float64) {
	scores := make([]float64, len(items))
	idx := make([]int, len(items))
	for i, it := range items {
		scores[i] = score(it)
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	sorted := make([]T, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}
