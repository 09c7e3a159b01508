package relevance

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Project selection defaults
const (
	DefaultMaxProjects     = 4
	DefaultMinProjectScore = 0.3
)

// Selection weights. Only the signals a job and project can both supply
// count towards the total.
const (
	selStackRequiredWeight    = 2.0
	selStackPreferredWeight   = 1.0
	selBulletsRequiredWeight  = 1.5
	selBulletsPreferredWeight = 1.0
	selNameWeight             = 0.5
)

// SelectOptions bounds a project selection. A MaxProjects of zero or less
// uses DefaultMaxProjects.
type SelectOptions struct {
	MaxProjects int     `json:"max_projects"`
	MinScore    float64 `json:"min_score"`
}

// DefaultSelectOptions keeps up to four projects scoring at least 0.3.
func DefaultSelectOptions() SelectOptions {
	return SelectOptions{MaxProjects: DefaultMaxProjects, MinScore: DefaultMinProjectScore}
}

// ScoredProject is a library project with its relevance to a job.
type ScoredProject struct {
	Project types.ProjectItem `json:"project"`
	Score   float64           `json:"score"`
}

// SelectProjects picks the projects from library most relevant to job, best
// first, dropping any that score below the minimum. Equal scores keep their
// library order.
func SelectProjects(library []types.ProjectItem, job types.JobSkills, opts SelectOptions) []ScoredProject {
	if opts.MaxProjects <= 0 {
		opts.MaxProjects = DefaultMaxProjects
	}

	var scored []ScoredProject
	for _, p := range library {
		if score := ScoreLibraryProject(p, job); score >= opts.MinScore {
			scored = append(scored, ScoredProject{Project: p, Score: score})
		}
	}
	sortByScore(scored, func(sp ScoredProject) float64 { return sp.Score })
	if len(scored) > opts.MaxProjects {
		scored = scored[:opts.MaxProjects]
	}
	return scored
}

// ScoreLibraryProject rates a project in [0,1] by Jaccard overlap of its
// tech stack and bullet skills with the job's required and preferred skills,
// plus job skills named in the project title.
func ScoreLibraryProject(p types.ProjectItem, job types.JobSkills) float64 {
	stack := skills.Keys(p.TechStack)
	var bulletSkills []string
	for _, b := range p.Bullets {
		bulletSkills = append(bulletSkills, b.Skills...)
	}
	bullets := skills.Keys(bulletSkills)
	required := skills.Keys(job.RequiredSkills)
	preferred := skills.Keys(job.PreferredSkills)

	score, total := 0.0, 0.0
	add := func(weight, value float64) {
		score += weight * value
		total += weight
	}
	if len(required) > 0 {
		add(selStackRequiredWeight, jaccard(stack, required))
	}
	if len(preferred) > 0 {
		add(selStackPreferredWeight, jaccard(stack, preferred))
	}
	if len(required) > 0 && len(bullets) > 0 {
		add(selBulletsRequiredWeight, jaccard(bullets, required))
	}
	if len(preferred) > 0 && len(bullets) > 0 {
		add(selBulletsPreferredWeight, jaccard(bullets, preferred))
	}

	targeted := append(append([]string{}, required...), preferred...)
	if len(targeted) > 0 {
		name := strings.ToLower(p.Name)
		hits := 0
		for _, s := range targeted {
			if strings.Contains(name, s) {
				hits++
			}
		}
		add(selNameWeight, min(float64(hits)/float64(len(targeted)), 1.0))
	}

	if total == 0 {
		return 0
	}
	return min(score/total, 1.0)
}

// jaccard expects deduplicated keys. Either side empty scores 0.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	inter := 0
	for _, k := range b {
		if set[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
