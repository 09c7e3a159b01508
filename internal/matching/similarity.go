package matching

import (
	"sort"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultSimilarityThreshold is the minimum similarity for two jobs to be
// considered interchangeable.
const DefaultSimilarityThreshold = 0.85

// SimilarJob is a job whose skill profile is close to a target job.
type SimilarJob struct {
	Job        types.Job `json:"job"`
	Similarity float64   `json:"similarity"`
}

// JobSimilarity returns the weighted Jaccard similarity of two skill
// profiles. Each bucket is compared independently; two empty buckets count
// as identical.
func JobSimilarity(a, b types.JobSkills) float64 {
	req := jaccard(a.RequiredSkills, b.RequiredSkills)
	pref := jaccard(a.PreferredSkills, b.PreferredSkills)
	soft := jaccard(a.SoftSkills, b.SoftSkills)
	return clamp((req*RequiredWeight + pref*PreferredWeight + soft*SoftWeight) / totalWeight)
}

// FindSimilarJobs scores every candidate against target and returns those at
// or above threshold, most similar first. Ties keep their input order.
func FindSimilarJobs(target types.JobSkills, candidates []types.Job, threshold float64) []SimilarJob {
	var out []SimilarJob
	for _, job := range candidates {
		sim := JobSimilarity(target, job.Skills)
		if sim >= threshold {
			out = append(out, SimilarJob{Job: job, Similarity: sim})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}

func jaccard(a, b []string) float64 {
	setA, setB := skills.KeySet(a), skills.KeySet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	intersection := 0
	for k := range setA {
		if setB[k] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
