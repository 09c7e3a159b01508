package matching

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultMinReuseFit is the fit a stored resume needs against a new job to be
// reused as-is.
const DefaultMinReuseFit = 0.90

// StoredResume is a resume previously tailored for a job.
type StoredResume struct {
	ID     string        `json:"id"`
	JobID  string        `json:"job_id"`
	Resume *types.Resume `json:"resume"`
}

// JobRepository provides the stored jobs and tailored resumes reuse looks at.
type JobRepository interface {
	// ListJobs returns every stored job with its extracted skills.
	ListJobs(ctx context.Context) ([]types.Job, error)
	// ResumesForJob returns the resumes tailored for jobID, most recent first.
	ResumesForJob(ctx context.Context, jobID string) ([]StoredResume, error)
}

// Reuse describes a stored resume that already fits a new job.
type Reuse struct {
	ResumeID   string        `json:"resume_id"`
	JobID      string        `json:"job_id"`
	Resume     *types.Resume `json:"resume"`
	FitScore   float64       `json:"fit_score"`
	Similarity float64       `json:"similarity"`
}

// ReuseChecker finds stored resumes that can serve a new job.
type ReuseChecker struct {
	repo    JobRepository
	matcher *SkillMatcher
}

// NewReuseChecker creates a checker over repo.
func NewReuseChecker(repo JobRepository, matcher *SkillMatcher) *ReuseChecker {
	return &ReuseChecker{repo: repo, matcher: matcher}
}

// ReuseOptions bounds a reuse search. Zero values select the defaults.
type ReuseOptions struct {
	ExcludeJobID  string
	MinFitScore   float64
	MinSimilarity float64
}

func (o ReuseOptions) withDefaults() ReuseOptions {
	if o.MinFitScore <= 0 {
		o.MinFitScore = DefaultMinReuseFit
	}
	if o.MinSimilarity <= 0 {
		o.MinSimilarity = DefaultSimilarityThreshold
	}
	return o
}

// FindReusableResume walks similar jobs from most to least similar and, for
// each, its resumes from newest to oldest. It returns the first resume whose
// fit against target reaches MinFitScore. The search is greedy: a better
// resume further down the list is never considered. A nil result with a nil
// error means nothing qualified.
func (c *ReuseChecker) FindReusableResume(ctx context.Context, target types.JobSkills, opts ReuseOptions) (*Reuse, error) {
	opts = opts.withDefaults()

	jobs, err := c.repo.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	candidates := make([]types.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.ID == "" || job.ID == opts.ExcludeJobID {
			continue
		}
		candidates = append(candidates, job)
	}

	for _, similar := range FindSimilarJobs(target, candidates, opts.MinSimilarity) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resumes, err := c.repo.ResumesForJob(ctx, similar.Job.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load resumes for job %s: %w", similar.Job.ID, err)
		}
		for _, stored := range resumes {
			if stored.Resume == nil {
				continue
			}
			match, err := c.matcher.MatchJob(stored.Resume, target)
			if err != nil {
				return nil, err
			}
			if match.FitScore >= opts.MinFitScore {
				return &Reuse{
					ResumeID:   stored.ID,
					JobID:      similar.Job.ID,
					Resume:     stored.Resume,
					FitScore:   match.FitScore,
					Similarity: similar.Similarity,
				}, nil
			}
		}
	}
	return nil, nil
}
