package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	jobs    []types.Job
	resumes map[string][]StoredResume
	listErr error
	calls   []string
}

func (r *memRepo) ListJobs(context.Context) ([]types.Job, error) {
	return r.jobs, r.listErr
}

func (r *memRepo) ResumesForJob(_ context.Context, jobID string) ([]StoredResume, error) {
	r.calls = append(r.calls, jobID)
	return r.resumes[jobID], nil
}

func resumeWith(skillNames ...string) *types.Resume {
	return &types.Resume{Skills: map[string][]string{"Tools": skillNames}}
}

func TestFindReusableResume_GreedyFirstMatch(t *testing.T) {
	target := types.JobSkills{RequiredSkills: []string{"Go", "Docker"}, PreferredSkills: []string{"Kafka"}, SoftSkills: []string{"Mentoring"}}
	repo := &memRepo{
		jobs: []types.Job{
			{ID: "target", Skills: target},
			{ID: "close", Skills: target},
			{ID: "also-close", Skills: target},
		},
		resumes: map[string][]StoredResume{
			"target":     {{ID: "self", Resume: resumeWith("Go", "Docker", "Kafka", "Mentoring")}},
			"close":      {{ID: "weak", Resume: resumeWith("Go")}, {ID: "good", Resume: resumeWith("Go", "Docker", "Kafka", "Mentoring")}},
			"also-close": {{ID: "better", Resume: resumeWith("Go", "Docker", "Kafka", "Mentoring", "Rust")}},
		},
	}

	checker := NewReuseChecker(repo, defaultMatcher())
	got, err := checker.FindReusableResume(context.Background(), target, ReuseOptions{ExcludeJobID: "target"})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "good", got.ResumeID)
	assert.Equal(t, "close", got.JobID)
	assert.Equal(t, 1.0, got.FitScore)
	assert.Equal(t, 1.0, got.Similarity)
	assert.Equal(t, []string{"close"}, repo.calls)
}

func TestFindReusableResume_NoSimilarJob(t *testing.T) {
	target := types.JobSkills{RequiredSkills: []string{"Go", "Docker"}}
	repo := &memRepo{
		jobs: []types.Job{{ID: "other", Skills: types.JobSkills{RequiredSkills: []string{"Go"}}}},
		resumes: map[string][]StoredResume{
			// Would fit the target perfectly, but its job is not similar enough.
			"other": {{ID: "perfect", Resume: resumeWith("Go", "Docker")}},
		},
	}

	got, err := NewReuseChecker(repo, defaultMatcher()).FindReusableResume(context.Background(), target, ReuseOptions{})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, repo.calls)
}

func TestFindReusableResume_FitBelowThreshold(t *testing.T) {
	target := types.JobSkills{RequiredSkills: []string{"Go", "Docker"}}
	repo := &memRepo{
		jobs:    []types.Job{{ID: "same", Skills: target}},
		resumes: map[string][]StoredResume{"same": {{ID: "nil"}, {ID: "half", Resume: resumeWith("Go")}}},
	}

	got, err := NewReuseChecker(repo, defaultMatcher()).FindReusableResume(context.Background(), target, ReuseOptions{MinFitScore: 0.2})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "half", got.ResumeID)

	got, err = NewReuseChecker(repo, defaultMatcher()).FindReusableResume(context.Background(), target, ReuseOptions{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindReusableResume_RepositoryError(t *testing.T) {
	repo := &memRepo{listErr: errors.New("db down")}
	_, err := NewReuseChecker(repo, defaultMatcher()).FindReusableResume(context.Background(), types.JobSkills{}, ReuseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
