package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/analytics"
	"github.com/jonathan/resume-tailor/internal/highlight"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/relevance"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

func testRegistry() *skills.Registry {
	return skills.NewRegistry(skills.DefaultOntology(), []skills.Entry{
		{Name: "Python", Category: "Languages"},
		{Name: "Docker", Category: "DevOps"},
	})
}

func testResume() *types.Resume {
	return &types.Resume{
		Name: "Test Person",
		Experience: []types.ExperienceItem{{
			Organization: "Acme",
			Role:         "Engineer",
			Bullets:      []types.Bullet{types.NewBullet("Built data pipelines in Python", "Python")},
		}},
		Skills:  map[string][]string{"Languages": {"Python"}},
		Version: 1,
	}
}

func newTestServer(t *testing.T, cfg Config, deps Deps) http.Handler {
	t.Helper()
	if deps.Registry == nil {
		deps.Registry = testRegistry()
	}
	s, err := New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s.Handler()
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type stubJobs struct {
	jobs []types.Job
}

func (s stubJobs) ListJobs(_ context.Context) ([]types.Job, error) { return s.jobs, nil }

func (s stubJobs) ResumesForJob(_ context.Context, _ string) ([]matching.StoredResume, error) {
	return nil, nil
}

func TestNew_RequiresRegistry(t *testing.T) {
	_, err := New(Config{}, Deps{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMatch(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{})
	rec := post(t, h, "/match", map[string]any{
		"resume":     testResume(),
		"job_skills": map[string]any{"required_skills": "Python, Docker"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var match types.JobMatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.InDelta(t, 0.2857, match.FitScore, 1e-4)
	assert.Equal(t, []string{"Docker"}, match.SkillGaps.RequiredMissing)
}

func TestMatch_BadRequests(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{})

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing resume", map[string]any{"job_skills": map[string]any{"required_skills": []string{"Go"}}}, http.StatusBadRequest},
		{"missing job skills", map[string]any{"resume": testResume()}, http.StatusBadRequest},
		{"empty job skills", map[string]any{"resume": testResume(), "job_skills": map[string]any{}}, http.StatusBadRequest},
		{"not json", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/match", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestMatch_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSimilar(t *testing.T) {
	jobs := []types.Job{
		{ID: "same", Title: "Data Engineer", Skills: types.JobSkills{RequiredSkills: []string{"Python", "Docker"}}},
		{ID: "other", Title: "Designer", Skills: types.JobSkills{RequiredSkills: []string{"Figma"}}},
	}
	target := map[string]any{"required_skills": []string{"Python", "Docker"}}

	t.Run("jobs in request", func(t *testing.T) {
		h := newTestServer(t, Config{}, Deps{})
		rec := post(t, h, "/similar", map[string]any{"job_skills": target, "jobs": jobs})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got []matching.SimilarJob
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "same", got[0].Job.ID)
		assert.InDelta(t, 1.0, got[0].Similarity, 1e-9)
	})

	t.Run("jobs from repository", func(t *testing.T) {
		h := newTestServer(t, Config{}, Deps{Jobs: stubJobs{jobs: jobs}})
		rec := post(t, h, "/similar", map[string]any{"job_skills": target})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"same"`)
	})

	t.Run("no repository", func(t *testing.T) {
		h := newTestServer(t, Config{}, Deps{})
		rec := post(t, h, "/similar", map[string]any{"job_skills": target})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		h := newTestServer(t, Config{}, Deps{})
		rec := post(t, h, "/similar", map[string]any{"job_skills": target, "jobs": []types.Job{}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("bad threshold", func(t *testing.T) {
		h := newTestServer(t, Config{}, Deps{})
		rec := post(t, h, "/similar", map[string]any{"job_skills": target, "jobs": jobs, "threshold": 2})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRewrite(t *testing.T) {
	registry := testRegistry()
	rewriter := rewriting.NewRewriter(llm.NewFixtureProposer(llm.FixtureFile{}), registry)
	h := newTestServer(t, Config{}, Deps{Registry: registry, Rewriter: rewriter})

	body := map[string]any{
		"resume":     testResume(),
		"job_skills": map[string]any{"required_skills": []string{"Python", "Docker"}},
	}
	rec := post(t, h, "/rewrite", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp RewriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Match)
	assert.Equal(t, []string{"Docker"}, resp.Match.SkillGaps.RequiredMissing)
	for key, v := range resp.Result {
		assert.NotEmpty(t, v.Candidates, key)
		assert.LessOrEqual(t, len(v.Candidates), rewriting.MaxCandidates)
	}
}

func TestRewrite_Errors(t *testing.T) {
	registry := testRegistry()
	rewriter := rewriting.NewRewriter(llm.NewFixtureProposer(llm.FixtureFile{}), registry)
	h := newTestServer(t, Config{}, Deps{Registry: registry, Rewriter: rewriter})
	js := map[string]any{"required_skills": []string{"Docker"}}

	rec := post(t, h, "/rewrite", map[string]any{"resume": testResume(), "job_skills": js, "intent": "embellish"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/rewrite", map[string]any{"resume": testResume(), "job_skills": js, "bullet_key": "experience.9.bullets.0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/rewrite", map[string]any{"resume": testResume(), "job_skills": js, "match": map[string]any{"fit_score": 1.5}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	disabled := newTestServer(t, Config{}, Deps{})
	rec = post(t, disabled, "/rewrite", map[string]any{"resume": testResume(), "job_skills": js})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApply(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{})
	resume := testResume()
	key := resume.BulletRefs()[0].Key
	result := types.RewriteResult{key: {
		BulletKey: key,
		Original:  "Built data pipelines in Python",
		Candidates: []types.BulletCandidate{
			{
				Text:             "Built data pipelines in Python with Docker",
				DiffFromOriginal: types.Diff{Added: []string{"Docker"}},
			},
			{
				Text:             "Built data pipelines in Python on Kubernetes",
				DiffFromOriginal: types.Diff{Added: []string{"Kubernetes"}},
			},
			{
				Text:             "Built data pipelines in Python",
				DiffFromOriginal: types.Diff{Added: []string{"Kubernetes", "COBOL"}},
			},
		},
	}}

	rec := post(t, h, "/apply", ApplyRequest{
		Resume:          resume,
		Result:          result,
		Selections:      []rewriting.Selection{{BulletKey: key, CandidateIndex: 0}},
		ApprovedByHuman: true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated types.Resume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 2, updated.Version)
	bullet := updated.Experience[0].Bullets[0]
	assert.Equal(t, "Built data pipelines in Python with Docker", bullet.Text)
	assert.Equal(t, []string{"Python", "Docker"}, bullet.Skills)
	require.Len(t, bullet.History, 1)
	assert.True(t, bullet.History[0].ApprovedByHuman)

	rec = post(t, h, "/apply", ApplyRequest{
		Resume:     resume,
		Result:     result,
		Selections: []rewriting.Selection{{BulletKey: key, CandidateIndex: 3}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Caller-supplied candidates are checked again.
	rec = post(t, h, "/apply", ApplyRequest{
		Resume:     resume,
		Result:     result,
		Selections: []rewriting.Selection{{BulletKey: key, CandidateIndex: 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "kubernetes")

	rec = post(t, h, "/apply", ApplyRequest{
		Resume:     resume,
		Result:     result,
		Selections: []rewriting.Selection{{BulletKey: key, CandidateIndex: 0}},
		JobSkills:  json.RawMessage(`{"required_skills": ["Python"]}`),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	long := result[key]
	long.Candidates = []types.BulletCandidate{{Text: strings.Repeat("a", 151)}}
	rec = post(t, h, "/apply", ApplyRequest{
		Resume:     resume,
		Result:     types.RewriteResult{key: long},
		Selections: []rewriting.Selection{{BulletKey: key}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHighlight(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{})
	original := testResume()
	rewritten := original.Clone()
	rewritten.Experience[0].Bullets[0].Skills = []string{"Python", "Docker"}

	rec := post(t, h, "/highlight", map[string]any{
		"original":   original,
		"rewritten":  rewritten,
		"job_skills": map[string]any{"required_skills": []string{"Docker"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got map[string]highlight.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got[original.BulletRefs()[0].Key].Bold, "Docker")

	rec = post(t, h, "/highlight", map[string]any{"original": original})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimize(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{})
	resume := testResume()
	resume.Experience = append([]types.ExperienceItem{{
		Organization: "Cafe",
		Role:         "Barista",
		Bullets:      []types.Bullet{types.NewBullet("Made coffee")},
	}}, resume.Experience...)

	rec := post(t, h, "/optimize", map[string]any{
		"resume":     resume,
		"job_skills": map[string]any{"required_skills": []string{"Python"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Resume.Experience, 2)
	assert.Equal(t, "Acme", resp.Resume.Experience[0].Organization)
	assert.Equal(t, "Cafe", resume.Experience[0].Organization, "input not reordered")
}

func TestSelectProjects(t *testing.T) {
	projects := []types.ProjectItem{
		{Name: "Recipes", TechStack: []string{"HTML"}},
		{Name: "Data platform", TechStack: []string{"Python", "Docker"}},
	}
	job := map[string]any{"required_skills": []string{"Python", "Docker"}}

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
		want     []string
	}{
		{"defaults drop low scores", map[string]any{"projects": projects, "job_skills": job}, http.StatusOK, []string{"Data platform"}},
		{"zero min score keeps all", map[string]any{"projects": projects, "job_skills": job, "min_score": 0}, http.StatusOK, []string{"Data platform", "Recipes"}},
		{"max projects", map[string]any{"projects": projects, "job_skills": job, "min_score": 0, "max_projects": 1}, http.StatusOK, []string{"Data platform"}},
		{"no projects", map[string]any{"job_skills": job}, http.StatusOK, []string{}},
		{"missing job", map[string]any{"projects": projects}, http.StatusBadRequest, nil},
		{"bad min score", map[string]any{"projects": projects, "job_skills": job, "min_score": 1.5}, http.StatusBadRequest, nil},
		{"negative max", map[string]any{"projects": projects, "job_skills": job, "max_projects": -1}, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, Config{}, Deps{})
			rec := post(t, h, "/projects/select", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.want == nil {
				return
			}

			var got []relevance.ScoredProject
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			names := []string{}
			for _, sp := range got {
				names = append(names, sp.Project.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSkillGaps(t *testing.T) {
	jobs := []types.Job{
		{ID: "a", Skills: types.JobSkills{RequiredSkills: []string{"Python", "Kubernetes"}, PreferredSkills: []string{"Docker"}}},
		{ID: "b", Skills: types.JobSkills{RequiredSkills: []string{"Kubernetes"}}},
	}

	decodeGaps := func(t *testing.T, rec *httptest.ResponseRecorder) SkillGapsResponse {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp SkillGapsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	t.Run("jobs in request", func(t *testing.T) {
		h := newTestServer(t, Config{}, Deps{})
		resp := decodeGaps(t, post(t, h, "/analytics/skills", map[string]any{"resume": testResume(), "jobs": jobs}))

		assert.Equal(t, 2, resp.JobsAnalyzed)
		require.Len(t, resp.Skills, 2)
		assert.Equal(t, "Kubernetes", resp.Skills[0].SkillName)
		assert.Equal(t, 6.0, resp.Skills[0].PriorityScore)
		assert.Equal(t, "Docker", resp.Skills[1].SkillName)
		assert.Equal(t, analytics.CoverageVerified, resp.Skills[1].ResumeCoverage)
	})

	t.Run("jobs from repository with limit", func(t *testing.T) {
		h := newTestServer(t, Config{}, Deps{Jobs: stubJobs{jobs: jobs}})
		resp := decodeGaps(t, post(t, h, "/analytics/skills", map[string]any{
			"resume": testResume(), "by": "frequency", "limit": 1,
		}))
		require.Len(t, resp.Skills, 1)
		assert.Equal(t, "Kubernetes", resp.Skills[0].SkillName)
	})

	tests := []struct {
		name     string
		deps     Deps
		body     map[string]any
		wantCode int
	}{
		{"no repository", Deps{}, map[string]any{"resume": testResume()}, http.StatusServiceUnavailable},
		{"missing resume", Deps{}, map[string]any{"jobs": jobs}, http.StatusBadRequest},
		{"unknown ranking", Deps{}, map[string]any{"resume": testResume(), "jobs": jobs, "by": "alphabetical"}, http.StatusBadRequest},
		{"negative limit", Deps{}, map[string]any{"resume": testResume(), "jobs": jobs, "limit": -1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, Config{}, tt.deps)
			rec := post(t, h, "/analytics/skills", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, Config{RateLimit: 1, Burst: 1}, Deps{})
	body := map[string]any{
		"resume":     testResume(),
		"job_skills": map[string]any{"required_skills": []string{"Python"}},
	}

	first := post(t, h, "/match", body)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := post(t, h, "/match", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "rate_limit_exceeded")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, Config{}, Deps{})
	post(t, h, "/match", map[string]any{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `resume_tailor_http_requests_total{method="POST",path="/match",status="400"} 1`)
}
