package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/analytics"
	"github.com/jonathan/resume-tailor/internal/highlight"
	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/relevance"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/types"
)

// MatchRequest is the body of POST /match and POST /optimize. JobSkills
// accepts the typed shape or a loose map of lists or comma-separated strings.
type MatchRequest struct {
	Resume    *types.Resume   `json:"resume"`
	JobSkills json.RawMessage `json:"job_skills"`
}

// OptimizeResponse is the reordered resume and the match it was ordered by.
type OptimizeResponse struct {
	Match  *types.JobMatch `json:"match"`
	Resume *types.Resume   `json:"resume"`
}

// SimilarRequest is the body of POST /similar. Jobs is optional when the
// server has a job repository.
type SimilarRequest struct {
	JobSkills json.RawMessage `json:"job_skills"`
	Jobs      []types.Job     `json:"jobs,omitempty"`
	Threshold float64         `json:"threshold,omitempty"`
}

// RewriteRequest is the body of POST /rewrite. A BulletKey regenerates that
// bullet only.
type RewriteRequest struct {
	Resume    *types.Resume   `json:"resume"`
	JobSkills json.RawMessage `json:"job_skills"`
	Match     *types.JobMatch `json:"match,omitempty"`
	Intent    string          `json:"intent,omitempty"`
	BulletKey string          `json:"bullet_key,omitempty"`
}

// RewriteResponse carries the match the rewrite was driven by.
type RewriteResponse struct {
	Match  *types.JobMatch     `json:"match"`
	Result types.RewriteResult `json:"result"`
}

// ApplyRequest is the body of POST /apply. JobSkills is optional; when sent,
// chosen text may only mention skills the job asks for.
type ApplyRequest struct {
	Resume          *types.Resume         `json:"resume"`
	Result          types.RewriteResult   `json:"result"`
	Selections      []rewriting.Selection `json:"selections"`
	JobSkills       json.RawMessage       `json:"job_skills,omitempty"`
	ApprovedByHuman bool                  `json:"approved_by_human"`
}

// SelectProjectsRequest is the body of POST /projects/select. A zero
// MaxProjects keeps up to four; MinScore defaults to 0.3 when omitted.
type SelectProjectsRequest struct {
	Projects    []types.ProjectItem `json:"projects"`
	JobSkills   json.RawMessage     `json:"job_skills"`
	MaxProjects int                 `json:"max_projects,omitempty"`
	MinScore    *float64            `json:"min_score,omitempty"`
}

// SkillGapsRequest is the body of POST /analytics/skills. Jobs is optional
// when the server has a job repository.
type SkillGapsRequest struct {
	Resume *types.Resume `json:"resume"`
	Jobs   []types.Job   `json:"jobs,omitempty"`
	By     string        `json:"by,omitempty"`
	Limit  int           `json:"limit,omitempty"`
}

// SkillGapsResponse lists the ranked gaps and how many jobs were analyzed.
type SkillGapsResponse struct {
	JobsAnalyzed int                  `json:"jobs_analyzed"`
	Skills       []analytics.SkillGap `json:"skills"`
}

// HighlightRequest is the body of POST /highlight.
type HighlightRequest struct {
	Original  *types.Resume   `json:"original"`
	Rewritten *types.Resume   `json:"rewritten"`
	JobSkills json.RawMessage `json:"job_skills"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	js, err := requireInputs(req.Resume, req.JobSkills)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	match, err := s.matcher.MatchJob(req.Resume, js)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, match)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if err := decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	js, err := jobSkills(req.JobSkills)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		s.errorResponse(w, &ErrValidation{Field: "threshold", Message: "must be between 0 and 1"})
		return
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = matching.DefaultSimilarityThreshold
	}

	jobs := req.Jobs
	if jobs == nil {
		if s.deps.Jobs == nil {
			s.errorResponse(w, &ErrUnavailable{Feature: "job storage"})
			return
		}
		if jobs, err = s.deps.Jobs.ListJobs(r.Context()); err != nil {
			s.errorResponse(w, err)
			return
		}
	}

	similar := matching.FindSimilarJobs(js, jobs, threshold)
	if similar == nil {
		similar = []matching.SimilarJob{}
	}
	s.jsonResponse(w, http.StatusOK, similar)
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if s.deps.Rewriter == nil {
		s.errorResponse(w, &ErrUnavailable{Feature: "rewriting"})
		return
	}
	var req RewriteRequest
	if err := decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	js, err := requireInputs(req.Resume, req.JobSkills)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	intent, err := types.ParseRewriteIntent(req.Intent)
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "intent", Message: err.Error()})
		return
	}

	match := req.Match
	if match == nil {
		if match, err = s.matcher.MatchJob(req.Resume, js); err != nil {
			s.errorResponse(w, err)
			return
		}
	} else if err := match.Validate(); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "match", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	var result types.RewriteResult
	if req.BulletKey != "" {
		if _, _, ok := req.Resume.LookupBullet(req.BulletKey); !ok {
			s.errorResponse(w, &ErrValidation{Field: "bullet_key", Message: "no bullet " + req.BulletKey})
			return
		}
		v, err := s.deps.Rewriter.RegenerateBullet(ctx, req.Resume, match, js, req.BulletKey, intent)
		if err != nil {
			s.errorResponse(w, err)
			return
		}
		result = types.RewriteResult{req.BulletKey: v}
	} else {
		if result, err = s.deps.Rewriter.GenerateVariations(ctx, req.Resume, match, js, intent); err != nil {
			s.errorResponse(w, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, RewriteResponse{Match: match, Result: result})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.Resume == nil {
		s.errorResponse(w, &ErrValidation{Field: "resume", Message: "is required"})
		return
	}

	opts := rewriting.ApplyOptions{
		Validator:       s.validator,
		ApprovedByHuman: req.ApprovedByHuman,
	}
	if raw := bytes.TrimSpace(req.JobSkills); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		js, err := jobSkills(req.JobSkills)
		if err != nil {
			s.errorResponse(w, err)
			return
		}
		opts.JobSkills = js.Targeted()
	}

	updated, err := rewriting.ApplySelections(req.Resume, req.Result, req.Selections, opts)
	if err != nil {
		// Unknown keys and out-of-range indexes are caller mistakes.
		if HTTPStatus(err) == http.StatusInternalServerError {
			err = &ErrValidation{Field: "selections", Message: err.Error()}
		}
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if err := decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.Original == nil || req.Rewritten == nil {
		s.errorResponse(w, &ErrValidation{Field: "original", Message: "original and rewritten resumes are required"})
		return
	}
	js, err := jobSkills(req.JobSkills)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	decisions := highlight.NewTracker(req.Original, js).DecideAll(req.Rewritten)
	s.jsonResponse(w, http.StatusOK, decisions)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	js, err := requireInputs(req.Resume, req.JobSkills)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	match, err := s.matcher.MatchJob(req.Resume, js)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	optimized := relevance.NewOptimizer(js, match).OptimizeAll(req.Resume)
	s.jsonResponse(w, http.StatusOK, OptimizeResponse{Match: match, Resume: optimized})
}

func (s *Server) handleSelectProjects(w http.ResponseWriter, r *http.Request) {
	var req SelectProjectsRequest
	if err := decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	js, err := jobSkills(req.JobSkills)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.MaxProjects < 0 {
		s.errorResponse(w, &ErrValidation{Field: "max_projects", Message: "must not be negative"})
		return
	}
	opts := relevance.DefaultSelectOptions()
	if req.MaxProjects > 0 {
		opts.MaxProjects = req.MaxProjects
	}
	if req.MinScore != nil {
		if *req.MinScore < 0 || *req.MinScore > 1 {
			s.errorResponse(w, &ErrValidation{Field: "min_score", Message: "must be between 0 and 1"})
			return
		}
		opts.MinScore = *req.MinScore
	}

	selected := relevance.SelectProjects(req.Projects, js, opts)
	if selected == nil {
		selected = []relevance.ScoredProject{}
	}
	s.jsonResponse(w, http.StatusOK, selected)
}

func (s *Server) handleSkillGaps(w http.ResponseWriter, r *http.Request) {
	var req SkillGapsRequest
	if err := decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if req.Resume == nil {
		s.errorResponse(w, &ErrValidation{Field: "resume", Message: "is required"})
		return
	}
	order, err := analytics.ParseOrder(req.By)
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "by", Message: err.Error()})
		return
	}
	if req.Limit < 0 {
		s.errorResponse(w, &ErrValidation{Field: "limit", Message: "must not be negative"})
		return
	}

	jobs := req.Jobs
	if jobs == nil {
		if s.deps.Jobs == nil {
			s.errorResponse(w, &ErrUnavailable{Feature: "job storage"})
			return
		}
		if jobs, err = s.deps.Jobs.ListJobs(r.Context()); err != nil {
			s.errorResponse(w, err)
			return
		}
	}

	gaps, err := s.gaps.SkillGaps(req.Resume, jobs)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SkillGapsResponse{
		JobsAnalyzed: len(jobs),
		Skills:       analytics.Rank(gaps, order, req.Limit),
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

func jobSkills(raw json.RawMessage) (types.JobSkills, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return types.JobSkills{}, &ErrValidation{Field: "job_skills", Message: "is required"}
	}
	return parsing.ParseJobSkills(raw)
}

func requireInputs(resume *types.Resume, raw json.RawMessage) (types.JobSkills, error) {
	if resume == nil {
		return types.JobSkills{}, &ErrValidation{Field: "resume", Message: "is required"}
	}
	return jobSkills(raw)
}
