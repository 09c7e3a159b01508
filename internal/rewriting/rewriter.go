package rewriting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/ranking"
	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
)

const promptFile = "rewriting.json"

// Outcome labels what happened to a bullet during generation.
type Outcome string

// Bullet outcomes
const (
	OutcomeRewritten Outcome = "rewritten"
	OutcomeFallback  Outcome = "fallback"
	OutcomeSkipped   Outcome = "skipped"
)

// Observer receives per-bullet generation events.
type Observer interface {
	BulletProcessed(outcome Outcome)
	CandidatesRejected(n int)
}

type nopObserver struct{}

func (nopObserver) BulletProcessed(Outcome) {}
func (nopObserver) CandidatesRejected(int)  {}

// Rewriter runs the per-bullet reasoning, candidate, validation and ranking
// steps. Bullets are processed one at a time.
type Rewriter struct {
	proposer  TextProposer
	registry  *skills.Registry
	validator *validation.Validator
	feedback  *FeedbackStore
	observer  Observer
	logger    *zap.Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger for per-bullet decisions.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Rewriter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFeedback appends the store's preference note to candidate requests.
func WithFeedback(store *FeedbackStore) Option {
	return func(r *Rewriter) {
		r.feedback = store
	}
}

// WithObserver reports bullet outcomes, e.g. to metrics.
func WithObserver(o Observer) Option {
	return func(r *Rewriter) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewRewriter creates a Rewriter over a proposer and the user's skill registry.
func NewRewriter(proposer TextProposer, registry *skills.Registry, opts ...Option) *Rewriter {
	r := &Rewriter{
		proposer:  proposer,
		registry:  registry,
		validator: validation.NewValidator(registry),
		observer:  nopObserver{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// job carries the per-run inputs shared by every bullet.
type job struct {
	match   *types.JobMatch
	skills  types.JobSkills
	allowed []string
	intent  types.RewriteIntent
	note    string
}

// GenerateVariations proposes ranked rewrite candidates for every eligible
// bullet of resume. Bullets are keyed as in types.Resume.BulletRefs. A
// bullet whose proposals fail gets a single candidate equal to its original
// text; only cancellation of ctx aborts the run.
func (r *Rewriter) GenerateVariations(ctx context.Context, resume *types.Resume, match *types.JobMatch, jobSkills types.JobSkills, intent types.RewriteIntent) (types.RewriteResult, error) {
	if resume == nil || match == nil {
		return nil, fmt.Errorf("resume and job match are required")
	}
	j, err := r.newJob(match, jobSkills, intent)
	if err != nil {
		return nil, err
	}

	result := make(types.RewriteResult)
	pool := missingPool(match)
	if len(pool) == 0 {
		r.logger.Debug("no skill gaps, nothing to rewrite")
		return result, nil
	}

	for _, ref := range resume.BulletRefs() {
		bullet := resume.Bullet(ref)
		stack := r.stackFor(resume, ref)
		targets, ok := eligible(*bullet, pool, stack, ref.Project)
		if !ok {
			r.logger.Debug("bullet not eligible", zap.String(logging.FieldBullet, ref.Key))
			r.observer.BulletProcessed(OutcomeSkipped)
			continue
		}

		variations, err := r.processBullet(ctx, ref.Key, *bullet, stack, targets, j)
		if err != nil {
			return nil, err
		}
		result[ref.Key] = variations
	}
	return result, nil
}

// RegenerateBullet proposes fresh candidates for one bullet under a new
// intent, regardless of eligibility.
func (r *Rewriter) RegenerateBullet(ctx context.Context, resume *types.Resume, match *types.JobMatch, jobSkills types.JobSkills, key string, intent types.RewriteIntent) (types.BulletVariations, error) {
	if resume == nil || match == nil {
		return types.BulletVariations{}, fmt.Errorf("resume and job match are required")
	}
	ref, bullet, ok := resume.LookupBullet(key)
	if !ok {
		return types.BulletVariations{}, fmt.Errorf("bullet %q not found", key)
	}
	j, err := r.newJob(match, jobSkills, intent)
	if err != nil {
		return types.BulletVariations{}, err
	}

	stack := r.stackFor(resume, ref)
	targets := missingPool(match)
	if ref.Project {
		targets = relevantToStack(targets, stack)
	}
	return r.processBullet(ctx, key, *bullet, stack, targets, j)
}

func (r *Rewriter) newJob(match *types.JobMatch, jobSkills types.JobSkills, intent types.RewriteIntent) (job, error) {
	intent, err := types.ParseRewriteIntent(string(intent))
	if err != nil {
		return job{}, err
	}
	j := job{
		match:   match,
		skills:  jobSkills,
		allowed: AllowedSkills(r.registry, jobSkills),
		intent:  intent,
	}
	if r.feedback != nil {
		j.note = r.feedback.PreferenceNote()
	}
	return j, nil
}

func (r *Rewriter) stackFor(resume *types.Resume, ref types.BulletRef) []string {
	if !ref.Project {
		return nil
	}
	return resume.Projects[ref.Item].TechStack
}

func (r *Rewriter) processBullet(ctx context.Context, key string, bullet types.Bullet, stack, targets []string, j job) (types.BulletVariations, error) {
	if err := ctx.Err(); err != nil {
		return types.BulletVariations{}, err
	}
	log := r.logger.With(zap.String(logging.FieldBullet, key), zap.String(logging.FieldIntent, string(j.intent)))

	base := types.ReasoningRequest{
		BulletKey:       key,
		BulletText:      bullet.Text,
		BulletSkills:    bullet.Skills,
		ProjectContext:  stack,
		RequiredMissing: targets,
		MissingSkills:   firstN(j.match.MissingSkills, 10),
		MatchingSkills:  firstN(j.match.MatchingSkills, 10),
		AllowedSkills:   j.allowed,
	}

	reasoning, err := r.reason(ctx, base)
	if err != nil {
		if isCanceled(ctx, err) {
			return types.BulletVariations{}, err
		}
		log.Warn("reasoning unavailable, continuing with default", zap.Error(err))
		reasoning = defaultReasoning()
	}

	out := types.BulletVariations{
		BulletKey: key,
		Original:  bullet.Text,
		Reasoning: reasoning,
	}

	candidates, err := r.propose(ctx, base, reasoning, j)
	if err != nil {
		if isCanceled(ctx, err) {
			return types.BulletVariations{}, err
		}
		log.Warn("candidate proposal failed, keeping original", zap.Error(err))
		return r.fallback(out, j.intent), nil
	}

	opts := validation.Options{JobSkills: j.skills.Targeted(), Intent: j.intent}
	kept := make([]types.BulletCandidate, 0, len(candidates))
	for _, c := range candidates {
		res := r.validator.ValidateCandidate(&c, bullet.Text, opts)
		if !res.Valid() {
			log.Debug("candidate rejected",
				zap.String("text", logging.Truncate(c.Text, 80)),
				zap.Strings("violations", res.Errors()))
			continue
		}
		c.RiskLevel = ranking.RiskLevel(c, bullet.Text)
		kept = append(kept, c)
	}
	if rejected := len(candidates) - len(kept); rejected > 0 {
		r.observer.CandidatesRejected(rejected)
	}
	if len(kept) == 0 {
		log.Info("every candidate failed validation, keeping original")
		return r.fallback(out, j.intent), nil
	}

	out.Candidates = ranking.RankCandidates(kept)
	r.observer.BulletProcessed(OutcomeRewritten)
	return out, nil
}

func (r *Rewriter) fallback(v types.BulletVariations, intent types.RewriteIntent) types.BulletVariations {
	v.Candidates = []types.BulletCandidate{fallbackCandidate(v.Original, intent)}
	v.Fallback = true
	r.observer.BulletProcessed(OutcomeFallback)
	return v
}

func (r *Rewriter) reason(ctx context.Context, req types.ReasoningRequest) (types.Reasoning, error) {
	system, err := prompts.Get(promptFile, "reasoning-system")
	if err != nil {
		return types.Reasoning{}, err
	}
	prompt, err := prompts.Render(promptFile, "reasoning", reasoningData(req))
	if err != nil {
		return types.Reasoning{}, err
	}
	req.System, req.Prompt = system, prompt

	raw, err := r.proposer.ProposeReasoning(ctx, req)
	if err != nil {
		return types.Reasoning{}, &ProposerError{BulletKey: req.BulletKey, Step: "reasoning", Message: "proposer failed", Cause: err}
	}
	reasoning, err := parseReasoning(raw)
	if err != nil {
		return types.Reasoning{}, &ProposerError{BulletKey: req.BulletKey, Step: "reasoning", Message: "malformed output", Cause: err}
	}
	return reasoning, nil
}

func (r *Rewriter) propose(ctx context.Context, base types.ReasoningRequest, reasoning types.Reasoning, j job) ([]types.BulletCandidate, error) {
	req := types.CandidateRequest{
		ReasoningRequest: base,
		Reasoning:        reasoning,
		Intent:           j.intent,
		MaxCandidates:    MaxCandidates,
		PreferenceNote:   j.note,
	}
	system, err := prompts.Get(promptFile, "candidates-system")
	if err != nil {
		return nil, err
	}
	data, err := candidateData(req)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Render(promptFile, "candidates", data)
	if err != nil {
		return nil, err
	}
	req.System, req.Prompt = system, prompt

	raw, err := r.proposer.ProposeCandidates(ctx, req)
	if err != nil {
		return nil, &ProposerError{BulletKey: base.BulletKey, Step: "candidates", Message: "proposer failed", Cause: err}
	}
	candidates, err := parseCandidates(raw, j.intent)
	if err != nil {
		return nil, &ProposerError{BulletKey: base.BulletKey, Step: "candidates", Message: "malformed output", Cause: err}
	}
	return candidates, nil
}

func reasoningData(req types.ReasoningRequest) map[string]string {
	return map[string]string{
		"BulletText":      req.BulletText,
		"BulletSkills":    joinOrNone(req.BulletSkills),
		"ProjectContext":  projectContext(req.ProjectContext),
		"RequiredMissing": joinOrNone(req.RequiredMissing),
		"MissingSkills":   joinOrNone(req.MissingSkills),
		"MatchingSkills":  joinOrNone(req.MatchingSkills),
		"AllowedSkills":   joinOrNone(req.AllowedSkills),
	}
}

func candidateData(req types.CandidateRequest) (map[string]string, error) {
	guidance, err := prompts.Get(promptFile, "intent-"+string(req.Intent))
	if err != nil {
		return nil, err
	}
	data := reasoningData(req.ReasoningRequest)
	data["MaxCandidates"] = fmt.Sprintf("%d", req.MaxCandidates)
	data["Problem"] = req.Reasoning.ProblemIdentification
	data["Analysis"] = req.Reasoning.Analysis
	data["Approach"] = req.Reasoning.SolutionApproach
	data["Evaluation"] = req.Reasoning.Evaluation
	data["Alternatives"] = joinOrNone(firstN(req.Reasoning.AlternativesConsidered, 3))
	data["Intent"] = string(req.Intent)
	data["IntentGuidance"] = guidance
	data["PreferenceNote"] = ""
	if req.PreferenceNote != "" {
		data["PreferenceNote"] = prompts.Format(prompts.MustGet(promptFile, "preference-note"), map[string]string{
			"Note": req.PreferenceNote,
		})
	}
	return data, nil
}

func projectContext(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return prompts.Format(prompts.MustGet(promptFile, "project-context"), map[string]string{
		"TechStack": strings.Join(stack, ", "),
	})
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ", ")
}

func defaultReasoning() types.Reasoning {
	return types.Reasoning{
		ProblemIdentification:  "Bullet does not surface the job's missing skills.",
		AlternativesConsidered: []string{},
		ConfidenceScore:        0.5,
	}
}

func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
