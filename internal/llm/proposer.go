package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerConfig tunes the circuit breaker and retry loop around model calls.
type BreakerConfig struct {
	Enabled             bool
	HalfOpenMaxCalls    uint32
	OpenTimeout         time.Duration
	MinRequests         uint32
	FailureRatio        float64
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
}

// DefaultBreakerConfig returns the breaker settings used by the CLI and server.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:             true,
		HalfOpenMaxCalls:    1,
		OpenTimeout:         30 * time.Second,
		MinRequests:         5,
		FailureRatio:        0.6,
		RetryMaxAttempts:    2,
		RetryInitialBackoff: 500 * time.Millisecond,
		RetryMaxBackoff:     4 * time.Second,
	}
}

func (c BreakerConfig) normalize() BreakerConfig {
	if c.HalfOpenMaxCalls == 0 {
		c.HalfOpenMaxCalls = 1
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.MinRequests == 0 {
		c.MinRequests = 1
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.6
	}
	if c.RetryMaxAttempts < 1 {
		c.RetryMaxAttempts = 1
	}
	if c.RetryMaxBackoff < c.RetryInitialBackoff {
		c.RetryMaxBackoff = c.RetryInitialBackoff
	}
	return c
}

// Proposer adapts a Client to the rewrite pipeline. Calls go through a
// circuit breaker so a failing provider degrades to fallback candidates
// quickly instead of timing out on every bullet.
type Proposer struct {
	client  Client
	cfg     BreakerConfig
	breaker *gobreaker.CircuitBreaker[string]
	logger  *zap.Logger

	reasoningTier ModelTier
	candidateTier ModelTier
}

// ProposerOption configures a Proposer.
type ProposerOption func(*Proposer)

// WithLogger sets the logger used for retries and breaker transitions.
func WithLogger(logger *zap.Logger) ProposerOption {
	return func(p *Proposer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBreaker overrides the default breaker configuration.
func WithBreaker(cfg BreakerConfig) ProposerOption {
	return func(p *Proposer) {
		p.cfg = cfg
	}
}

// WithTiers sets the model tiers used for reasoning and candidate calls.
func WithTiers(reasoning, candidates ModelTier) ProposerOption {
	return func(p *Proposer) {
		p.reasoningTier = reasoning
		p.candidateTier = candidates
	}
}

// NewProposer wraps client.
func NewProposer(client Client, opts ...ProposerOption) *Proposer {
	p := &Proposer{
		client:        client,
		cfg:           DefaultBreakerConfig(),
		logger:        zap.NewNop(),
		reasoningTier: TierStandard,
		candidateTier: TierAdvanced,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cfg = p.cfg.normalize()
	if p.cfg.Enabled {
		p.breaker = p.newBreaker()
	}
	return p
}

// ProposeReasoning returns the raw reasoning JSON for a bullet.
func (p *Proposer) ProposeReasoning(ctx context.Context, req types.ReasoningRequest) (string, error) {
	return p.call(ctx, "reasoning", p.reasoningTier, req.System, req.Prompt)
}

// ProposeCandidates returns the raw candidates JSON for a bullet.
func (p *Proposer) ProposeCandidates(ctx context.Context, req types.CandidateRequest) (string, error) {
	return p.call(ctx, "candidates", p.candidateTier, req.System, req.Prompt)
}

// Close releases the underlying client.
func (p *Proposer) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *Proposer) call(ctx context.Context, op string, tier ModelTier, system, prompt string) (string, error) {
	if p.client == nil {
		return "", errors.New("proposer has no LLM client")
	}
	full := prompt
	if system != "" {
		full = system + "\n\n" + prompt
	}

	fn := func() (string, error) {
		return p.withRetry(ctx, op, func() (string, error) {
			return p.client.GenerateJSON(ctx, full, tier)
		})
	}
	if p.breaker == nil {
		return fn()
	}

	out, err := p.breaker.Execute(fn)
	if IsCircuitOpen(err) {
		return "", fmt.Errorf("%s proposal skipped: %w", op, err)
	}
	return out, err
}

func (p *Proposer) withRetry(ctx context.Context, op string, fn func() (string, error)) (string, error) {
	backoff := p.cfg.RetryInitialBackoff
	var lastErr error
	for attempt := 1; attempt <= p.cfg.RetryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == p.cfg.RetryMaxAttempts || isContextError(err) {
			break
		}

		p.logger.Warn("retry_attempt",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if backoff > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", lastErr
			case <-timer.C:
			}
		}
		backoff *= 2
		if backoff > p.cfg.RetryMaxBackoff {
			backoff = p.cfg.RetryMaxBackoff
		}
	}
	return "", lastErr
}

func (p *Proposer) newBreaker() *gobreaker.CircuitBreaker[string] {
	cfg := p.cfg
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm-proposer",
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		// A cancelled request says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || isContextError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("circuit_breaker_state_change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// IsCircuitOpen reports whether err came from an open or saturated breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
