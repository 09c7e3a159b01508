// Package rewriting turns a job match into ranked rewrite candidates for
// resume bullets and applies the ones a reviewer approves.
package rewriting

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/types"
)

// TextProposer produces the raw JSON for the two generation steps of a
// bullet rewrite. Implementations may call a model or serve fixtures; the
// output is untrusted and is validated before use.
type TextProposer interface {
	ProposeReasoning(ctx context.Context, req types.ReasoningRequest) (string, error)
	ProposeCandidates(ctx context.Context, req types.CandidateRequest) (string, error)
}

// ProposerError represents a failed or malformed proposal for a bullet.
type ProposerError struct {
	BulletKey string
	Step      string
	Message   string
	Cause     error
}

func (e *ProposerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s proposal for %s: %s: %v", e.Step, e.BulletKey, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s proposal for %s: %s", e.Step, e.BulletKey, e.Message)
}

func (e *ProposerError) Unwrap() error {
	return e.Cause
}
