// Package validation enforces the hard constraints on proposed bullet
// rewrites: length, verified-skill whitelist, reword-only, seniority claims,
// banned buzzwords and single-claim bullets.
package validation

import (
	"fmt"
	"strings"
)

// Error reports a rejected bullet together with its violations.
type Error struct {
	Message    string
	Violations []Violation
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Violations) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(Messages(e.Violations), "; "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
