package parsing

import (
	"errors"
	"fmt"
)

// Kind classifies why a job posting or job-skills document was rejected.
type Kind int

const (
	// KindModel means the model call itself failed.
	KindModel Kind = iota + 1
	// KindFormat means the input could not be decoded.
	KindFormat
	// KindEmpty means the input decoded but held nothing usable.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindFormat:
		return "format"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Error is returned by every parsing entry point.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("job skills %s error: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("job skills %s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err wraps a parsing Error of kind k.
func IsKind(err error, k Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == k
}

func formatError(message string, cause error) *Error {
	return &Error{Kind: KindFormat, Message: message, Cause: cause}
}
