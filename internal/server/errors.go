package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/validation"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a dependency the endpoint needs is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr    *ErrValidation
		unavail   *ErrUnavailable
		bulletErr *validation.Error
	)
	switch {
	case errors.As(err, &reqErr), parsing.IsKind(err, parsing.KindFormat), parsing.IsKind(err, parsing.KindEmpty):
		return http.StatusBadRequest
	case errors.As(err, &bulletErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavail), llm.IsCircuitOpen(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case parsing.IsKind(err, parsing.KindModel):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
