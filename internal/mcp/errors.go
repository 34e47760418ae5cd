package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/laptrack/internal/domain/history"
	"github.com/ganot/laptrack/internal/domain/identity"
)

// APIError represents an MCP error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Identity errors keep
// their fixed user-facing messages.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, history.ErrNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "Session not found."}
	case errors.Is(err, identity.ErrInvalidEmail):
		return &APIError{Code: "INVALID_EMAIL", Message: identity.Message(err)}
	case errors.Is(err, identity.ErrUserDisabled):
		return &APIError{Code: "USER_DISABLED", Message: identity.Message(err)}
	case errors.Is(err, identity.ErrUserNotFound):
		return &APIError{Code: "USER_NOT_FOUND", Message: identity.Message(err)}
	case errors.Is(err, identity.ErrWrongPassword):
		return &APIError{Code: "WRONG_PASSWORD", Message: identity.Message(err)}
	case errors.Is(err, identity.ErrEmailAlreadyInUse):
		return &APIError{Code: "EMAIL_ALREADY_IN_USE", Message: identity.Message(err)}
	case errors.Is(err, identity.ErrWeakPassword):
		return &APIError{Code: "WEAK_PASSWORD", Message: identity.Message(err)}
	default:
		return &APIError{Code: "INTERNAL", Message: identity.Message(err)}
	}
}
