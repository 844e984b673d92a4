// Package apperrors defines the error taxonomy surfaced to clients and the
// translation of raw Supabase failures into it. Validation errors never
// reach the backend; backend errors keep the underlying message attached
// for diagnostics.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrDuplicateAccount       = errors.New("an account with this email already exists")
	ErrRateLimited            = errors.New("too many attempts, please wait before trying again")
	ErrProfileMissing         = errors.New("authenticated identity has no profile")
	ErrQuantityExceedsLimit   = errors.New("requested quantity exceeds the per-customer limit")
	ErrEmptySelection         = errors.New("no tickets selected")
	ErrInvalidPromoCode       = errors.New("invalid promo code")
	ErrTransferNotAllowed     = errors.New("ticket is not transferable")
	ErrEventNotFound          = errors.New("event not found")
	ErrValidation             = errors.New("validation failed")
	ErrBackend                = errors.New("backend request failed")
)

// Validation tags a local input or state check that failed before any
// backend call; it surfaces as a 400, never a 500.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Backend wraps a transport or backend failure, preserving the underlying
// message behind the generic kind.
func Backend(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}

// Translate maps raw GoTrue/PostgREST error messages onto the taxonomy
// where a specific mapping exists. Anything unrecognised becomes a generic
// backend error.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already registered"),
		strings.Contains(msg, "already exists"),
		strings.Contains(msg, "unique constraint"):
		return ErrDuplicateAccount
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"):
		return ErrRateLimited
	case strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid grant"):
		return ErrInvalidCredentials
	}
	return Backend(err)
}

// Status maps a taxonomy error to the HTTP status it is reported with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrAuthenticationRequired), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrProfileMissing), errors.Is(err, ErrTransferNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrQuantityExceedsLimit),
		errors.Is(err, ErrEmptySelection),
		errors.Is(err, ErrInvalidPromoCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
