package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrUnitNotFound    = errors.New("unit not found")
	ErrListingNotFound = errors.New("listing not found")
)

// ListingConflictError is returned when a unit already has a listing.
type ListingConflictError struct {
	UnitID    string
	ListingID string
}

func (e *ListingConflictError) Error() string {
	return fmt.Sprintf("unit %q already has listing %q", e.UnitID, e.ListingID)
}

// ActiveLeaseError is returned when an operation would make a unit with an
// active lease visible on the marketplace.
type ActiveLeaseError struct {
	UnitID  string
	LeaseID string
}

func (e *ActiveLeaseError) Error() string {
	return fmt.Sprintf("unit %q has an active lease (%s)", e.UnitID, e.LeaseID)
}

// TransitionError is returned when a status transition is not allowed.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition from %q to %q is not allowed", e.From, e.To)
}

// ValidationError is returned when caller input fails a domain rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrorType tags a classified error. Matched by tag, never by runtime type.
type ErrorType string

const (
	ErrValidation      ErrorType = "validation"
	ErrPermission      ErrorType = "permission"
	ErrNotFound        ErrorType = "not_found"
	ErrConflict        ErrorType = "conflict"
	ErrDatabase        ErrorType = "database"
	ErrNetwork         ErrorType = "network"
	ErrRateLimit       ErrorType = "rate_limit"
	ErrExternalService ErrorType = "external_service"
	ErrUnknown         ErrorType = "unknown"
)

// Severity grades how alarming a classified error is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error is the normalized form every failure is reduced to before it
// crosses the service boundary. It is a value-style tagged error: callers
// switch on Type rather than inspecting concrete error types.
type Error struct {
	Type      ErrorType
	Severity  Severity
	Code      string
	Message   string
	Retryable bool
	Details   string
	Timestamp time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the error type to the status class the transport layer renders.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case ErrValidation:
		return 400
	case ErrPermission:
		return 403
	case ErrNotFound:
		return 404
	case ErrConflict:
		return 409
	case ErrRateLimit:
		return 429
	case ErrNetwork, ErrExternalService:
		return 502
	case ErrDatabase:
		return 503
	default:
		return 500
	}
}

// newError builds a classified error stamped with the current time.
func newError(t ErrorType, sev Severity, code, message string, retryable bool, details string) *Error {
	return &Error{
		Type:      t,
		Severity:  sev,
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// Classify normalizes an arbitrary failure into an *Error. Already
// classified errors pass through unchanged so classification is idempotent.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, ErrUnitNotFound),
		errors.Is(err, ErrListingNotFound),
		errors.Is(err, sql.ErrNoRows):
		return newError(ErrNotFound, SeverityLow, "NOT_FOUND",
			"The requested resource was not found.", false, err.Error())
	}

	var conflict *ListingConflictError
	var lease *ActiveLeaseError
	var transition *TransitionError
	var validation *ValidationError
	switch {
	case errors.As(err, &conflict), errors.As(err, &lease):
		return newError(ErrConflict, SeverityMedium, "CONFLICT",
			"The operation conflicts with the current state.", false, err.Error())
	case errors.As(err, &transition):
		return newError(ErrConflict, SeverityMedium, "INVALID_TRANSITION",
			"The requested status change is not allowed.", false, err.Error())
	case errors.As(err, &validation):
		return newError(ErrValidation, SeverityLow, "INVALID_INPUT",
			"The request contains invalid data.", false, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return newError(ErrNetwork, SeverityHigh, "NETWORK_ERROR",
			"A network failure occurred. Please try again.", true, err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrNetwork, SeverityHigh, "TIMEOUT",
			"The operation timed out. Please try again.", true, err.Error())
	}

	if isDatabaseError(err) {
		return newError(ErrDatabase, SeverityHigh, "DATABASE_ERROR",
			"A storage failure occurred. Please try again.", true, err.Error())
	}

	return newError(ErrUnknown, SeverityMedium, "UNKNOWN_ERROR",
		"An unexpected error occurred.", false, err.Error())
}

// isDatabaseError sniffs driver-level failures that arrive as plain strings.
func isDatabaseError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"SQLITE_", "database is locked", "constraint failed", "sql:"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
