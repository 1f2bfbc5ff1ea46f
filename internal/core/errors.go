// Package core holds the error taxonomy and shared primitives used across
// every generation, fingerprint and evaluation package.
package core

import "fmt"

// Kind classifies an Error into one of the fixed categories the
// orchestrator and REST layer branch on.
type Kind string

const (
	KindConfig               Kind = "config"
	KindDataDependency       Kind = "data_dependency"
	KindDiskExhausted        Kind = "disk_exhausted"
	KindPrivacyBudgetExhaust Kind = "privacy_budget_exhausted"
	KindInsufficientData     Kind = "insufficient_data"
	KindInvalidFormat        Kind = "invalid_format"
	KindCancelled            Kind = "cancelled"
	KindIo                   Kind = "io"
	KindBypassOfControl      Kind = "bypass_of_control"
)

// Error is the common error type returned by every package in this module.
// Callers should use errors.As to recover Kind-specific fields.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// DiskExhaustedError carries the byte counts the orchestrator's disk guard
// observed when it aborted a run.
type DiskExhaustedError struct {
	Available int64
	Required  int64
}

func (e *DiskExhaustedError) Error() string {
	return fmt.Sprintf("disk_exhausted: available=%d required=%d", e.Available, e.Required)
}

func NewDiskExhausted(available, required int64) error {
	return Wrap(KindDiskExhausted, "insufficient disk space", &DiskExhaustedError{Available: available, Required: required})
}

// PrivacyBudgetExhaustedError carries the epsilon accounting at the point
// the differential-privacy engine refused a further perturbation.
type PrivacyBudgetExhaustedError struct {
	Spent float64
	Limit float64
}

func (e *PrivacyBudgetExhaustedError) Error() string {
	return fmt.Sprintf("privacy_budget_exhausted: spent=%.4f limit=%.4f", e.Spent, e.Limit)
}

func NewPrivacyBudgetExhausted(spent, limit float64) error {
	return Wrap(KindPrivacyBudgetExhaust, "differential privacy epsilon budget exhausted",
		&PrivacyBudgetExhaustedError{Spent: spent, Limit: limit})
}

// InsufficientDataError carries the row counts an evaluation check needed
// versus what the dataset actually had.
type InsufficientDataError struct {
	Required int
	Actual   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient_data: required=%d actual=%d", e.Required, e.Actual)
}

func NewInsufficientData(required, actual int) error {
	return Wrap(KindInsufficientData, "insufficient data for check",
		&InsufficientDataError{Required: required, Actual: actual})
}

var (
	ErrCancelled       = New(KindCancelled, "run cancelled")
	ErrBypassOfControl = New(KindBypassOfControl, "posting bypassed control account coupler")
	ErrInvalidFormat   = New(KindInvalidFormat, "invalid format")
)
