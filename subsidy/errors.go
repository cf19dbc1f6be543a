/*
errors.go - Centralized error types for the subsidy engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Collaborating packages (api, ratebook) wrap these with their own context.

ERROR CATEGORIES:
  1. Validation errors - user-correctable input problems, reported with
     every offending field at once so a form can highlight them all
  2. Config errors - a corrupted or incomplete rate table; a setup problem,
     never silently defaulted

The engine raises nothing else: it performs no I/O and has no
transient-failure surface, so there is no retry policy inside the core.

USAGE:
  if errors.Is(err, subsidy.ErrMissingRate) {
      // surface as a rate-table repair condition, not a calculation error
  }

SEE ALSO:
  - validate.go: Produces FieldError lists
  - rates.go: Produces RateError
*/
package subsidy

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input-validation failures.
	ErrValidation = errors.New("invalid input")

	// ErrMissingRate is returned when the rate table lacks an entry for the
	// applicable bedroom size. Never happens against a complete table, but
	// a partially edited or imported table must not be trusted silently.
	ErrMissingRate = errors.New("missing rate for bedroom size")

	// ErrInvalidRateValue is returned when a rate table carries a negative
	// payment standard or FMR.
	ErrInvalidRateValue = errors.New("invalid rate value")
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// ValidationCode classifies one validation failure.
type ValidationCode string

const (
	CodeMissingField             ValidationCode = "missing_field"
	CodeInvalidAmount            ValidationCode = "invalid_amount"
	CodeOutOfRange               ValidationCode = "out_of_range"
	CodeInvalidFamilyComposition ValidationCode = "invalid_family_composition"
)

// FieldError describes one validation failure on one field. Validate
// returns every violation, not just the first, so the presentation layer
// can highlight all bad fields in a single pass.
type FieldError struct {
	Field   string
	Code    ValidationCode
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
}

func (e FieldError) Unwrap() error { return ErrValidation }

// =============================================================================
// CONFIG ERRORS
// =============================================================================

// RateError describes a rate-table problem for a specific bedroom size.
type RateError struct {
	BedroomSize BedroomSize
	Err         error // ErrMissingRate or ErrInvalidRateValue
}

func (e *RateError) Error() string {
	return fmt.Sprintf("rate table: %v for %d-bedroom", e.Err, e.BedroomSize)
}

func (e *RateError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is a user-correctable input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConfig returns true if the error indicates a corrupted or incomplete
// rate table that needs repair before calculations can proceed.
func IsConfig(err error) bool {
	return errors.Is(err, ErrMissingRate) || errors.Is(err, ErrInvalidRateValue)
}
