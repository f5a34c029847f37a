package standings

import (
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

// Sentinels for errors.Is; the concrete error types carry the details.
var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrConsistency = errors.New("standings consistency violation")
)

// ValidationError reports malformed input. The operation must be rejected
// before any recomputation runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports a mutation that would break an invariant.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ConsistencyError means stored aggregates differ from a fresh recomputation.
// It indicates a defect and is never corrected silently.
type ConsistencyError struct {
	TeamID   int
	Stored   models.TeamAggregates
	Expected models.TeamAggregates
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("team %d aggregates %+v do not match recomputed %+v", e.TeamID, e.Stored, e.Expected)
}

func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}
