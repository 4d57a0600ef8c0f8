package export

import (
	"errors"
	"fmt"
)

// StageError reports a stage failure that aborted an export run.
type StageError struct {
	// Code identifies the error category.
	Code StageErrorCode

	// Stage is the name of the failing stage.
	Stage string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause.
	Err error
}

// StageErrorCode categorizes stage errors.
type StageErrorCode string

const (
	// ErrCodeStorageQuery indicates a storage query failed.
	ErrCodeStorageQuery StageErrorCode = "STORAGE_QUERY"

	// ErrCodeProjection indicates an entity could not be projected.
	ErrCodeProjection StageErrorCode = "PROJECTION"
)

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (stage=%s): %v", e.Code, e.Message, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s (stage=%s)", e.Code, e.Message, e.Stage)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

func newStorageError(stage, what string, err error) *StageError {
	return &StageError{
		Code:    ErrCodeStorageQuery,
		Stage:   stage,
		Message: "query " + what,
		Err:     err,
	}
}

func newProjectionError(stage, key string, err error) *StageError {
	return &StageError{
		Code:    ErrCodeProjection,
		Stage:   stage,
		Message: fmt.Sprintf("project %q", key),
		Err:     err,
	}
}

// IsStorageError returns true if err is a storage query failure.
// Uses errors.As to handle wrapped errors.
func IsStorageError(err error) bool {
	var se *StageError
	if errors.As(err, &se) {
		return se.Code == ErrCodeStorageQuery
	}
	return false
}

// FailedStage returns the name of the stage that produced err, if any.
func FailedStage(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
