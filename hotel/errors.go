/*
errors.go - Centralized error types for the hotel domain

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch with errors.Is / errors.As; packages above (action, api)
  wrap these with their own context.

ERROR CATEGORIES:
  1. Storage errors - Raised by a Gateway implementation
  2. Domain errors - Raised by repositories (uniqueness, missing entities)
  3. Validation errors - Syntactic checks on entities and inputs

PROPAGATION:
  Repositories convert storage errors to domain errors when the meaning is
  clear (a unique violation on floor insert becomes ErrFloorAlreadyExists).
  Anything else surfaces as-is, still matching the storage sentinel.

SEE ALSO:
  - store.go: Gateway contract that returns the storage errors
  - action/engine.go: ActionError wraps failures during redo/undo
  - api/controller.go: ControllerError for cross-cutting preconditions
*/
package hotel

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// STORAGE ERRORS - Returned by Gateway implementations
// =============================================================================

var (
	// ErrIntegrity is returned when a write violates a unique or foreign key constraint.
	ErrIntegrity = errors.New("storage integrity violation")

	// ErrUnavailable is returned when the store cannot be reached or is corrupt.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned when an update or delete targets a missing row.
	ErrNotFound = errors.New("row not found")
)

// =============================================================================
// DOMAIN ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrFloorNotFound      = errors.New("floor not found")
	ErrFloorAlreadyExists = errors.New("floor already exists")

	// ErrFloorNotEmpty is returned when removing a floor that still owns elements.
	// Cascading is done by the caller.
	ErrFloorNotEmpty = errors.New("floor still has elements")

	ErrElementNotFound = errors.New("element not found")

	// ErrNotARoom is returned when a room-only operation targets a hallway or staircase.
	ErrNotARoom = errors.New("element is not a room")

	// ErrPositionOccupied is returned when a grid cell already holds an element.
	ErrPositionOccupied = errors.New("position occupied")

	ErrReservationNotFound      = errors.New("reservation not found")
	ErrReservationAlreadyExists = errors.New("reservation already exists")

	// ErrValidation is the sentinel behind every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError lists every violation found, not just the first.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError returns nil when there are no problems.
func NewValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// PositionOccupiedError names the cell and its current occupant.
type PositionOccupiedError struct {
	FloorID  FloorID
	Position Position
	Occupant ElementID
}

func (e *PositionOccupiedError) Error() string {
	return fmt.Sprintf("position %s on floor %d is occupied by element %d",
		e.Position, e.FloorID, e.Occupant)
}

func (e *PositionOccupiedError) Unwrap() error {
	return ErrPositionOccupied
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity or row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFloorNotFound) ||
		errors.Is(err, ErrElementNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error is a uniqueness or occupancy conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrFloorAlreadyExists) ||
		errors.Is(err, ErrReservationAlreadyExists) ||
		errors.Is(err, ErrPositionOccupied) ||
		errors.Is(err, ErrIntegrity)
}
