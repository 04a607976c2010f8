package schedule

import "errors"

// Sentinel errors for schedule operations.
var (
	// ErrNotFound is returned when a schedule does not exist.
	ErrNotFound = errors.New("schedule: not found")

	// ErrInvalidSchedule is returned when a schedule definition fails
	// validation. The wrapped message names the offending field.
	ErrInvalidSchedule = errors.New("schedule: invalid definition")

	// ErrUnknownActionType is returned when a schedule action has an
	// unrecognized type.
	ErrUnknownActionType = errors.New("schedule: unknown action type")
)
