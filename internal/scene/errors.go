package scene

import "errors"

// Sentinel errors for scene operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when a scene does not exist.
	ErrNotFound = errors.New("scene: not found")

	// ErrWrongHome is returned when a scene belongs to a different home
	// than the activation request.
	ErrWrongHome = errors.New("scene: does not belong to home")

	// ErrInvalidScene is returned when a scene fails validation.
	ErrInvalidScene = errors.New("scene: invalid definition")

	// ErrEmptyState is returned when a device control request carries
	// no state changes.
	ErrEmptyState = errors.New("scene: desired state is empty")
)
