package device

import "errors"

// Sentinel errors for device operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when a device does not exist.
	ErrNotFound = errors.New("device: not found")

	// ErrHubNotFound is returned when a hub does not exist.
	ErrHubNotFound = errors.New("device: hub not found")

	// ErrNoSignalMapping is returned when a device has no learned code
	// for the requested action.
	ErrNoSignalMapping = errors.New("device: no signal mapping for action")

	// ErrInvalidAction is returned when an action name is empty or malformed.
	ErrInvalidAction = errors.New("device: invalid action")
)
