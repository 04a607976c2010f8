package scene

import "fmt"

// Validate checks a scene definition for structural errors.
//
// It is called before activation so a hand-edited or corrupted row
// fails loudly instead of silently targeting nothing.
//
// Returns:
//   - error: ErrInvalidScene wrapped with details, or nil if valid
func (s *Scene) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidScene)
	}
	if s.HomeID == "" {
		return fmt.Errorf("%w: missing home id", ErrInvalidScene)
	}

	switch s.Scope {
	case ScopeHome, ScopeRooms:
	case "":
		// Legacy rows predate the scope column; they behave as home-wide.
	default:
		return fmt.Errorf("%w: unknown scope %q", ErrInvalidScene, s.Scope)
	}

	for i, rule := range s.Rules {
		if rule.DeviceType == "" {
			return fmt.Errorf("%w: rule %d missing device type", ErrInvalidScene, i)
		}
		switch rule.Mode {
		case ModeAll, ModeSpecific:
		default:
			return fmt.Errorf("%w: rule %d has unknown mode %q", ErrInvalidScene, i, rule.Mode)
		}
		if rule.Mode == ModeSpecific && len(rule.DeviceIDs) == 0 {
			return fmt.Errorf("%w: rule %d is specific but lists no devices", ErrInvalidScene, i)
		}
	}

	return nil
}
