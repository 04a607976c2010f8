package schedule

import (
	"fmt"
	"regexp"
	"strings"
)

// timePattern accepts "HH:MM" with an optional seconds suffix, which
// rows written by older app versions carry.
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)

var weekdayNames = map[string]struct{}{
	"monday":    {},
	"tuesday":   {},
	"wednesday": {},
	"thursday":  {},
	"friday":    {},
	"saturday":  {},
	"sunday":    {},
}

// Validate checks that a schedule is internally consistent.
//
// Returns:
//   - error: Wrapped ErrInvalidSchedule describing the first problem
//     found, or nil.
func (s *Schedule) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSchedule)
	}
	if s.HomeID == "" {
		return fmt.Errorf("%w: missing home id", ErrInvalidSchedule)
	}
	if !timePattern.MatchString(s.Time) {
		return fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidSchedule, s.Time)
	}

	for _, day := range s.Days {
		if _, ok := weekdayNames[strings.ToLower(day)]; !ok {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, day)
		}
	}
	return nil
}
