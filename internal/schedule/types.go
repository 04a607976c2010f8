package schedule

import (
	"strings"
	"time"

	"github.com/vealive/veahome-core/internal/scene"
)

// ActionType distinguishes what a schedule action triggers.
type ActionType string

// Schedule action types.
const (
	// ActionScene activates a scene.
	ActionScene ActionType = "scene"

	// ActionDevice applies a desired state to one device.
	ActionDevice ActionType = "device"
)

// Schedule fires a list of actions at a wall-clock time on selected days.
type Schedule struct {
	ID     string `json:"id"`
	HomeID string `json:"home_id"`
	Name   string `json:"name"`

	// Time is the firing time as "HH:MM". Rows written by older app
	// versions carry "HH:MM:SS"; matching is by minute prefix.
	Time string `json:"time"`

	// Days lists lowercase weekday names ("monday", ...). A schedule
	// with no days never fires.
	Days []string `json:"days,omitempty"`

	Actions []Action `json:"actions"`
	Enabled bool     `json:"enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Action is one step of a schedule, executed in list order.
type Action struct {
	Type ActionType `json:"type"`

	// SceneID is set for ActionScene.
	SceneID string `json:"scene_id,omitempty"`

	// DeviceID and State are set for ActionDevice.
	DeviceID string             `json:"device_id,omitempty"`
	State    scene.DesiredState `json:"state,omitempty"`
}

// MatchesAt reports whether the schedule should fire at the given time.
//
/// The stored time matches by "HH:MM" prefix so second-resolution rows
// still fire, and day names compare case-insensitively against the
// time's weekday. A schedule whose day list does not contain today,
// including an empty list, does not fire.
func (s *Schedule) MatchesAt(t time.Time) bool {
	hhmm := t.Format("15:04")
	if !strings.HasPrefix(s.Time, hhmm) {
		return false
	}

	day := strings.ToLower(t.Weekday().String())
	for _, d := range s.Days {
		if strings.ToLower(d) == day {
			return true
		}
	}
	return false
}
