package scene

import "time"

// Scope determines which part of the home a scene targets.
type Scope string

// Scene scopes.
const (
	// ScopeHome targets every device in the home.
	ScopeHome Scope = "home"

	// ScopeRooms restricts the scene to the rooms listed in RoomIDs.
	ScopeRooms Scope = "rooms"
)

// RuleMode determines how a device type rule selects devices.
type RuleMode string

// Rule modes.
const (
	// ModeAll applies the rule to every device of the rule's type.
	ModeAll RuleMode = "all"

	// ModeSpecific applies the rule only to the listed device IDs.
	ModeSpecific RuleMode = "specific"
)

// Command sources, recorded on dispatched commands and activities.
const (
	SourceScene    = "scene"
	SourceManual   = "manual"
	SourceSchedule = "schedule"
)

// Scene is a named preset of device states.
//
// Modern scenes carry Rules; scenes created before rules shipped carry
// a DeviceStates map keyed by device ID. When Rules is non-empty it
// takes precedence and DeviceStates is ignored.
type Scene struct {
	ID          string `json:"id"`
	HomeID      string `json:"home_id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`

	// Scope and RoomIDs bound the candidate device set before rules run.
	// An empty RoomIDs list under ScopeRooms falls back to the whole
	// home; installed scenes rely on this.
	Scope   Scope    `json:"scope"`
	RoomIDs []string `json:"room_ids,omitempty"`

	Rules        []DeviceTypeRule        `json:"rules,omitempty"`
	DeviceStates map[string]DesiredState `json:"device_states,omitempty"`

	// IsActive marks the single active scene per home.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeviceTypeRule applies one desired state to devices of a given type.
type DeviceTypeRule struct {
	// DeviceType matches Device.Type ("light", "thermostat", "ac", ...).
	DeviceType string `json:"device_type"`

	// Mode selects all devices of the type or only the listed ones.
	Mode RuleMode `json:"mode"`

	// DeviceIDs narrows the rule under ModeSpecific. Ignored under ModeAll.
	DeviceIDs []string `json:"device_ids,omitempty"`

	State DesiredState `json:"state"`
}

// DesiredState is the target state a scene or caller requests for one
// device. Nil fields are not part of the request.
//
// Precedence when building commands: Buzzer, then IsActive, then Value.
type DesiredState struct {
	IsActive *bool    `json:"is_active,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	Unit     *string  `json:"unit,omitempty"`

	// Buzzer rings or silences a smart monitor's built-in buzzer.
	Buzzer *bool `json:"buzzer,omitempty"`
}

// IsEmpty reports whether the desired state requests nothing.
func (s DesiredState) IsEmpty() bool {
	return s.IsActive == nil && s.Value == nil && s.Unit == nil && s.Buzzer == nil
}

// Command is the message published to a hub for one device.
type Command struct {
	// ID correlates the command across logs and hub acknowledgements.
	ID string `json:"id"`

	DeviceID string `json:"deviceId"`

	// Action is the logical operation ("ON", "OFF", "TEMP_UP",
	// "BUZZER_ON"). Empty for bare value updates.
	Action string `json:"action,omitempty"`

	// Signal is the learned transmit code for the action, when the
	// device has one. Hubs fall back to built-in codes otherwise.
	Signal string `json:"signal,omitempty"`

	Value *float64 `json:"value,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	SceneID   string    `json:"sceneId,omitempty"`
}
