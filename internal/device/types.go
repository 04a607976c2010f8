package device

import "time"

// Device represents a controllable or monitorable entity paired to a hub.
// This matches the database schema in migrations/20250112_000001_initial_schema.up.sql.
type Device struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`

	// Ownership
	HubID  string  `json:"hub_id"`
	HomeID string  `json:"home_id"`
	RoomID *string `json:"room_id,omitempty"`

	// Classification. Type is the device kind ("light", "thermostat", "ac",
	// "smart-monitor", ...); Category groups types for activity reporting
	// ("lighting", "climate", "security", "generic").
	Type     string `json:"type"`
	Category string `json:"category"`

	// Current state
	IsActive bool     `json:"is_active"`
	Value    *float64 `json:"value,omitempty"`
	Unit     *string  `json:"unit,omitempty"`

	// SignalMappings maps logical actions ("ON", "OFF", "TEMP_UP") to the
	// opaque transmit codes the hub learned for this device. Values are
	// usually strings but older hubs stored numbers, so the map is untyped.
	SignalMappings map[string]any `json:"signal_mappings,omitempty"`

	// Metadata holds free-form provisioning data (e.g. smartMonitorId).
	Metadata map[string]any `json:"metadata,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Signal returns the learned transmit code for a logical action, or
// ("", false) when no mapping exists. Numeric codes from older hub
// firmware are stringified.
func (d *Device) Signal(action string) (string, bool) {
	if d.SignalMappings == nil {
		return "", false
	}
	v, ok := d.SignalMappings[action]
	if !ok {
		return "", false
	}
	s, ok := coerceString(v)
	return s, ok
}

// Hub represents a gateway that bridges devices onto the MQTT broker.
type Hub struct {
	ID           string  `json:"id"`
	HomeID       string  `json:"home_id"`
	RoomID       *string `json:"room_id,omitempty"`
	SerialNumber string  `json:"serial_number"`
	Name         string  `json:"name"`

	// Status is the last known connectivity state ("online" or "offline").
	Status string `json:"status"`

	// HubType distinguishes hub hardware generations ("airguard", "irblaster").
	HubType string `json:"hub_type"`

	// MQTTTopic is the hub's topic root when provisioned with a custom one.
	// Empty means the default "hubs/{id}" root applies; use Topic().
	MQTTTopic string `json:"mqtt_topic,omitempty"`

	// WiFi provisioning state
	WifiSSID      string `json:"wifi_ssid,omitempty"`
	WifiConnected bool   `json:"wifi_connected"`

	Metadata map[string]any `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HubStatusOnline is the hub status value indicating broker connectivity.
const HubStatusOnline = "online"

// Topic returns the hub's MQTT topic root, falling back to the default
// "hubs/{id}" when no custom topic was provisioned.
func (h *Hub) Topic() string {
	if h.MQTTTopic != "" {
		return h.MQTTTopic
	}
	return "hubs/" + h.ID
}

// StatePatch is a partial state update. Nil fields are left unchanged.
type StatePatch struct {
	IsActive       *bool          `json:"is_active,omitempty"`
	Value          *float64       `json:"value,omitempty"`
	Unit           *string        `json:"unit,omitempty"`
	SignalMappings map[string]any `json:"signal_mappings,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p StatePatch) IsEmpty() bool {
	return p.IsActive == nil && p.Value == nil && p.Unit == nil && p.SignalMappings == nil
}

// coerceString converts string and JSON-decoded numeric values to a
// string form. Booleans and structured values are rejected.
func coerceString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case float64:
		return formatNumeric(val), true
	case int:
		return formatNumeric(float64(val)), true
	case int64:
		return formatNumeric(float64(val)), true
	default:
		return "", false
	}
}
