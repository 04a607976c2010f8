package mqtt

import "fmt"

// Topic prefixes for the VeaHome MQTT namespace.
//
// Hub-scoped topics are rooted at each hub's own topic (normally
// "hubs/{hubId}"), since some hubs are provisioned with a custom root.
// Smart monitor topics use a fixed vendor namespace keyed by the
// monitor's numeric identifier.
const (
	// TopicPrefixHubs is the default root for hub topics.
	TopicPrefixHubs = "hubs"

	// TopicPrefixSmartMonitor is the base for smart monitor direct topics.
	TopicPrefixSmartMonitor = "vealive/smartmonitor"

	// TopicPrefixSystem is the base for Core system topics.
	TopicPrefixSystem = "vealive/system"
)

// Topics provides builders for VeaHome MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	controlTopic := topics.DeviceControl("hubs/hub-1", "dev-9")
//	// Returns: "hubs/hub-1/devices/dev-9/control"
type Topics struct{}

// DefaultHubTopic returns the default topic root for a hub without a
// configured custom topic.
//
// Example: hubs/hub-123
func (Topics) DefaultHubTopic(hubID string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixHubs, hubID)
}

// DeviceControl returns the topic a hub listens on for device commands.
//
// Example: hubs/hub-123/devices/dev-456/control
func (Topics) DeviceControl(hubTopic, deviceID string) string {
	return fmt.Sprintf("%s/devices/%s/control", hubTopic, deviceID)
}

// DeviceLearn returns the topic for putting a hub into signal learning
// mode for a device.
//
// Example: hubs/hub-123/devices/dev-456/learn
func (Topics) DeviceLearn(hubTopic, deviceID string) string {
	return fmt.Sprintf("%s/devices/%s/learn", hubTopic, deviceID)
}

// WifiConfig returns the topic for pushing WiFi credentials to a hub.
//
// Example: hubs/hub-123/wifi/config
func (Topics) WifiConfig(hubTopic string) string {
	return fmt.Sprintf("%s/wifi/config", hubTopic)
}

// SmartMonitorBuzzer returns the buzzer command topic for a smart monitor.
// Smart monitors subscribe directly by their numeric identifier, bypassing
// the hub topic tree.
//
// Example: vealive/smartmonitor/42/command/buzzer
func (Topics) SmartMonitorBuzzer(monitorID string) string {
	return fmt.Sprintf("%s/%s/command/buzzer", TopicPrefixSmartMonitor, monitorID)
}

// SmartMonitorThresholds returns the threshold configuration topic for a
// smart monitor.
//
// Example: vealive/smartmonitor/42/command/thresholds
func (Topics) SmartMonitorThresholds(monitorID string) string {
	return fmt.Sprintf("%s/%s/command/thresholds", TopicPrefixSmartMonitor, monitorID)
}

// SystemStatus returns the Core system status topic (used for LWT and
// online/offline announcements).
//
// Example: vealive/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
