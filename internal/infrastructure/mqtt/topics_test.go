package mqtt

import "testing"

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"default hub topic", topics.DefaultHubTopic("hub-1"), "hubs/hub-1"},
		{"device control", topics.DeviceControl("hubs/hub-1", "dev-9"), "hubs/hub-1/devices/dev-9/control"},
		{"device control custom root", topics.DeviceControl("custom/root", "dev-9"), "custom/root/devices/dev-9/control"},
		{"device learn", topics.DeviceLearn("hubs/hub-1", "dev-9"), "hubs/hub-1/devices/dev-9/learn"},
		{"wifi config", topics.WifiConfig("hubs/hub-1"), "hubs/hub-1/wifi/config"},
		{"smart monitor buzzer", topics.SmartMonitorBuzzer("42"), "vealive/smartmonitor/42/command/buzzer"},
		{"smart monitor thresholds", topics.SmartMonitorThresholds("42"), "vealive/smartmonitor/42/command/thresholds"},
		{"system status", topics.SystemStatus(), "vealive/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPublishValidation(t *testing.T) {
	c := &Client{}

	if err := c.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("a/b", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("qos 3: got %v, want ErrInvalidQoS", err)
	}
}
