package scene

import (
	"testing"

	"github.com/vealive/veahome-core/internal/device"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestNormalizeBuzzer(t *testing.T) {
	dev := device.Device{ID: "mon-1", Type: "smart-monitor"}

	n := Normalize(DesiredState{Buzzer: boolPtr(true)}, &dev)
	if n == nil {
		t.Fatal("Normalize() = nil")
	}
	if n.Action != ActionBuzzerOn {
		t.Errorf("action = %q, want BUZZER_ON", n.Action)
	}
	if n.Patch.IsActive == nil || !*n.Patch.IsActive {
		t.Error("patch should mark the monitor active")
	}

	n = Normalize(DesiredState{Buzzer: boolPtr(false)}, &dev)
	if n == nil || n.Action != ActionBuzzerOff {
		t.Errorf("buzzer off: got %+v", n)
	}
}

func TestNormalizeBuzzerPrecedence(t *testing.T) {
	dev := device.Device{ID: "mon-1"}

	// Buzzer wins over isActive and value
	n := Normalize(DesiredState{
		Buzzer:   boolPtr(true),
		IsActive: boolPtr(false),
		Value:    floatPtr(25),
	}, &dev)

	if n == nil || n.Action != ActionBuzzerOn {
		t.Fatalf("expected BUZZER_ON, got %+v", n)
	}
	if n.Value != nil {
		t.Error("buzzer command should not carry a value")
	}
}

func TestNormalizePower(t *testing.T) {
	dev := device.Device{
		ID:   "light-1",
		Type: "light",
		SignalMappings: map[string]any{
			"ON": "0xA90",
		},
	}

	n := Normalize(DesiredState{IsActive: boolPtr(true)}, &dev)
	if n == nil {
		t.Fatal("Normalize() = nil")
	}
	if n.Action != ActionOn {
		t.Errorf("action = %q, want ON", n.Action)
	}
	if n.Signal != "0xA90" {
		t.Errorf("signal = %q, want learned code", n.Signal)
	}

	n = Normalize(DesiredState{IsActive: boolPtr(false)}, &dev)
	if n == nil || n.Action != ActionOff {
		t.Fatalf("power off: got %+v", n)
	}
	if n.Signal != "" {
		t.Errorf("unlearned action should have empty signal, got %q", n.Signal)
	}
}

func TestNormalizePowerWithSetpoint(t *testing.T) {
	dev := device.Device{ID: "ac-1", Type: "ac"}

	n := Normalize(DesiredState{
		IsActive: boolPtr(true),
		Value:    floatPtr(22),
		Unit:     strPtr("C"),
	}, &dev)

	if n == nil || n.Action != ActionOn {
		t.Fatalf("got %+v", n)
	}
	if n.Value == nil || *n.Value != 22 {
		t.Errorf("command value = %v, want 22", n.Value)
	}
	if n.Patch.Value == nil || *n.Patch.Value != 22 {
		t.Errorf("patch value = %v, want 22", n.Patch.Value)
	}
	if n.Patch.Unit == nil || *n.Patch.Unit != "C" {
		t.Errorf("patch unit = %v, want C", n.Patch.Unit)
	}
}

func TestNormalizeSetpoint(t *testing.T) {
	tests := []struct {
		name       string
		deviceType string
		current    *float64
		target     float64
		wantAction string
	}{
		{"thermostat step up", "thermostat", floatPtr(20), 22, ActionTempUp},
		{"thermostat step down", "thermostat", floatPtr(24), 22, ActionTempDown},
		{"ac step up", "ac", floatPtr(18), 25, ActionTempUp},
		{"at target still steps down", "thermostat", floatPtr(22), 22, ActionTempDown},
		{"no current value counts as zero", "thermostat", nil, 22, ActionTempUp},
		{"light carries value with no action", "light", floatPtr(0), 50, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := device.Device{ID: "dev-1", Type: tt.deviceType, Value: tt.current}
			n := Normalize(DesiredState{Value: floatPtr(tt.target)}, &dev)

			if n == nil {
				t.Fatal("Normalize() = nil")
			}
			if n.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", n.Action, tt.wantAction)
			}
			if n.Patch.Value == nil || *n.Patch.Value != tt.target {
				t.Errorf("patch value = %v, want %v", n.Patch.Value, tt.target)
			}
			if n.Value == nil || *n.Value != tt.target {
				t.Errorf("command value = %v, want %v", n.Value, tt.target)
			}
		})
	}
}

func TestNormalizeEmptyState(t *testing.T) {
	dev := device.Device{ID: "dev-1", Type: "light"}
	if n := Normalize(DesiredState{}, &dev); n != nil {
		t.Errorf("empty state should normalize to nil, got %+v", n)
	}
}
