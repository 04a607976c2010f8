package scene

import (
	"github.com/vealive/veahome-core/internal/device"
)

// Logical command actions understood by hubs.
const (
	ActionOn        = "ON"
	ActionOff       = "OFF"
	ActionTempUp    = "TEMP_UP"
	ActionTempDown  = "TEMP_DOWN"
	ActionBuzzerOn  = "BUZZER_ON"
	ActionBuzzerOff = "BUZZER_OFF"
)

// Normalized is the outcome of reconciling a desired state against a
// device: the state patch to persist and the command to transmit.
type Normalized struct {
	// Patch is applied to the device row unconditionally, even when
	// the device already reports the target state. Hubs are lossy, so
	// re-asserting state is safer than skipping it.
	Patch device.StatePatch

	// Action is the logical command; Signal is the learned transmit
	// code when the device has one for the action.
	Action string
	Signal string

	// Value accompanies the command for devices that accept a setpoint.
	Value *float64
}

// Normalize reconciles a desired state against a device and produces
// the update to apply, or nil when the request sets no field.
//
// Field precedence:
//  1. Buzzer: rings or silences the monitor; IsActive and Value are
//     ignored when Buzzer is set.
//  2. IsActive: switches the device on or off, carrying Value along as
//     a setpoint when present.
//  3. Value alone: for thermostats and ACs this becomes a TEMP_UP or
//     TEMP_DOWN step relative to the device's current value; other
//     device types carry the value with no action, leaving the hub to
//     interpret it.
//
// Returns:
//   - *Normalized: The patch and command, or nil when no field is set
func Normalize(state DesiredState, dev *device.Device) *Normalized {
	if state.Buzzer != nil {
		return normalizeBuzzer(*state.Buzzer, dev)
	}
	if state.IsActive != nil {
		return normalizePower(state, dev)
	}
	if state.Value != nil {
		return normalizeSetpoint(state, dev)
	}
	return nil
}

// normalizeBuzzer builds a buzzer ring/silence update.
func normalizeBuzzer(on bool, dev *device.Device) *Normalized {
	action := ActionBuzzerOff
	if on {
		action = ActionBuzzerOn
	}

	n := &Normalized{
		Patch:  device.StatePatch{IsActive: boolPtr(on)},
		Action: action,
	}
	n.Signal, _ = dev.Signal(action)
	return n
}

// normalizePower builds an on/off update, carrying a setpoint if given.
func normalizePower(state DesiredState, dev *device.Device) *Normalized {
	action := ActionOff
	if *state.IsActive {
		action = ActionOn
	}

	n := &Normalized{
		Patch: device.StatePatch{
			IsActive: state.IsActive,
			Value:    state.Value,
			Unit:     state.Unit,
		},
		Action: action,
		Value:  state.Value,
	}
	n.Signal, _ = dev.Signal(action)
	return n
}

// normalizeSetpoint builds a value update. Thermostats and ACs step
// toward the target; other types carry the raw value with no action.
func normalizeSetpoint(state DesiredState, dev *device.Device) *Normalized {
	n := &Normalized{
		Patch: device.StatePatch{
			Value: state.Value,
			Unit:  state.Unit,
		},
		Value: state.Value,
	}
	if !hasSetpoint(dev.Type) {
		return n
	}

	current := 0.0
	if dev.Value != nil {
		current = *dev.Value
	}
	if *state.Value > current {
		n.Action = ActionTempUp
	} else {
		n.Action = ActionTempDown
	}
	n.Signal, _ = dev.Signal(n.Action)
	return n
}

// hasSetpoint reports whether a device type accepts bare value updates.
func hasSetpoint(deviceType string) bool {
	return deviceType == "thermostat" || deviceType == "ac"
}

func boolPtr(b bool) *bool {
	return &b
}
