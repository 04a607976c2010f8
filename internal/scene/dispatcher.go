package scene

import (
	"context"
	"encoding/json"

	"github.com/vealive/veahome-core/internal/device"
	"github.com/vealive/veahome-core/internal/infrastructure/mqtt"
)

// Publisher is the MQTT surface the dispatcher needs.
type Publisher interface {
	PublishJSON(topic string, payload []byte) error
}

// Logger is the logging surface the scene package needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Dispatcher routes device commands onto MQTT.
//
// Dispatch is fire-and-forget: commands that cannot be delivered (broker
// disconnected, payload rejected) are dropped and logged. Hubs keep no
// command queue, so retrying stale commands would replay outdated state
// after reconnect.
type Dispatcher struct {
	pub    Publisher
	hubs   device.HubGetter
	logger Logger
}

// NewDispatcher creates a command dispatcher.
// The hub getter serves smart monitor ID resolution and may be nil in
// deployments without monitors.
func NewDispatcher(pub Publisher, hubs device.HubGetter, logger Logger) *Dispatcher {
	return &Dispatcher{pub: pub, hubs: hubs, logger: logger}
}

// buzzerPayload is the minimal message smart monitors expect on their
// buzzer topic. Monitors run constrained firmware and parse exactly
// this shape.
type buzzerPayload struct {
	State string `json:"state"`
}

// Dispatch publishes one command for a device.
//
// Routing:
//   - Buzzer actions go directly to the smart monitor's own topic
//     (vealive/smartmonitor/{id}/command/buzzer) with an ON/OFF state
//     payload, bypassing the hub.
//   - Everything else goes to the owning hub's control topic for the
//     device ({hubTopic}/devices/{deviceId}/control) as the full
//     command JSON.
//
// Failures are logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, dev *device.Device, hub *device.Hub, cmd Command) {
	if cmd.Action == ActionBuzzerOn || cmd.Action == ActionBuzzerOff {
		d.dispatchBuzzer(ctx, dev, cmd)
		return
	}
	d.dispatchControl(dev, hub, cmd)
}

// dispatchBuzzer publishes a buzzer state change to the monitor's topic.
func (d *Dispatcher) dispatchBuzzer(ctx context.Context, dev *device.Device, cmd Command) {
	state := "OFF"
	if cmd.Action == ActionBuzzerOn {
		state = "ON"
	}

	payload, err := json.Marshal(buzzerPayload{State: state})
	if err != nil {
		d.logger.Error("marshalling buzzer payload", "device_id", dev.ID, "error", err)
		return
	}

	monitorID := device.ResolveSmartMonitorID(ctx, dev, d.hubs, d.logger)
	topic := mqtt.Topics{}.SmartMonitorBuzzer(monitorID)

	if err := d.pub.PublishJSON(topic, payload); err != nil {
		d.logger.Warn("buzzer command dropped",
			"device_id", dev.ID,
			"monitor_id", monitorID,
			"state", state,
			"error", err,
		)
	}
}

// dispatchControl publishes a command to the hub's control topic.
func (d *Dispatcher) dispatchControl(dev *device.Device, hub *device.Hub, cmd Command) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		d.logger.Error("marshalling command", "device_id", dev.ID, "error", err)
		return
	}

	topic := mqtt.Topics{}.DeviceControl(hub.Topic(), dev.ID)

	if err := d.pub.PublishJSON(topic, payload); err != nil {
		d.logger.Warn("device command dropped",
			"device_id", dev.ID,
			"hub_id", hub.ID,
			"action", cmd.Action,
			"error", err,
		)
	}
}
