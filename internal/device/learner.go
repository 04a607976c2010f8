package device

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vealive/veahome-core/internal/infrastructure/mqtt"
)

// Publisher is the MQTT surface the learner needs.
type Publisher interface {
	PublishJSON(topic string, payload []byte) error
}

// learnerLogger is the logging surface the learner needs.
type learnerLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Learner puts hubs into signal learning mode and records the captured
// code against the device.
//
// Hubs do not currently report the captured code back over MQTT, so the
// stored mapping is a synthesized placeholder until firmware gains a
// capture-report message. The placeholder is still unique per action
// and attempt, so re-learning replaces cleanly.
type Learner struct {
	devices Repository
	pub     Publisher
	logger  learnerLogger

	// now is injectable for deterministic placeholder codes in tests.
	now func() time.Time
}

// NewLearner creates a signal learner.
func NewLearner(devices Repository, pub Publisher, logger learnerLogger) *Learner {
	return &Learner{
		devices: devices,
		pub:     pub,
		logger:  logger,
		now:     time.Now,
	}
}

// learnRequest is the MQTT payload that switches a hub into learn mode.
type learnRequest struct {
	Action string `json:"action"`
	Mode   string `json:"mode"`
}

// LearnSignal starts a learning session for one device action.
//
// It publishes a learn-mode request to the hub, synthesizes a
// placeholder signal code, and persists it into the device's signal
// mappings.
//
// Parameters:
//   - ctx: Context for persistence operations
//   - deviceID: The device to learn a code for
//   - action: The logical action name (e.g. "ON", "TEMP_UP")
//
// Returns:
//   - string: The stored signal code
//   - error: If the device is unknown, the action is empty, or
//     persistence fails. Publish failures are logged, not returned:
//     the hub may pick up learn mode on reconnect.
func (l *Learner) LearnSignal(ctx context.Context, deviceID, action string) (string, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return "", ErrInvalidAction
	}

	dev, hub, err := l.devices.GetWithHub(ctx, deviceID)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(learnRequest{Action: action, Mode: "learn"})
	if err != nil {
		return "", fmt.Errorf("marshalling learn request: %w", err)
	}

	topic := mqtt.Topics{}.DeviceLearn(hub.Topic(), dev.ID)
	if err := l.pub.PublishJSON(topic, payload); err != nil {
		l.logger.Warn("learn mode publish failed",
			"device_id", dev.ID,
			"hub_id", hub.ID,
			"action", action,
			"error", err,
		)
	}

	signal := fmt.Sprintf("SIGNAL_%s_%d", action, l.now().UnixMilli())

	mappings := make(map[string]any, len(dev.SignalMappings)+1)
	for k, v := range dev.SignalMappings {
		mappings[k] = v
	}
	mappings[action] = signal

	if err := l.devices.UpdateState(ctx, dev.ID, StatePatch{SignalMappings: mappings}); err != nil {
		return "", fmt.Errorf("persisting learned signal: %w", err)
	}

	l.logger.Info("signal learned",
		"device_id", dev.ID,
		"action", action,
		"signal", signal,
	)
	return signal, nil
}
