package device

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vealive/veahome-core/internal/infrastructure/mqtt"
)

// Provisioner pushes configuration to hubs and smart monitors over MQTT.
type Provisioner struct {
	hubs   HubRepository
	pub    Publisher
	logger learnerLogger
}

// NewProvisioner creates a hub provisioner.
func NewProvisioner(hubs HubRepository, pub Publisher, logger learnerLogger) *Provisioner {
	return &Provisioner{hubs: hubs, pub: pub, logger: logger}
}

// WifiCredentials are the network settings pushed to a hub.
type WifiCredentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// SendWifiConfig publishes WiFi credentials to a hub's config topic.
// The hub applies them and reconnects on the new network; connectivity
// status arrives later through its status topic.
//
// Parameters:
//   - ctx: Context for the hub lookup
//   - hubID: The hub to configure
//   - creds: Network credentials to apply
//
// Returns:
//   - error: If the hub is unknown, the SSID is empty, or publish fails
func (p *Provisioner) SendWifiConfig(ctx context.Context, hubID string, creds WifiCredentials) error {
	if creds.SSID == "" {
		return fmt.Errorf("wifi config for hub %s: ssid is required", hubID)
	}

	hub, err := p.hubs.GetByID(ctx, hubID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshalling wifi config: %w", err)
	}

	topic := mqtt.Topics{}.WifiConfig(hub.Topic())
	if err := p.pub.PublishJSON(topic, payload); err != nil {
		return fmt.Errorf("publishing wifi config to hub %s: %w", hubID, err)
	}

	p.logger.Info("wifi config sent", "hub_id", hubID, "ssid", creds.SSID)
	return nil
}

// Thresholds are the alert limits a smart monitor enforces locally.
// Nil fields leave the monitor's current setting unchanged. Field names
// match the keys the monitor firmware reads from the payload.
type Thresholds struct {
	TempMin  *int `json:"tempMin,omitempty"`
	TempMax  *int `json:"tempMax,omitempty"`
	HumMin   *int `json:"humMin,omitempty"`
	HumMax   *int `json:"humMax,omitempty"`
	DustHigh *int `json:"dustHigh,omitempty"`
	MQ2High  *int `json:"mq2High,omitempty"`
}

// SendThresholds publishes alert thresholds to a smart monitor.
//
// The monitor is addressed by its resolved numeric identifier, the same
// resolution used for buzzer commands.
//
// Parameters:
//   - ctx: Context for hub lookups during ID resolution
//   - dev: The smart monitor device
//   - thresholds: Limits to apply (nil fields are omitted)
//
// Returns:
//   - error: If publish fails
func (p *Provisioner) SendThresholds(ctx context.Context, dev *Device, thresholds Thresholds) error {
	payload, err := json.Marshal(thresholds)
	if err != nil {
		return fmt.Errorf("marshalling thresholds: %w", err)
	}

	monitorID := ResolveSmartMonitorID(ctx, dev, p.hubs, p.logger)
	topic := mqtt.Topics{}.SmartMonitorThresholds(monitorID)
	if err := p.pub.PublishJSON(topic, payload); err != nil {
		return fmt.Errorf("publishing thresholds to monitor %s: %w", monitorID, err)
	}

	p.logger.Info("thresholds sent", "device_id", dev.ID, "monitor_id", monitorID)
	return nil
}
