package device

import (
	"context"
	"regexp"
	"strconv"
)

// Smart monitors subscribe to their MQTT command topics by a numeric
// identifier assigned at manufacture, not by the device ID Core assigns
// at pairing. Provisioning has been inconsistent across firmware
// generations, so the identifier may live in device metadata, in the
// signal mappings blob, encoded in the serial number, or be the device
// ID itself. Resolution tries each known location in order.

// monitorRecord carries the fields the ID resolvers inspect. It is
// built from either a device or its hub projection, so the same chain
// serves both.
type monitorRecord struct {
	ID             string
	HubID          string
	SerialNumber   string
	Metadata       map[string]any
	SignalMappings map[string]any
}

// recordFromDevice builds a monitorRecord from a paired device.
// The serial number, when present, is provisioned into metadata.
func recordFromDevice(d *Device) monitorRecord {
	rec := monitorRecord{
		ID:             d.ID,
		HubID:          d.HubID,
		Metadata:       d.Metadata,
		SignalMappings: d.SignalMappings,
	}
	if s, ok := coerceString(metadataValue(d.Metadata, "serialNumber")); ok {
		rec.SerialNumber = s
	}
	return rec
}

// recordFromHub builds a monitorRecord from a hub acting as its own
// monitor device.
func recordFromHub(h *Hub) monitorRecord {
	return monitorRecord{
		ID:           h.ID,
		HubID:        h.ID,
		SerialNumber: h.SerialNumber,
		Metadata:     h.Metadata,
	}
}

// idResolver attempts to extract the numeric monitor ID from one
// location. Resolvers are pure: same record in, same result out.
type idResolver func(rec monitorRecord) (string, bool)

// monitorIDChain lists the resolvers in precedence order. Earlier
// entries win; the order is contractual because real installations
// carry conflicting identifiers in different locations.
var monitorIDChain = []idResolver{
	resolveFromMetadata,
	resolveFromSignalMappings,
	resolveFromSerialNumber,
	resolveFromNumericID,
}

// resolveChain runs the resolvers in order and returns the first match.
func resolveChain(rec monitorRecord) (string, bool) {
	for _, resolve := range monitorIDChain {
		if id, ok := resolve(rec); ok {
			return id, true
		}
	}
	return "", false
}

// metadataIDKeys are the accepted metadata key spellings, in order.
// Both casings shipped in different provisioning app versions.
var metadataIDKeys = []string{"smartMonitorId", "smartmonitorId"}

// resolveFromMetadata reads the monitor ID from device metadata.
func resolveFromMetadata(rec monitorRecord) (string, bool) {
	for _, key := range metadataIDKeys {
		if id, ok := coerceString(metadataValue(rec.Metadata, key)); ok {
			return id, true
		}
	}
	return "", false
}

// resolveFromSignalMappings reads the monitor ID stashed under the
// signal mappings blob, where some firmware versions wrote it.
func resolveFromSignalMappings(rec monitorRecord) (string, bool) {
	for _, key := range metadataIDKeys {
		if id, ok := coerceString(metadataValue(rec.SignalMappings, key)); ok {
			return id, true
		}
	}
	return "", false
}

// serialNumberPattern extracts the numeric portion of serial numbers
// like "SM-0042", "sm_7" or "SM123".
var serialNumberPattern = regexp.MustCompile(`(?i)SM[-_]?(\d+)`)

// resolveFromSerialNumber extracts the monitor ID from the serial number.
// Leading zeros are preserved: monitors subscribe with the exact digits
// printed on the label.
func resolveFromSerialNumber(rec monitorRecord) (string, bool) {
	m := serialNumberPattern.FindStringSubmatch(rec.SerialNumber)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// resolveFromNumericID accepts the device ID itself when it is purely
// numeric, which is how first-generation monitors were paired.
func resolveFromNumericID(rec monitorRecord) (string, bool) {
	if rec.ID == "" {
		return "", false
	}
	for _, r := range rec.ID {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return rec.ID, true
}

// HubGetter fetches a hub by ID. Satisfied by HubRepository.
type HubGetter interface {
	GetByID(ctx context.Context, id string) (*Hub, error)
}

// monitorLogger is the logging surface the resolver needs.
type monitorLogger interface {
	Warn(msg string, args ...any)
}

// ResolveSmartMonitorID determines the numeric identifier a smart
// monitor subscribes with.
//
// The resolution order is:
//  1. Device metadata (smartMonitorId / smartmonitorId)
//  2. Signal mappings blob (same keys)
//  3. Serial number (SM-prefixed numeric suffix)
//  4. Purely numeric device ID
//  5. For hubs acting as their own monitor device (device ID equals
//     hub ID), the hub's own record, retried through steps 1-4
//
// When every source fails the device ID is returned verbatim with a
// warning, so the command is still published somewhere observable
// rather than dropped.
//
// Parameters:
//   - ctx: Context for the hub lookup
//   - dev: The smart monitor device
//   - hubs: Hub lookup for the self-fetch fallback (may be nil)
//   - logger: Warning sink for unresolved IDs (may be nil)
//
// Returns:
//   - string: The monitor identifier to build topics with (never empty
//     unless dev.ID is empty)
func ResolveSmartMonitorID(ctx context.Context, dev *Device, hubs HubGetter, logger monitorLogger) string {
	rec := recordFromDevice(dev)
	if id, ok := resolveChain(rec); ok {
		return id
	}

	// Hubs that act as their own monitor device are paired with the hub
	// ID as the device ID; the hub record often carries the serial the
	// device record lacks. Only that self-pairing triggers the fetch.
	if hubs != nil && dev.HubID != "" && dev.ID == dev.HubID {
		if hub, err := hubs.GetByID(ctx, dev.HubID); err == nil {
			if id, ok := resolveChain(recordFromHub(hub)); ok {
				return id
			}
		}
	}

	if logger != nil {
		logger.Warn("smart monitor id unresolved, using device id verbatim",
			"device_id", dev.ID,
			"hub_id", dev.HubID,
		)
	}
	return dev.ID
}

// metadataValue reads a key from an untyped map, returning nil when the
// map is nil or the key is absent.
func metadataValue(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// formatNumeric renders a JSON-decoded number without a trailing
// fractional part when it is integral.
func formatNumeric(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
