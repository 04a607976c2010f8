package device

// HubDevice projects a hub into a virtual device so scenes and rules
// can target hubs with built-in sensors (air quality monitors) through
// the same code path as paired devices.
//
// The projection is pure: it reads only the hub record and allocates a
// fresh Device each call, so callers may cache the result for the
// duration of one resolution pass without aliasing concerns.
//
// Projection rules:
//   - ID and HubID are both the hub ID (the hub is its own transport)
//   - Type is the hub's hardware type, defaulting to "airguard"
//   - Category is "climate" (built-in sensors are environmental)
//   - IsActive mirrors broker connectivity
//   - The serial number is carried in metadata for monitor ID resolution
func HubDevice(h *Hub) Device {
	hubType := h.HubType
	if hubType == "" {
		hubType = "airguard"
	}

	metadata := make(map[string]any, len(h.Metadata)+1)
	for k, v := range h.Metadata {
		metadata[k] = v
	}
	if h.SerialNumber != "" {
		metadata["serialNumber"] = h.SerialNumber
	}

	return Device{
		ID:        h.ID,
		HubID:     h.ID,
		HomeID:    h.HomeID,
		RoomID:    h.RoomID,
		Name:      h.Name,
		Type:      hubType,
		Category:  "climate",
		IsActive:  h.Status == HubStatusOnline,
		Metadata:  metadata,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}
