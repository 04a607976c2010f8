package scene

import (
	"github.com/vealive/veahome-core/internal/device"
)

// Resolved pairs one target device with the state a scene assigns it.
type Resolved struct {
	Device device.Device
	State  DesiredState

	// Projected marks a virtual device derived from a hub record. It
	// has no device row of its own, so state patches do not apply.
	Projected bool
}

// candidate is a scene target under consideration, tagged with whether
// it is a hub projection rather than a stored device row.
type candidate struct {
	device    device.Device
	projected bool
}

// ResolveTargets computes the devices a scene will command and the
// desired state for each.
//
// Resolution runs in three stages:
//
//  1. Candidates: the home's devices plus a virtual device projected
//     from each hub (hubs with built-in sensors are scene targets too).
//     Projections are computed once here and reused for the whole
//     activation; a hub already paired as its own device is not
//     projected twice.
//
//  2. Scope: under ScopeRooms with a non-empty room list, candidates
//     outside those rooms are dropped. An empty room list under
//     ScopeRooms targets the whole home; existing installations depend
//     on this fallback.
//
//  3. Selection: rules match candidates by device type, narrowed to
//     listed IDs under ModeSpecific. The first rule to claim a device
//     wins. Scenes without rules fall back to the legacy per-device
//     state map, matched by device ID.
//
// The function is pure: it reads its inputs and allocates fresh output.
func ResolveTargets(s *Scene, devices []device.Device, hubs []device.Hub) []Resolved {
	candidates := buildCandidates(devices, hubs)
	candidates = filterByScope(s, candidates)

	if len(s.Rules) > 0 {
		return applyRules(s.Rules, candidates)
	}
	return applyDeviceStates(s.DeviceStates, candidates)
}

// buildCandidates merges paired devices with hub projections.
func buildCandidates(devices []device.Device, hubs []device.Hub) []candidate {
	seen := make(map[string]bool, len(devices))
	candidates := make([]candidate, 0, len(devices)+len(hubs))

	for _, d := range devices {
		seen[d.ID] = true
		candidates = append(candidates, candidate{device: d})
	}
	for i := range hubs {
		if seen[hubs[i].ID] {
			continue
		}
		candidates = append(candidates, candidate{
			device:    device.HubDevice(&hubs[i]),
			projected: true,
		})
	}
	return candidates
}

// filterByScope drops candidates outside the scene's rooms.
func filterByScope(s *Scene, candidates []candidate) []candidate {
	if s.Scope != ScopeRooms || len(s.RoomIDs) == 0 {
		return candidates
	}

	rooms := make(map[string]bool, len(s.RoomIDs))
	for _, id := range s.RoomIDs {
		rooms[id] = true
	}

	filtered := candidates[:0]
	for _, c := range candidates {
		if c.device.RoomID != nil && rooms[*c.device.RoomID] {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// applyRules selects candidates per device type rule.
func applyRules(rules []DeviceTypeRule, candidates []candidate) []Resolved {
	claimed := make(map[string]bool)
	var resolved []Resolved

	for _, rule := range rules {
		var idSet map[string]bool
		if rule.Mode == ModeSpecific {
			idSet = make(map[string]bool, len(rule.DeviceIDs))
			for _, id := range rule.DeviceIDs {
				idSet[id] = true
			}
		}

		for _, c := range candidates {
			if claimed[c.device.ID] || c.device.Type != rule.DeviceType {
				continue
			}
			if idSet != nil && !idSet[c.device.ID] {
				continue
			}
			claimed[c.device.ID] = true
			resolved = append(resolved, Resolved{
				Device:    c.device,
				State:     rule.State,
				Projected: c.projected,
			})
		}
	}
	return resolved
}

// applyDeviceStates selects candidates named in the legacy state map.
func applyDeviceStates(states map[string]DesiredState, candidates []candidate) []Resolved {
	if len(states) == 0 {
		return nil
	}

	var resolved []Resolved
	for _, c := range candidates {
		if state, ok := states[c.device.ID]; ok {
			resolved = append(resolved, Resolved{
				Device:    c.device,
				State:     state,
				Projected: c.projected,
			})
		}
	}
	return resolved
}
