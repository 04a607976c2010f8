// Package device manages hubs and the devices paired to them.
//
// Devices carry learned signal mappings (logical action names to opaque
// transmit codes), partial state, and free-form metadata. Hubs with
// built-in sensors are additionally projected into virtual devices via
// HubDevice so scenes can target them uniformly.
//
// Smart monitors are a special case: they subscribe to MQTT by a
// manufacture-time numeric identifier rather than the pairing ID, and
// ResolveSmartMonitorID implements the lookup chain across the places
// different provisioning generations stored that identifier.
package device
