// Package scene resolves scenes into device commands and executes them.
//
// A scene names a set of desired device states, either through device
// type rules or a legacy per-device map. Activation resolves the
// target devices (including virtual devices projected from hubs),
// normalizes each desired state into a state patch and an MQTT
// command, dispatches the commands fire-and-forget, persists the
// patches, and records one activity per applied update.
//
// At most one scene is active per home; the repository enforces this
// with a single atomic update.
package scene
