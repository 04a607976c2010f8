// Package config loads and validates VeaHome Core configuration.
//
// Configuration is layered: hardcoded defaults, then a YAML file, then
// VEAHOME_* environment variable overrides. Secrets (MQTT credentials,
// InfluxDB token) should always come from the environment rather than
// the file.
package config
