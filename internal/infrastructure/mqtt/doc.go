// Package mqtt provides the MQTT client for VeaHome Core.
//
// It wraps paho.mqtt.golang with connection lifecycle management,
// Last Will and Testament for offline detection, automatic reconnection
// with exponential backoff, and topic builders for the VeaHome namespace.
//
// Hubs receive device commands under their own topic root
// ({hubTopic}/devices/{deviceId}/control); smart monitors additionally
// subscribe directly under vealive/smartmonitor/{id} for buzzer and
// threshold messages.
package mqtt
