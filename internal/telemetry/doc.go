// Package telemetry records device activity for history dashboards.
//
// Every applied state update produces exactly one Activity, written to
// InfluxDB through the non-blocking batched API. Recording never blocks
// or fails command dispatch; when InfluxDB is disabled a NopRecorder
// takes its place.
package telemetry
