package telemetry

import (
	"time"
)

// Activity is one device state change worth recording. Exactly one
// activity is recorded per applied state update, regardless of how many
// MQTT messages the command produced.
type Activity struct {
	HomeID   string
	RoomID   string
	DeviceID string
	Category string

	// Source identifies what initiated the change ("scene", "manual",
	// "schedule").
	Source string

	// Value and IsActive mirror the applied state patch. Nil fields
	// were not part of the update.
	Value    *float64
	IsActive *bool

	Timestamp time.Time
}

// Recorder accepts device activities. Recording is fire-and-forget:
// implementations must not block command dispatch and must swallow
// delivery failures.
type Recorder interface {
	Record(activity Activity)
}

// PointWriter is the InfluxDB surface the recorder needs.
// Satisfied by influxdb.Client.
type PointWriter interface {
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time)
}

// InfluxRecorder writes activities to InfluxDB as points in the
// device_activity measurement. Writes go through the client's batched
// non-blocking API.
type InfluxRecorder struct {
	writer PointWriter
}

// NewInfluxRecorder creates a recorder backed by an InfluxDB client.
func NewInfluxRecorder(writer PointWriter) *InfluxRecorder {
	return &InfluxRecorder{writer: writer}
}

// Record writes one activity point.
//
// Tags are defaulted rather than omitted so dashboard group-bys never
// split on missing keys. Activities carrying no value and no state
// change are skipped: InfluxDB rejects points without fields.
func (r *InfluxRecorder) Record(activity Activity) {
	fields := make(map[string]interface{}, 2)
	if activity.Value != nil {
		fields["value"] = *activity.Value
	}
	if activity.IsActive != nil {
		state := 0
		if *activity.IsActive {
			state = 1
		}
		fields["state"] = state
	}
	if len(fields) == 0 {
		return
	}

	tags := map[string]string{
		"home_id":   activity.HomeID,
		"device_id": activity.DeviceID,
		"room_id":   defaultTag(activity.RoomID, "unknown"),
		"category":  defaultTag(activity.Category, "generic"),
		"source":    defaultTag(activity.Source, "unknown"),
	}

	ts := activity.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	r.writer.WritePointWithTime("device_activity", tags, fields, ts)
}

// NopRecorder discards activities. Used when InfluxDB is disabled.
type NopRecorder struct{}

// Record discards the activity.
func (NopRecorder) Record(Activity) {}

func defaultTag(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
