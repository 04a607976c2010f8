// Package influxdb provides the InfluxDB v2 client for VeaHome Core.
//
// Device activity points are written through the non-blocking WriteAPI
// with batching, so recording never blocks command dispatch. Write
// failures surface asynchronously through the error callback.
package influxdb
