// Package telemetry mirrors Output Bank changes to external systems.
//
// Both types are outputs.Observer implementations registered once the
// station is attached:
//
//   - Publisher: retained MQTT state per line, {"output":i,"state":0|1}
//   - Recorder: one InfluxDB point per accepted write
//
// Neither blocks the HTTP handler that caused the change. A broker or
// database that is down only costs telemetry; control keeps working.
package telemetry
