package telemetry

import (
	"github.com/nerrad567/relay-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/relay-core/internal/outputs"
)

// ChangeWriter is the time-series surface the recorder needs.
// *influxdb.Client satisfies it.
type ChangeWriter interface {
	WriteOutputChange(change influxdb.OutputChange)
}

// Recorder writes every accepted output write to a time-series store.
type Recorder struct {
	w        ChangeWriter
	deviceID string
}

// NewRecorder creates a recorder tagging points with deviceID.
func NewRecorder(w ChangeWriter, deviceID string) *Recorder {
	return &Recorder{w: w, deviceID: deviceID}
}

// OutputChanged implements outputs.Observer. The writer batches, so this
// does not block on the network.
func (r *Recorder) OutputChanged(change outputs.Change) {
	r.w.WriteOutputChange(influxdb.OutputChange{
		DeviceID: r.deviceID,
		Index:    change.Index,
		Pin:      change.Pin.String(),
		Level:    change.Level,
		Previous: change.Previous,
		At:       change.At,
	})
}
