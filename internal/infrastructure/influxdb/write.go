package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementOutputChange is the measurement holding one point per write.
const MeasurementOutputChange = "output_change"

// OutputChange is one accepted write on an output line.
type OutputChange struct {
	DeviceID string
	Index    int
	Pin      string
	Level    bool
	Previous bool
	At       time.Time
}

// WriteOutputChange records an output write.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Nothing is written when the client is not connected.
func (c *Client) WriteOutputChange(change OutputChange) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(outputChangePoint(change))
}

// outputChangePoint builds the line protocol point for a change.
//
// Tags carry the device, line and pin. The level is an integer field so it
// can be graphed as a step series.
func outputChangePoint(change OutputChange) *write.Point {
	at := change.At
	if at.IsZero() {
		at = time.Now()
	}
	return write.NewPoint(
		MeasurementOutputChange,
		map[string]string{
			"device_id": change.DeviceID,
			"output":    strconv.Itoa(change.Index),
			"pin":       change.Pin,
		},
		map[string]interface{}{
			"state":   boolToInt(change.Level),
			"changed": change.Level != change.Previous,
		},
		at,
	)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
