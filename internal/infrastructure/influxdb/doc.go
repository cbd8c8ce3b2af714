// Package influxdb records output changes in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched writes and health monitoring.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteOutputChange(influxdb.OutputChange{DeviceID: "relay-001", Index: 3, Level: true})
//
// Each write becomes one point:
//
//	output_change,device_id=relay-001,output=3,pin=GPIO16 changed=true,state=1i <ts>
//
// # Error Handling
//
// Writes are non-blocking; batch errors are delivered to the SetOnError
// callback. Connection and health check errors are returned directly.
package influxdb
