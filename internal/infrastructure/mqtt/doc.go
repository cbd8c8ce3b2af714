// Package mqtt provides MQTT client connectivity for Relay Core.
//
// This package manages:
//   - Connection to a broker with auto-reconnect
//   - Publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
// All topics live under mqtt.topic_prefix (default "relaycore"):
//
//	relaycore/state/output/<index>  retained {"output":i,"state":0|1}
//	relaycore/system/status         retained online/offline status
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.PublishRetained(client.Topics().OutputState(3), []byte(`{"output":3,"state":1}`))
//
// The client is only connected after the station is attached. A broker that
// cannot be reached is logged and skipped; it never blocks the control API.
package mqtt
