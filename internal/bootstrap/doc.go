// Package bootstrap runs the Relay Core boot sequence.
//
// The order is fixed: outputs off, storage and credentials, network stack,
// event handling, station start. The HTTP service is not started here; the
// wifi attach hook starts it once the station is associated.
//
//	seq := &bootstrap.Sequencer{
//	    Outputs: bank,
//	    Storage: storage,
//	    Network: &bootstrap.StationNetwork{Radio: radio, Station: station},
//	    Events:  machine,
//	}
//	err := seq.Run(ctx) // blocks until ctx is cancelled
package bootstrap
