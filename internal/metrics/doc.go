// Package metrics exposes Relay Core state to Prometheus.
//
// A single Collector is created at boot and handed to three places:
//
//	bank.AddObserver(collector)             // output writes and levels
//	machine.SetHooks(collector.WifiHooks()) // phase, connects, attach
//	api.Deps{Metrics: collector}            // request counts and /metrics
//
// The registry is private, so only Relay Core, Go runtime and process
// collectors are exported.
package metrics
