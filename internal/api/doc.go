// Package api implements the HTTP control service for Relay Core.
//
// This package provides:
//   - GET /outputs returning every line level as {"outputs":[0,1,...]}
//   - POST /output driving one line from {"output":<i>,"state":<s>}
//   - GET /health and GET /status, plus /metrics when a Metrics sink is wired
//   - a WebSocket live view pushing a snapshot on every change
//
// # Wire contract
//
// Field devices match replies byte for byte, so bodies carry no trailing
// newline. A malformed or out-of-range set request is answered with status
// 200 and {"status":"error","message":"invalid request"}. An empty body or a
// failed driver write aborts the connection with no reply at all.
//
// Only the first 32 bytes of a set body are read. The legacy compact form is
// matched by prefix, so {"output":3,"state":1 with the brace cut off still
// drives the line.
//
// # Lifecycle
//
// The Server is built once at boot and started by the Wi-Fi attach hook.
// Until the station is associated nothing listens.
package api
