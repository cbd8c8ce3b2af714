// Package wifi manages wireless station attachment for Relay Core.
//
// A Machine consumes events from a Radio and keeps the station associated:
//
//	         StationStarted                Connected
//	Idle ───────────────────▶ Connecting ─────────────▶ Connected
//	                             ▲   │                      │
//	                 Connect()   │   │ Disconnected         │ Disconnected
//	                             │   ▼                      ▼
//	                          Disconnected ◀────────────────┘
//
// On the first transition into Connected the machine invokes its attach
// hook, which in Relay Core starts the HTTP control service. The hook runs
// until it succeeds once; later reconnections do not invoke it again and a
// disconnect never stops what it started.
//
// Every disconnect triggers exactly one immediate connect request. There is
// no backoff and no attempt limit.
//
// # Radios
//
//   - LinkRadio (Linux): supervised wpa_supplicant plus rtnetlink link
//     state. Connected means the interface reached IF_OPER_UP.
//   - SimRadio: in-process radio for tests and bench hosts.
package wifi
