// Package logging builds the structured logger shared by every Relay Core
// component.
//
// Logger embeds *slog.Logger, so it satisfies the small Debug/Info/Warn/Error
// interfaces that the wifi, process, telemetry and bootstrap packages
// declare. Each entry carries service=relaycore and the build version.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// The station passphrase and broker credentials must never be logged.
package logging
