// Package credentials stores and resolves the wireless station credentials.
//
// Precedence at boot is RELAYCORE_WIFI_SSID / RELAYCORE_WIFI_PASSPHRASE,
// then values linked into the binary with -ldflags, then whatever was saved
// on a previous boot. An override is saved when used.
package credentials
