// Package config loads the Relay Core configuration file.
//
// Values are resolved in three layers: compiled-in defaults, then
// configs/config.yaml (or the file named by RELAYCORE_CONFIG), then
// RELAYCORE_* environment variables. Validate runs last and reports every
// problem in one error.
//
// Driver selection lives here too: outputs.driver picks periph or sim, and
// network.driver picks netlink or sim, so a bench host without GPIO or a
// wireless interface can run the full control path.
//
// Station credentials are never part of the file. They arrive through
// RELAYCORE_WIFI_SSID and RELAYCORE_WIFI_PASSPHRASE and land in
// Config.Network.SSID and Config.Network.Passphrase.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
package config
