// Package process supervises long-running helper daemons.
//
// Relay Core depends on wpa_supplicant for station association. The
// supervisor launches it, relays its output to the structured log, and
// restarts it after a fixed delay whenever it exits.
//
// Example usage:
//
//	mgr := process.NewManager(process.Config{
//	    Name:         "wpa_supplicant",
//	    Binary:       "/usr/sbin/wpa_supplicant",
//	    Args:         []string{"-i", "wlan0", "-c", "/run/relaycore/wpa_supplicant.conf"},
//	    RestartDelay: 2 * time.Second,
//	})
//
//	if err := mgr.Start(ctx); err != nil {
//	    return err
//	}
//	defer mgr.Stop()
package process
