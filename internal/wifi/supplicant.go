package wifi

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultCtrlInterface is the control socket directory used by wpa_cli.
const DefaultCtrlInterface = "/run/wpa_supplicant"

// SupplicantConfig configures the wpa_supplicant daemon backing LinkRadio.
type SupplicantConfig struct {
	// Binary is the wpa_supplicant executable.
	Binary string

	// ConfigPath is where the generated configuration is written.
	ConfigPath string

	// CtrlBinary is the wpa_cli executable. Empty disables reconnect
	// requests through the control socket.
	CtrlBinary string

	// CtrlInterface is the control socket directory.
	CtrlInterface string

	// Driver is the wpa_supplicant driver backend (-D).
	Driver string
}

// RenderSupplicantConfig returns a wpa_supplicant.conf for one station.
//
// The SSID is written as a quoted string when it is plain printable text and
// as hex otherwise. An empty passphrase produces an open network block.
func RenderSupplicantConfig(cfg StationConfig, ctrlInterface string) string {
	if ctrlInterface == "" {
		ctrlInterface = DefaultCtrlInterface
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ctrl_interface=%s\n", ctrlInterface)
	b.WriteString("update_config=0\n")
	b.WriteString("ap_scan=1\n\n")
	b.WriteString("network={\n")
	fmt.Fprintf(&b, "\tssid=%s\n", encodeSSID(cfg.SSID))
	switch {
	case cfg.Passphrase == "":
		b.WriteString("\tkey_mgmt=NONE\n")
	case isHexPSK(cfg.Passphrase):
		fmt.Fprintf(&b, "\tpsk=%s\n", strings.ToLower(cfg.Passphrase))
	default:
		// wpa_supplicant reads up to the last quote and does not unescape.
		fmt.Fprintf(&b, "\tpsk=\"%s\"\n", cfg.Passphrase)
	}
	b.WriteString("\tscan_ssid=1\n")
	b.WriteString("}\n")
	return b.String()
}

func encodeSSID(ssid string) string {
	for i := 0; i < len(ssid); i++ {
		c := ssid[i]
		if c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			return hex.EncodeToString([]byte(ssid))
		}
	}
	return `"` + ssid + `"`
}

// WriteSupplicantConfig validates cfg and writes the rendered configuration
// to path with 0600 permissions.
//
// Parameters:
//   - path: destination file; its directory is created with 0700 if missing
//   - cfg: station parameters
//   - ctrlInterface: control socket directory (empty for the default)
//
// Returns:
//   - error: validation or filesystem error
func WriteSupplicantConfig(path string, cfg StationConfig, ctrlInterface string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating supplicant config directory: %w", err)
	}

	content := RenderSupplicantConfig(cfg, ctrlInterface)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing supplicant config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("securing supplicant config: %w", err)
	}
	return nil
}

// SupplicantArgs builds the wpa_supplicant command line.
func SupplicantArgs(iface string, sc SupplicantConfig) []string {
	args := []string{"-i", iface, "-c", sc.ConfigPath}
	if sc.Driver != "" {
		args = append(args, "-D", sc.Driver)
	}
	return args
}

// ReconnectArgs builds the wpa_cli command line requesting a reconnect.
func ReconnectArgs(iface string, sc SupplicantConfig) []string {
	ctrl := sc.CtrlInterface
	if ctrl == "" {
		ctrl = DefaultCtrlInterface
	}
	return []string{"-p", ctrl, "-i", iface, "reconnect"}
}
