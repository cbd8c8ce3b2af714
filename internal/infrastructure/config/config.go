package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Relay Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Outputs   OutputsConfig   `yaml:"outputs"`
	Network   NetworkConfig   `yaml:"network"`
	Storage   StorageConfig   `yaml:"storage"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies this controller.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Driver names accepted by outputs.driver and network.driver.
const (
	DriverPeriph  = "periph"
	DriverNetlink = "netlink"
	DriverSim     = "sim"
)

// OutputsConfig selects the digital I/O driver. The pin table itself is
// compiled in and cannot be changed here.
type OutputsConfig struct {
	Driver string `yaml:"driver"`
}

// NetworkConfig contains wireless station settings.
type NetworkConfig struct {
	Driver     string           `yaml:"driver"`
	Interface  string           `yaml:"interface"`
	Supplicant SupplicantConfig `yaml:"supplicant"`

	// SSID and Passphrase are never read from the YAML file. They come from
	// build-time variables or RELAYCORE_WIFI_* environment variables.
	SSID       string `yaml:"-"`
	Passphrase string `yaml:"-"`
}

// SupplicantConfig controls the wpa_supplicant daemon used by the netlink driver.
type SupplicantConfig struct {
	// Binary is the path to the wpa_supplicant executable.
	Binary string `yaml:"binary"`

	// ConfigPath is where the generated station configuration is written.
	ConfigPath string `yaml:"config_path"`

	// CtrlBinary is the path to wpa_cli. If empty, connect actions only
	// bring the link administratively up.
	CtrlBinary string `yaml:"ctrl_binary"`

	// RestartDelaySeconds is the wait before restarting a crashed supplicant.
	RestartDelaySeconds int `yaml:"restart_delay_seconds"`
}

// StorageConfig contains SQLite settings for the credential store.
type StorageConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains live view settings.
type WebSocketConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Path         string `yaml:"path"`
	PingInterval int    `yaml:"ping_interval"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
	TopicPrefix string              `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: RELAYCORE_SECTION_KEY
// For example: RELAYCORE_STORAGE_PATH, RELAYCORE_API_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:   "relay-001",
			Name: "Relay Controller",
		},
		Outputs: OutputsConfig{
			Driver: DriverPeriph,
		},
		Network: NetworkConfig{
			Driver:    DriverNetlink,
			Interface: "wlan0",
			Supplicant: SupplicantConfig{
				Binary:              "/usr/sbin/wpa_supplicant",
				ConfigPath:          "/run/relaycore/wpa_supplicant.conf",
				CtrlBinary:          "/usr/sbin/wpa_cli",
				RestartDelaySeconds: 2,
			},
		},
		Storage: StorageConfig{
			Path:        "./data/relaycore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 80,
			Timeouts: APITimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Enabled:      true,
			Path:         "/ws",
			PingInterval: 30,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "relaycore",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			TopicPrefix: "relaycore",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: RELAYCORE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RELAYCORE_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	if v := os.Getenv("RELAYCORE_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// Station credentials
	if v := os.Getenv("RELAYCORE_NETWORK_INTERFACE"); v != "" {
		cfg.Network.Interface = v
	}
	if v := os.Getenv("RELAYCORE_WIFI_SSID"); v != "" {
		cfg.Network.SSID = v
	}
	if v := os.Getenv("RELAYCORE_WIFI_PASSPHRASE"); v != "" {
		cfg.Network.Passphrase = v
	}

	// MQTT
	if v := os.Getenv("RELAYCORE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("RELAYCORE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("RELAYCORE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("RELAYCORE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	switch c.Outputs.Driver {
	case DriverPeriph, DriverSim:
	default:
		errs = append(errs, fmt.Sprintf("outputs.driver %q is not supported (use: periph, sim)", c.Outputs.Driver))
	}

	switch c.Network.Driver {
	case DriverNetlink:
		if c.Network.Interface == "" {
			errs = append(errs, "network.interface is required for the netlink driver")
		}
		if c.Network.Supplicant.Binary == "" {
			errs = append(errs, "network.supplicant.binary is required for the netlink driver")
		}
		if c.Network.Supplicant.ConfigPath == "" {
			errs = append(errs, "network.supplicant.config_path is required for the netlink driver")
		}
	case DriverSim:
	default:
		errs = append(errs, fmt.Sprintf("network.driver %q is not supported (use: netlink, sim)", c.Network.Driver))
	}

	if c.Storage.Path == "" {
		errs = append(errs, "storage.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
		}
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetSupplicantRestartDelay returns the supplicant restart delay as a Duration.
func (c *Config) GetSupplicantRestartDelay() time.Duration {
	return time.Duration(c.Network.Supplicant.RestartDelaySeconds) * time.Second
}
