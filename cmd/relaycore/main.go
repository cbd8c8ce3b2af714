// Relay Core - networked eight-channel relay controller
//
// This is the main entry point. Boot order is outputs off, storage and
// credentials, network stack, wifi event handling, station start. The HTTP
// control service starts once the station associates.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/nerrad567/relay-core/migrations"

	"github.com/nerrad567/relay-core/internal/api"
	"github.com/nerrad567/relay-core/internal/bootstrap"
	"github.com/nerrad567/relay-core/internal/credentials"
	"github.com/nerrad567/relay-core/internal/infrastructure/config"
	"github.com/nerrad567/relay-core/internal/infrastructure/database"
	"github.com/nerrad567/relay-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/relay-core/internal/infrastructure/logging"
	"github.com/nerrad567/relay-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/relay-core/internal/metrics"
	"github.com/nerrad567/relay-core/internal/outputs"
	"github.com/nerrad567/relay-core/internal/telemetry"
	"github.com/nerrad567/relay-core/internal/wifi"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build-time station credentials. The environment overrides these and the
// stored row is the fallback.
// Example: go build -ldflags "-X main.wifiSSID=workshop -X main.wifiPassphrase=..."
var (
	wifiSSID       = ""
	wifiPassphrase = ""
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the components and blocks until ctx is cancelled.
//
// Returns:
//   - error: nil on clean shutdown, or the first boot failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Relay Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"device_id", cfg.Device.ID,
		"outputs_driver", cfg.Outputs.Driver,
		"network_driver", cfg.Network.Driver,
	)

	driver, err := newOutputDriver(cfg.Outputs)
	if err != nil {
		return err
	}
	bank := outputs.NewBank(driver, outputs.DefaultPins)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New(outputs.Count)
		collector.SetBuildInfo(version)
		bank.AddObserver(collector)
	}

	radio, err := newRadio(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := radio.Close(); closeErr != nil {
			log.Error("error closing radio", "error", closeErr)
		}
	}()

	storage := &bootstrap.CredentialStorage{
		Config: database.Config{
			Path:        cfg.Storage.Path,
			WALMode:     cfg.Storage.WALMode,
			BusyTimeout: cfg.Storage.BusyTimeout,
		},
		Candidates: credentialCandidates(cfg.Network),
		Logger:     log,
	}
	defer func() {
		log.Info("closing storage")
		if closeErr := storage.Close(); closeErr != nil {
			log.Error("error closing storage", "error", closeErr)
		}
	}()

	att := newAttacher(cfg, log, bank)
	defer att.close()

	machine := wifi.NewMachine(radio, att.attach)
	machine.SetLogger(log)
	if collector != nil {
		machine.SetHooks(collector.WifiHooks())
	}

	deps := api.Deps{
		Config:    cfg.API,
		WebSocket: cfg.WebSocket,
		Logger:    log,
		Bank:      bank,
		Station:   machine,
		Version:   version,
	}
	if collector != nil {
		deps.Metrics = collector
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	att.server = server

	seq := &bootstrap.Sequencer{
		Outputs: bank,
		Storage: storage,
		Network: &bootstrap.StationNetwork{
			Radio: radio,
			Station: func() wifi.StationConfig {
				return storage.Station(cfg.Network.Interface)
			},
		},
		Events: machine,
		Logger: log,
	}

	if err := seq.Run(ctx); err != nil {
		return err
	}

	log.Info("Relay Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RELAYCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RELAYCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// newOutputDriver returns the digital I/O driver named in config.
func newOutputDriver(cfg config.OutputsConfig) (outputs.Driver, error) {
	switch cfg.Driver {
	case config.DriverPeriph:
		return outputs.NewPeriphDriver(), nil
	case config.DriverSim:
		return outputs.NewSimDriver(), nil
	default:
		return nil, fmt.Errorf("unknown outputs driver %q", cfg.Driver)
	}
}

// newRadio returns the station radio named in config.
func newRadio(cfg *config.Config, log *logging.Logger) (wifi.Radio, error) {
	switch cfg.Network.Driver {
	case config.DriverNetlink:
		r := wifi.NewLinkRadio(cfg.Network.Interface, wifi.SupplicantConfig{
			Binary:     cfg.Network.Supplicant.Binary,
			ConfigPath: cfg.Network.Supplicant.ConfigPath,
			CtrlBinary: cfg.Network.Supplicant.CtrlBinary,
		}, cfg.GetSupplicantRestartDelay())
		r.SetLogger(log)
		return r, nil
	case config.DriverSim:
		r := wifi.NewSimRadio()
		r.AutoAssociate = true
		return r, nil
	default:
		return nil, fmt.Errorf("unknown network driver %q", cfg.Network.Driver)
	}
}

// credentialCandidates returns override credentials, environment first.
func credentialCandidates(cfg config.NetworkConfig) []credentials.Credentials {
	return []credentials.Credentials{
		{SSID: cfg.SSID, Passphrase: cfg.Passphrase, Source: credentials.SourceEnv},
		{SSID: wifiSSID, Passphrase: wifiPassphrase, Source: credentials.SourceBuild},
	}
}

// attacher is the wifi attach hook. It starts the API server and hands the
// optional telemetry sinks to a background goroutine, so a slow broker or
// database never holds up the wifi event loop. Only a server start failure
// is returned; the machine retries it on the next association.
//
// close must run after the machine goroutine has stopped.
type attacher struct {
	cfg    *config.Config
	log    *logging.Logger
	bank   *outputs.Bank
	server *api.Server

	connectMQTT     func(config.MQTTConfig) (*mqtt.Client, error)
	connectInfluxDB func(config.InfluxDBConfig) (*influxdb.Client, error)

	sinks        sync.WaitGroup
	mu           sync.Mutex
	connecting   bool
	mqttClient   *mqtt.Client
	influxClient *influxdb.Client
}

func newAttacher(cfg *config.Config, log *logging.Logger, bank *outputs.Bank) *attacher {
	return &attacher{
		cfg:             cfg,
		log:             log,
		bank:            bank,
		connectMQTT:     mqtt.Connect,
		connectInfluxDB: influxdb.Connect,
	}
}

func (a *attacher) attach(ctx context.Context) error {
	if err := a.server.Start(ctx); err != nil && !errors.Is(err, api.ErrAlreadyStarted) {
		return fmt.Errorf("starting API server: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.connecting || ctx.Err() != nil {
		return nil
	}
	wantMQTT := a.cfg.MQTT.Enabled && a.mqttClient == nil
	wantInflux := a.cfg.InfluxDB.Enabled && a.influxClient == nil
	if !wantMQTT && !wantInflux {
		return nil
	}

	a.connecting = true
	a.sinks.Add(1)
	go func() {
		defer a.sinks.Done()
		defer func() {
			a.mu.Lock()
			a.connecting = false
			a.mu.Unlock()
		}()
		if wantMQTT {
			a.startMQTT(ctx)
		}
		if wantInflux && ctx.Err() == nil {
			a.startInfluxDB()
		}
	}()
	return nil
}

func (a *attacher) publishSnapshot(publisher *telemetry.Publisher) {
	levels, err := a.bank.Snapshot()
	if err != nil {
		a.log.Warn("skipping MQTT state snapshot", "error", err)
		return
	}
	publisher.PublishSnapshot(levels)
}

// startMQTT connects the broker and publishes retained output states.
// An unreachable broker is logged and skipped.
func (a *attacher) startMQTT(ctx context.Context) {
	client, err := a.connectMQTT(a.cfg.MQTT)
	if err != nil {
		a.log.Warn("MQTT unavailable, state publishing disabled", "error", err)
		return
	}
	a.mu.Lock()
	a.mqttClient = client
	a.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	a.log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", a.cfg.MQTT.Broker.Host, a.cfg.MQTT.Broker.Port),
		"client_id", a.cfg.MQTT.Broker.ClientID,
	)

	publisher := telemetry.NewPublisher(client, client.Topics().OutputState, telemetry.DefaultQueueSize)
	publisher.SetLogger(a.log)
	go publisher.Run(ctx)

	client.SetOnConnect(func() {
		a.log.Info("MQTT reconnected")
		a.publishSnapshot(publisher)
	})
	client.SetOnDisconnect(func(err error) {
		a.log.Warn("MQTT disconnected", "error", err)
	})

	a.bank.AddObserver(publisher)
	a.publishSnapshot(publisher)
}

// startInfluxDB records output changes as time-series points.
func (a *attacher) startInfluxDB() {
	client, err := a.connectInfluxDB(a.cfg.InfluxDB)
	if err != nil {
		a.log.Warn("InfluxDB unavailable, change history disabled", "error", err)
		return
	}
	a.mu.Lock()
	a.influxClient = client
	a.mu.Unlock()
	client.SetOnError(func(err error) {
		a.log.Error("InfluxDB write error", "error", err)
	})
	a.bank.AddObserver(telemetry.NewRecorder(client, a.cfg.Device.ID))
	a.log.Info("InfluxDB connected",
		"url", a.cfg.InfluxDB.URL,
		"org", a.cfg.InfluxDB.Org,
		"bucket", a.cfg.InfluxDB.Bucket,
	)
}

// close waits for a pending sink connect, then closes whatever connected.
func (a *attacher) close() {
	a.sinks.Wait()

	if a.influxClient != nil {
		a.log.Info("closing InfluxDB connection")
		if err := a.influxClient.Close(); err != nil {
			a.log.Error("error closing InfluxDB", "error", err)
		}
	}
	if a.mqttClient != nil {
		a.log.Info("disconnecting from MQTT")
		if err := a.mqttClient.Close(); err != nil {
			a.log.Error("error closing MQTT", "error", err)
		}
	}
}
