package mqtt

import (
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/relay-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "relaycore-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
		TopicPrefix: "relaycore-test",
	}
}

// requireBroker skips the test unless a broker listens on 127.0.0.1:1883.
func requireBroker(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "127.0.0.1:1883", 200*time.Millisecond)
	if err != nil {
		t.Skip("no MQTT broker on 127.0.0.1:1883")
	}
	conn.Close()
}

// =============================================================================
// Topics
// =============================================================================

func TestTopics(t *testing.T) {
	tests := []struct {
		name   string
		got    string
		expect string
	}{
		{"output state", Topics{Prefix: "relaycore"}.OutputState(3), "relaycore/state/output/3"},
		{"output state custom prefix", Topics{Prefix: "site/a"}.OutputState(0), "site/a/state/output/0"},
		{"trailing slash trimmed", Topics{Prefix: "relaycore/"}.OutputState(7), "relaycore/state/output/7"},
		{"empty prefix defaults", Topics{}.OutputState(1), "relaycore/state/output/1"},
		{"wildcard", Topics{Prefix: "relaycore"}.AllOutputStates(), "relaycore/state/output/+"},
		{"system status", Topics{Prefix: "relaycore"}.SystemStatus(), "relaycore/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expect {
				t.Errorf("got %q, want %q", tt.got, tt.expect)
			}
		})
	}
}

// =============================================================================
// Options and payloads
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "relay"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "relaycore-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "relay" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("AutoReconnect and CleanSession should be set")
	}
	if opts.MaxReconnectInterval != 5*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 5s", opts.MaxReconnectInterval)
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].String() != "ssl://127.0.0.1:8883" {
		t.Errorf("broker = %s, want ssl://127.0.0.1:8883", opts.Servers[0])
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS MinVersion not applied")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, Topics{Prefix: "relaycore"}, "relay-001")

	if !opts.WillEnabled || opts.WillTopic != "relaycore/system/status" {
		t.Fatalf("will = %v %q", opts.WillEnabled, opts.WillTopic)
	}
	if !opts.WillRetained || opts.WillQos != 1 {
		t.Error("will should be retained at QoS 1")
	}

	var p statusPayload
	if err := json.Unmarshal(opts.WillPayload, &p); err != nil {
		t.Fatalf("will payload: %v", err)
	}
	if p.Status != statusOffline || p.Reason != reasonUnexpected || p.ClientID != "relay-001" {
		t.Errorf("will payload = %+v", p)
	}
}

func TestBuildStatusPayload_EscapesClientID(t *testing.T) {
	raw := buildStatusPayload(`relay"01`, statusOnline, "")

	var p statusPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("payload is not valid JSON: %v (%s)", err, raw)
	}
	if p.ClientID != `relay"01` {
		t.Errorf("ClientID = %q", p.ClientID)
	}
	if strings.Contains(string(raw), `"reason"`) {
		t.Error("empty reason should be omitted")
	}
}

// =============================================================================
// Publish validation (no broker needed)
// =============================================================================

func TestPublish_Validation(t *testing.T) {
	c := newClient(testConfig())

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		want    error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"bad qos", "relaycore/x", []byte("x"), 3, ErrInvalidQoS},
		{"too large", "relaycore/x", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "relaycore/x", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("Publish() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClose_Unconnected(t *testing.T) {
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the connect timeout")
	}
	cfg := testConfig()
	cfg.Broker.Port = 1 // nothing listens here

	start := time.Now()
	_, err := Connect(cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("Connect() = %v, want ErrConnectionFailed", err)
	}
	if time.Since(start) > defaultConnectTimeout+2*time.Second {
		t.Error("Connect() did not honour its timeout")
	}
}

// =============================================================================
// Broker tests (skipped without a local broker)
// =============================================================================

func TestConnect_PublishRetained(t *testing.T) {
	requireBroker(t)

	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Fatal("IsConnected() = false after Connect")
	}
	topic := client.Topics().OutputState(0)
	if err := client.PublishRetained(topic, []byte(`{"output":0,"state":0}`)); err != nil {
		t.Errorf("PublishRetained() error = %v", err)
	}
}
