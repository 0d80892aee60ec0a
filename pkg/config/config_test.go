package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.CoAP.Address != ":5683" {
		t.Errorf("CoAP.Address = %q, want :5683", cfg.CoAP.Address)
	}
	if cfg.Observe.Interval != 2*time.Second {
		t.Errorf("Observe.Interval = %v, want 2s", cfg.Observe.Interval)
	}
	if cfg.ObserveQoS() != wire.QoSLow {
		t.Errorf("ObserveQoS() = %v, want low", cfg.ObserveQoS())
	}
	if !cfg.Discovery.Enabled || cfg.MQTT.Enabled || !cfg.Metrics.Enabled {
		t.Errorf("unexpected feature defaults: %+v %+v %+v", cfg.Discovery, cfg.MQTT, cfg.Metrics)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  name: "Ward 3 Monitor"
  data_dir: "/var/lib/bpm"
  seed: 42
coap:
  address: "127.0.0.1:15683"
observe:
  interval: 500ms
  qos: high
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  qos: 1
log:
  level: debug
  format: json
  protocol_log: "/tmp/bpm.blog"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Name != "Ward 3 Monitor" {
		t.Errorf("Device.Name = %q", cfg.Device.Name)
	}
	if cfg.Device.Seed != 42 {
		t.Errorf("Device.Seed = %d, want 42", cfg.Device.Seed)
	}
	if cfg.CoAP.Network != "udp" {
		t.Errorf("CoAP.Network = %q, want default udp", cfg.CoAP.Network)
	}
	if cfg.Observe.Interval != 500*time.Millisecond {
		t.Errorf("Observe.Interval = %v, want 500ms", cfg.Observe.Interval)
	}
	if cfg.ObserveQoS() != wire.QoSHigh {
		t.Errorf("ObserveQoS() = %v, want high", cfg.ObserveQoS())
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.QoS != 1 || cfg.MQTT.TopicPrefix != "bpm" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.Log.ProtocolLog != "/tmp/bpm.blog" {
		t.Errorf("Log.ProtocolLog = %q", cfg.Log.ProtocolLog)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Device.Name != Default().Device.Name {
		t.Errorf("Device.Name = %q", cfg.Device.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "coap: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
coap:
  address: ":5683"
`)

	t.Setenv("BPM_COAP_ADDRESS", ":25683")
	t.Setenv("BPM_OBSERVE_INTERVAL", "1s")
	t.Setenv("BPM_MQTT_ENABLED", "true")
	t.Setenv("BPM_MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("BPM_METRICS_ENABLED", "false")
	t.Setenv("BPM_DEVICE_NAME", "from env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CoAP.Address != ":25683" {
		t.Errorf("CoAP.Address = %q, want env override", cfg.CoAP.Address)
	}
	if cfg.Observe.Interval != time.Second {
		t.Errorf("Observe.Interval = %v, want 1s", cfg.Observe.Interval)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be overridden to false")
	}
	if cfg.Device.Name != "from env" {
		t.Errorf("Device.Name = %q", cfg.Device.Name)
	}
}

func TestLoad_EnvParseError(t *testing.T) {
	t.Setenv("BPM_OBSERVE_INTERVAL", "soon")
	if _, err := Load(""); err == nil {
		t.Error("Load() expected error for bad duration, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"BadNetwork", func(c *Config) { c.CoAP.Network = "tcp" }, ErrInvalidNetwork},
		{"BadAddress", func(c *Config) { c.CoAP.Address = "5683" }, ErrInvalidAddress},
		{"ZeroInterval", func(c *Config) { c.Observe.Interval = 0 }, ErrInvalidInterval},
		{"BadObserveQoS", func(c *Config) { c.Observe.QoS = "medium" }, ErrInvalidQoS},
		{"MQTTWithoutBroker", func(c *Config) { c.MQTT.Enabled = true }, ErrMissingBroker},
		{"BadMQTTQoS", func(c *Config) { c.MQTT.QoS = 3 }, ErrInvalidQoS},
		{"BadMetricsAddress", func(c *Config) { c.Metrics.Address = "nope" }, ErrInvalidAddress},
		{"MetricsDisabledIgnoresAddress", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Address = "nope"
		}, nil},
		{"BadLevel", func(c *Config) { c.Log.Level = "verbose" }, ErrInvalidLevel},
		{"UpperCaseLevel", func(c *Config) { c.Log.Level = "DEBUG" }, nil},
		{"BadFormat", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidFormat},
		{"IPv6Network", func(c *Config) { c.CoAP.Network = "udp6" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
