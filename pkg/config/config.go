package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v7"
	"gopkg.in/yaml.v3"

	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BPM_"

// Validation errors.
var (
	ErrInvalidNetwork  = errors.New("invalid coap network")
	ErrInvalidAddress  = errors.New("invalid listen address")
	ErrInvalidInterval = errors.New("observe interval must be positive")
	ErrInvalidQoS      = errors.New("invalid qos")
	ErrInvalidLevel    = errors.New("invalid log level")
	ErrInvalidFormat   = errors.New("invalid log format")
	ErrMissingBroker   = errors.New("mqtt enabled without broker")
)

// Config is the root configuration of the device.
type Config struct {
	Device    DeviceConfig    `yaml:"device"    envPrefix:"DEVICE_"`
	CoAP      CoAPConfig      `yaml:"coap"      envPrefix:"COAP_"`
	Observe   ObserveConfig   `yaml:"observe"   envPrefix:"OBSERVE_"`
	Discovery DiscoveryConfig `yaml:"discovery" envPrefix:"DISCOVERY_"`
	MQTT      MQTTConfig      `yaml:"mqtt"      envPrefix:"MQTT_"`
	Metrics   MetricsConfig   `yaml:"metrics"   envPrefix:"METRICS_"`
	Log       LogConfig       `yaml:"log"       envPrefix:"LOG_"`
}

// DeviceConfig contains the device identity settings.
type DeviceConfig struct {
	// Name is served as /oic/d "n".
	Name string `yaml:"name" env:"NAME"`

	// DataDir holds identity.yaml.
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`

	// Seed makes the simulated sensor deterministic. Zero seeds from the clock.
	Seed uint64 `yaml:"seed" env:"SEED"`
}

// CoAPConfig contains the CoAP listener settings.
type CoAPConfig struct {
	Network string `yaml:"network" env:"NETWORK"`
	Address string `yaml:"address" env:"ADDRESS"`
}

// ObserveConfig contains the observation loop settings.
type ObserveConfig struct {
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`

	// QoS is "low" (non-confirmable) or "high" (confirmable).
	QoS string `yaml:"qos" env:"QOS"`
}

// DiscoveryConfig contains the DNS-SD advertisement settings.
type DiscoveryConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Interface restricts advertisement to one interface. Empty means all.
	Interface string `yaml:"interface" env:"INTERFACE"`
}

// MQTTConfig contains the push mirror settings.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"      env:"ENABLED"`
	Broker      string `yaml:"broker"       env:"BROKER"`
	ClientID    string `yaml:"client_id"    env:"CLIENT_ID"`
	Username    string `yaml:"username"     env:"USERNAME"`
	Password    string `yaml:"password"     env:"PASSWORD"`
	TopicPrefix string `yaml:"topic_prefix" env:"TOPIC_PREFIX"`
	QoS         byte   `yaml:"qos"          env:"QOS"`
	Retained    bool   `yaml:"retained"     env:"RETAINED"`
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Address string `yaml:"address" env:"ADDRESS"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" env:"LEVEL"`

	// Format is text or json.
	Format string `yaml:"format" env:"FORMAT"`

	// ProtocolLog is the optional path of a CBOR protocol capture.
	ProtocolLog string `yaml:"protocol_log" env:"PROTOCOL_LOG"`
}

// Default returns a configuration that runs out of the box.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:    "Blood Pressure Monitor",
			DataDir: "./data",
		},
		CoAP: CoAPConfig{
			Network: "udp",
			Address: ":5683",
		},
		Observe: ObserveConfig{
			Interval: 2 * time.Second,
			QoS:      wire.QoSLow.String(),
		},
		Discovery: DiscoveryConfig{
			Enabled: true,
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			ClientID:    "bpm-device",
			TopicPrefix: "bpm",
			QoS:         0,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file and applies environment variable
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.CoAP.Network {
	case "udp", "udp4", "udp6":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidNetwork, c.CoAP.Network)
	}
	if _, _, err := net.SplitHostPort(c.CoAP.Address); err != nil {
		return fmt.Errorf("%w: coap %q: %w", ErrInvalidAddress, c.CoAP.Address, err)
	}

	if c.Observe.Interval <= 0 {
		return ErrInvalidInterval
	}
	if _, ok := wire.ParseQoS(c.Observe.QoS); !ok {
		return fmt.Errorf("%w: observe %q", ErrInvalidQoS, c.Observe.QoS)
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return ErrMissingBroker
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("%w: mqtt %d", ErrInvalidQoS, c.MQTT.QoS)
	}

	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.Address); err != nil {
			return fmt.Errorf("%w: metrics %q: %w", ErrInvalidAddress, c.Metrics.Address, err)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Log.Format)
	}

	return nil
}

// ObserveQoS returns the parsed observe QoS. Call after Validate.
func (c *Config) ObserveQoS() wire.QoS {
	q, _ := wire.ParseQoS(c.Observe.QoS)
	return q
}
