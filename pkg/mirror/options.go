package mirror

import (
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// DefaultTopicPrefix prefixes every mirrored topic.
	DefaultTopicPrefix = "bpm"
)

// Config configures the MQTT connection.
type Config struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	Broker string

	// ClientID identifies the device at the broker.
	ClientID string

	// Username and Password are optional credentials.
	Username string
	Password string

	// QoS is the publish QoS level (0, 1 or 2).
	QoS byte

	// Retained makes the broker keep the last mirrored reading.
	Retained bool

	// TopicPrefix prefixes every resource URI.
	TopicPrefix string

	// ConnectTimeout bounds the initial connection.
	// Default: 10 seconds.
	ConnectTimeout time.Duration
}

// buildClientOptions creates paho MQTT options from the mirror config.
//
// Auto-reconnect keeps the mirror alive across broker restarts. Pushes
// attempted while disconnected fail with ErrNotConnected.
func buildClientOptions(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	// Authentication (if credentials provided)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(cfg.connectTimeout())
	opts.SetKeepAlive(defaultKeepAlive)

	return opts
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return defaultConnectTimeout
}

// Topic returns the topic a resource is mirrored to.
func (c Config) Topic(uri string) string {
	prefix := c.TopicPrefix
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return prefix + uri
}
