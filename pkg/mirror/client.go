package mirror

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher publishes raw payloads.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Client wraps a paho client for publishing.
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client

	connected bool
	connMu    sync.RWMutex
}

// Connect establishes a connection to the MQTT broker.
func Connect(cfg Config) (*Client, error) {
	if cfg.Broker == "" {
		return nil, ErrNoBroker
	}
	if cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}

	c := &Client{}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.setConnected(true)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, _ error) {
		c.setConnected(false)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(cfg.connectTimeout()) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, cfg.connectTimeout())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect handler runs asynchronously and may not have run yet.
	c.setConnected(true)

	return c, nil
}

// newClient wraps an existing paho client.
func newClient(client pahomqtt.Client, connected bool) *Client {
	return &Client{client: client, connected: connected}
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// Publish sends payload to topic and waits for the broker acknowledgment.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	c.setConnected(false)
	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}
