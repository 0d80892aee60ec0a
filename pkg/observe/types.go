package observe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ocf-bpm/bpm-go/pkg/sensor"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// Observation errors.
var (
	ErrUnknownEvent = errors.New("unknown subscription event")
)

// DefaultInterval is the push cadence of an active observation.
const DefaultInterval = 2 * time.Second

// Status is the observation state of a resource.
type Status uint8

const (
	// Idle means no loop is running.
	Idle Status = iota

	// Active means the push loop is running.
	Active
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Active:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Event is a subscription lifecycle event reported by the transport.
type Event uint8

const (
	// Subscribe means a client registered interest.
	Subscribe Event = iota + 1

	// Unsubscribe means the last client deregistered.
	Unsubscribe
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case Subscribe:
		return "SUBSCRIBE"
	case Unsubscribe:
		return "UNSUBSCRIBE"
	default:
		return "UNKNOWN"
	}
}

// Delivery is the result of a push.
type Delivery uint8

const (
	// Delivered means at least one observer received the push.
	Delivered Delivery = iota

	// NoObservers means no observer remains.
	NoObservers
)

// String returns the delivery name.
func (d Delivery) String() string {
	switch d {
	case Delivered:
		return "DELIVERED"
	case NoObservers:
		return "NO_OBSERVERS"
	default:
		return "UNKNOWN"
	}
}

// Target is the observed resource state.
// All three methods must be mutually exclusive with each other and with any
// reader of the live reading.
type Target interface {
	// Refresh polls a fresh reading and stores it as the live reading.
	Refresh() sensor.Reading

	// Status returns the current observation status.
	Status() Status

	// CompareAndSwapStatus sets the status to next if it currently is old.
	CompareAndSwapStatus(old, next Status) bool
}

// Notifier pushes the current state of a resource to its observers.
type Notifier interface {
	NotifyObservers(ctx context.Context, uri string, qos wire.QoS) (Delivery, error)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, uri string, qos wire.QoS) (Delivery, error)

// NotifyObservers calls f.
func (f NotifierFunc) NotifyObservers(ctx context.Context, uri string, qos wire.QoS) (Delivery, error) {
	return f(ctx, uri, qos)
}

// Config configures a Manager.
type Config struct {
	// Interval is the push cadence. Defaults to DefaultInterval.
	Interval time.Duration

	// QoS is passed to every push.
	QoS wire.QoS

	// Clock drives the ticker. Defaults to the wall clock.
	Clock clock.Clock

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
		QoS:      wire.QoSLow,
		Clock:    clock.New(),
	}
}

// PushResult describes one loop iteration.
type PushResult struct {
	URI      string
	Reading  sensor.Reading
	Delivery Delivery
	Err      error
}
