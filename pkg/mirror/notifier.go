package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// ErrNoRenderer is returned by Mirror before SetRenderer was called.
var ErrNoRenderer = errors.New("mirror: no renderer")

// Renderer renders the live representation of a resource.
type Renderer interface {
	Render(uri, query string) (model.Representation, error)
}

// NotifierConfig configures a Notifier.
type NotifierConfig struct {
	// QoS is the MQTT publish QoS level.
	QoS byte

	// Retained makes the broker keep the last mirrored reading.
	Retained bool

	// TopicPrefix prefixes every resource URI.
	TopicPrefix string

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// Notifier decorates an observe.Notifier with an MQTT mirror.
type Notifier struct {
	next      observe.Notifier
	publisher Publisher
	config    NotifierConfig

	mu       sync.RWMutex
	renderer Renderer

	published atomic.Uint64
	failed    atomic.Uint64
}

// NewNotifier wraps next. Every push handed to next is mirrored through publisher.
func NewNotifier(next observe.Notifier, publisher Publisher, config NotifierConfig) *Notifier {
	return &Notifier{
		next:      next,
		publisher: publisher,
		config:    config,
	}
}

// SetRenderer sets the representation source.
func (n *Notifier) SetRenderer(r Renderer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.renderer = r
}

// NotifyObservers pushes through the wrapped notifier, then mirrors the
// resource if the push reached an observer. The returned delivery and error
// are those of the wrapped notifier.
func (n *Notifier) NotifyObservers(ctx context.Context, uri string, qos wire.QoS) (observe.Delivery, error) {
	delivery, err := n.next.NotifyObservers(ctx, uri, qos)
	if err != nil || delivery == observe.NoObservers {
		return delivery, err
	}

	if merr := n.Mirror(uri); merr != nil {
		n.failed.Add(1)
		n.warnLog("mirror publish failed", "uri", uri, "error", merr)
	}
	return delivery, nil
}

// Mirror publishes the default representation of uri.
func (n *Notifier) Mirror(uri string) error {
	n.mu.RLock()
	r := n.renderer
	n.mu.RUnlock()
	if r == nil {
		return ErrNoRenderer
	}

	rep, err := r.Render(uri, "")
	if err != nil {
		return fmt.Errorf("render %s: %w", uri, err)
	}
	payload, err := rep.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", uri, err)
	}

	topic := Config{TopicPrefix: n.config.TopicPrefix}.Topic(uri)
	if err := n.publisher.Publish(topic, payload, n.config.QoS, n.config.Retained); err != nil {
		return err
	}

	n.published.Add(1)
	n.debugLog("mirrored", "topic", topic, "bytes", len(payload))
	return nil
}

// Stats returns the number of successful and failed mirror publishes.
func (n *Notifier) Stats() (published, failed uint64) {
	return n.published.Load(), n.failed.Load()
}

func (n *Notifier) debugLog(msg string, args ...any) {
	if n.config.Logger != nil {
		n.config.Logger.Debug(msg, args...)
	}
}

func (n *Notifier) warnLog(msg string, args ...any) {
	if n.config.Logger != nil {
		n.config.Logger.Warn(msg, args...)
	}
}

var _ observe.Notifier = (*Notifier)(nil)
