package transport

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ocf-bpm/bpm-go/pkg/log"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// ErrNoRenderer is returned by NotifyObservers before SetRenderer is called.
var ErrNoRenderer = errors.New("observers: no renderer")

// Notification is one observe notification for one observer.
type Notification struct {
	Token       []byte
	Sequence    uint32
	Confirmable bool
	Payload     []byte
}

// Sender writes notifications to one client.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Renderer builds the representation of an observable resource for an
// observer query, without polling the sensor.
type Renderer interface {
	Render(uri, query string) (model.Representation, error)
}

// SubscriptionSink receives Subscribe on every registration and
// Unsubscribe when a resource loses its last observer.
type SubscriptionSink interface {
	OnSubscriptionEvent(uri string, ev observe.Event) error
}

// Observer is one registered observation.
type Observer struct {
	Peer   string
	Token  []byte
	Query  string
	Sender Sender
}

func (o Observer) key() string {
	return o.Peer + "/" + hex.EncodeToString(o.Token)
}

type resourceObservers struct {
	seq       uint32
	observers map[string]Observer
}

// ObserversConfig configures an Observers registry.
type ObserversConfig struct {
	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives observer and notification events (optional).
	ProtocolLogger log.Logger
}

// Observers tracks the observers of every resource and delivers
// notifications to them. It implements observe.Notifier.
type Observers struct {
	mu        sync.Mutex
	resources map[string]*resourceObservers
	renderer  Renderer
	sink      SubscriptionSink

	// Serializes registration changes with the events they emit.
	eventMu sync.Mutex

	logger   *slog.Logger
	protoLog log.Logger
}

// NewObservers creates an empty registry.
func NewObservers(config ObserversConfig) *Observers {
	return &Observers{
		resources: make(map[string]*resourceObservers),
		logger:    config.Logger,
		protoLog:  log.OrNoop(config.ProtocolLogger),
	}
}

// SetRenderer sets the representation source for notifications.
func (o *Observers) SetRenderer(r Renderer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.renderer = r
}

// SetSink sets the receiver of subscription events.
func (o *Observers) SetSink(s SubscriptionSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sink = s
}

// Register adds an observer of uri. Registering the same peer and token
// again replaces the query. Every registration emits Subscribe, which
// restarts an observation stopped while observers remained. It returns the
// Observe sequence to put in the registration response.
func (o *Observers) Register(uri string, obs Observer) uint32 {
	o.eventMu.Lock()
	defer o.eventMu.Unlock()

	o.mu.Lock()
	res, ok := o.resources[uri]
	if !ok {
		res = &resourceObservers{observers: make(map[string]Observer)}
		o.resources[uri] = res
	}
	res.observers[obs.key()] = obs
	seq := res.seq
	sink := o.sink
	o.mu.Unlock()

	o.logObserver(uri, obs, "", "REGISTERED")
	if sink != nil {
		if err := sink.OnSubscriptionEvent(uri, observe.Subscribe); err != nil {
			o.warnLog("subscribe event rejected", "uri", uri, "error", err)
		}
	}
	return seq
}

// Deregister removes the observer of uri with the given peer and token.
// It reports whether an observer was removed.
func (o *Observers) Deregister(uri, peer string, token []byte) bool {
	o.eventMu.Lock()
	defer o.eventMu.Unlock()

	obs := Observer{Peer: peer, Token: token}

	o.mu.Lock()
	res, ok := o.resources[uri]
	if !ok {
		o.mu.Unlock()
		return false
	}
	if _, ok := res.observers[obs.key()]; !ok {
		o.mu.Unlock()
		return false
	}
	delete(res.observers, obs.key())
	last := len(res.observers) == 0
	sink := o.sink
	o.mu.Unlock()

	o.logObserver(uri, obs, "REGISTERED", "DEREGISTERED")
	if last && sink != nil {
		if err := sink.OnSubscriptionEvent(uri, observe.Unsubscribe); err != nil {
			o.warnLog("unsubscribe event rejected", "uri", uri, "error", err)
		}
	}
	return true
}

// DeregisterPeer removes every observer of peer, e.g. when its client
// connection closes.
func (o *Observers) DeregisterPeer(peer string) int {
	o.mu.Lock()
	type entry struct {
		uri   string
		token []byte
	}
	var found []entry
	for uri, res := range o.resources {
		for _, obs := range res.observers {
			if obs.Peer == peer {
				found = append(found, entry{uri, obs.Token})
			}
		}
	}
	o.mu.Unlock()

	n := 0
	for _, e := range found {
		if o.Deregister(e.uri, peer, e.token) {
			n++
		}
	}
	return n
}

// Count returns the number of observers of uri.
func (o *Observers) Count(uri string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if res, ok := o.resources[uri]; ok {
		return len(res.observers)
	}
	return 0
}

// Sequence returns the Observe sequence of the last notification of uri.
func (o *Observers) Sequence(uri string) uint32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if res, ok := o.resources[uri]; ok {
		return res.seq
	}
	return 0
}

// URIs returns the resources that currently have observers, sorted.
func (o *Observers) URIs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var uris []string
	for uri, res := range o.resources {
		if len(res.observers) > 0 {
			uris = append(uris, uri)
		}
	}
	sort.Strings(uris)
	return uris
}

// NotifyObservers sends the current representation of uri to every
// observer, rendered once per distinct query. Observers whose send fails
// are dropped. It returns NoObservers when none remain.
func (o *Observers) NotifyObservers(ctx context.Context, uri string, qos wire.QoS) (observe.Delivery, error) {
	o.mu.Lock()
	renderer := o.renderer
	res, ok := o.resources[uri]
	if !ok || len(res.observers) == 0 {
		o.mu.Unlock()
		return observe.NoObservers, nil
	}
	res.seq = (res.seq + 1) & maxObserveSequence
	seq := res.seq
	targets := make([]Observer, 0, len(res.observers))
	for _, obs := range res.observers {
		targets = append(targets, obs)
	}
	o.mu.Unlock()

	if renderer == nil {
		return observe.Delivered, ErrNoRenderer
	}

	payloads := make(map[string][]byte)
	var failed []Observer
	var firstErr error
	for _, obs := range targets {
		payload, ok := payloads[obs.Query]
		if !ok {
			rep, err := renderer.Render(uri, obs.Query)
			if err == nil {
				payload, err = rep.Encode()
			}
			if err != nil {
				o.debugLog("observer query not renderable", "uri", uri, "query", obs.Query, "error", err)
				failed = append(failed, obs)
				continue
			}
			payloads[obs.Query] = payload
		}

		start := time.Now()
		err := obs.Sender.Send(ctx, Notification{
			Token:       obs.Token,
			Sequence:    seq,
			Confirmable: qos == wire.QoSHigh,
			Payload:     payload,
		})
		if err != nil {
			if ctx.Err() != nil {
				return observe.Delivered, ctx.Err()
			}
			o.warnLog("notification not delivered; dropping observer", "uri", uri, "peer", obs.Peer, "error", err)
			o.logError(uri, obs, err)
			failed = append(failed, obs)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		o.logNotification(uri, obs, seq, payload, time.Since(start))
	}

	if len(failed) == 0 {
		return observe.Delivered, nil
	}

	o.mu.Lock()
	for _, obs := range failed {
		delete(res.observers, obs.key())
	}
	remaining := len(res.observers)
	o.mu.Unlock()

	if remaining == 0 {
		return observe.NoObservers, nil
	}
	return observe.Delivered, nil
}

func (o *Observers) logObserver(uri string, obs Observer, oldState, newState string) {
	o.protoLog.Log(log.Event{
		Timestamp:  time.Now(),
		RemoteAddr: obs.Peer,
		Layer:      log.LayerObservation,
		Category:   log.CategoryState,
		URI:        uri,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityObserver,
			OldState: oldState,
			NewState: newState,
			Reason:   "token " + hex.EncodeToString(obs.Token),
		},
	})
}

func (o *Observers) logNotification(uri string, obs Observer, seq uint32, payload []byte, elapsed time.Duration) {
	diag, _ := wire.Diagnose(payload)
	o.protoLog.Log(log.Event{
		Timestamp:  time.Now(),
		RemoteAddr: obs.Peer,
		Direction:  log.DirectionOut,
		Layer:      log.LayerTransport,
		Category:   log.CategoryMessage,
		URI:        uri,
		Message: &log.MessageEvent{
			Type:           log.MessageTypeNotification,
			Token:          hex.EncodeToString(obs.Token),
			Query:          obs.Query,
			Sequence:       &seq,
			Payload:        diag,
			ProcessingTime: &elapsed,
		},
	})
}

func (o *Observers) logError(uri string, obs Observer, err error) {
	o.protoLog.Log(log.Event{
		Timestamp:  time.Now(),
		RemoteAddr: obs.Peer,
		Direction:  log.DirectionOut,
		Layer:      log.LayerTransport,
		Category:   log.CategoryError,
		URI:        uri,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: "notify",
		},
	})
}

func (o *Observers) debugLog(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

func (o *Observers) warnLog(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
