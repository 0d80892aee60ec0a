package resource

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// EventType identifies a controller event.
type EventType uint8

const (
	// EventRequestHandled follows every HandleRequest call.
	EventRequestHandled EventType = iota + 1

	// EventObservationChanged follows every Idle/Active transition.
	EventObservationChanged

	// EventPushed follows every push attempt of an observation loop.
	EventPushed

	// EventSensorPolled follows every sensor poll.
	EventSensorPolled
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventRequestHandled:
		return "REQUEST_HANDLED"
	case EventObservationChanged:
		return "OBSERVATION_CHANGED"
	case EventPushed:
		return "PUSHED"
	case EventSensorPolled:
		return "SENSOR_POLLED"
	default:
		return "UNKNOWN"
	}
}

// Event describes something that happened in the controller.
// Only the fields relevant to Type are set.
type Event struct {
	Type     EventType
	URI      string
	Method   wire.Method
	Query    string
	Outcome  wire.Outcome
	Status   observe.Status
	Delivery observe.Delivery
	Reading  sensor.Reading
	Err      error
}

// Config configures a Controller.
type Config struct {
	// Observe configures the observation loop of observable resources.
	Observe observe.Config

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{Observe: observe.DefaultConfig()}
}

// Resource is one served resource.
type Resource struct {
	URI        string
	Types      []string
	Interfaces []string

	State      *State
	Builder    Builder
	Dispatcher *Dispatcher

	// Observer is nil for resources that cannot be observed.
	Observer *observe.Manager
}

// Observable reports whether the resource accepts observation.
func (r *Resource) Observable() bool {
	return r.Observer != nil
}

// Link returns the discovery link of the resource.
func (r *Resource) Link() model.Representation {
	bm := model.BitmapDiscoverable
	if r.Observable() {
		bm |= model.BitmapObservable
	}
	return model.ChildDescriptor{
		Href:          r.URI,
		ResourceTypes: r.Types,
		Interfaces:    r.Interfaces,
		Bitmap:        bm,
	}.Link()
}

// Controller owns the device resources and routes requests and
// subscription events to them.
type Controller struct {
	mu        sync.RWMutex
	resources map[string]*Resource
	responder Responder
	logger    *slog.Logger

	listeners []func(Event)
}

// NewController creates the atomic measurement collection and its blood
// pressure child. Both poll src. Responses go through responder and pushes
// through notifier.
func NewController(src sensor.Source, responder Responder, notifier observe.Notifier, config Config) *Controller {
	c := &Controller{
		resources: make(map[string]*Resource),
		responder: responder,
		logger:    config.Logger,
	}

	if config.Observe.Logger == nil {
		config.Observe.Logger = config.Logger
	}

	// Atomic measurement collection: readable and observable.
	amState := NewState(src)
	amBuilder := NewAtomicMeasurementBuilder(amState)
	am := &Resource{
		URI:   model.AtomicMeasurementHref,
		Types: []string{model.ResourceTypeBloodPressureMonitorAM, model.ResourceTypeAtomicMeasurement},
		Interfaces: []string{
			model.InterfaceBatch,
			model.InterfaceLinkedList,
			model.InterfaceBaseline,
		},
		State:      amState,
		Builder:    amBuilder,
		Dispatcher: NewDispatcher(model.AtomicMeasurementHref, amBuilder, responder, config.Logger),
		Observer:   observe.NewManager(model.AtomicMeasurementHref, amState, notifier, config.Observe),
	}
	c.add(am)

	// Linked child: every request is refused.
	child := model.BloodPressureChild()
	bp := &Resource{
		URI:        child.Href,
		Types:      child.ResourceTypes,
		Interfaces: child.Interfaces,
		State:      NewState(src),
		Builder:    ForbiddenBuilder{},
		Dispatcher: NewDispatcher(child.Href, ForbiddenBuilder{}, responder, config.Logger),
	}
	c.add(bp)

	return c
}

func (c *Controller) add(r *Resource) {
	c.resources[r.URI] = r

	r.State.OnRefresh(func(reading sensor.Reading) {
		c.emit(Event{Type: EventSensorPolled, URI: r.URI, Reading: reading})
	})

	if r.Observer == nil {
		return
	}
	r.Observer.OnStatusChange(func(uri string, status observe.Status) {
		c.emit(Event{Type: EventObservationChanged, URI: uri, Status: status})
	})
	r.Observer.OnPush(func(res observe.PushResult) {
		c.emit(Event{
			Type:     EventPushed,
			URI:      res.URI,
			Delivery: res.Delivery,
			Reading:  res.Reading,
			Err:      res.Err,
		})
	})
}

// OnEvent registers a listener for controller events.
// Listeners run on the goroutine that caused the event and must not block.
func (c *Controller) OnEvent(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) emit(ev Event) {
	c.mu.RLock()
	listeners := c.listeners
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// Resource returns the resource at uri.
func (c *Controller) Resource(uri string) (*Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.resources[uri]
	return r, ok
}

// URIs returns the served resource URIs, sorted.
func (c *Controller) URIs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	uris := make([]string, 0, len(c.resources))
	for uri := range c.resources {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// HandleRequest dispatches req to the resource at uri.
// An unknown uri is answered with NotFound.
func (c *Controller) HandleRequest(uri string, req *wire.Request) wire.Outcome {
	r, ok := c.Resource(uri)

	var outcome wire.Outcome
	switch {
	case ok:
		outcome = r.Dispatcher.Dispatch(req)
	case req == nil:
		outcome = wire.InternalError
	default:
		outcome = wire.NotFound
		if err := c.responder.Respond(req.Handle, wire.NotFound, nil); err != nil {
			c.warnLog("handle request: response not sent", "uri", uri, "error", err)
			outcome = wire.InternalError
		}
	}

	ev := Event{Type: EventRequestHandled, URI: uri, Outcome: outcome}
	if req != nil {
		ev.Method = req.Method
		ev.Query = req.Query
	}
	c.emit(ev)

	return outcome
}

// OnSubscriptionEvent applies a subscription event to the resource at uri.
func (c *Controller) OnSubscriptionEvent(uri string, ev observe.Event) error {
	r, ok := c.Resource(uri)
	if !ok {
		return ErrUnknownResource
	}
	if !r.Observable() {
		return ErrNotObservable
	}
	c.debugLog("subscription event", "uri", uri, "event", ev)
	return r.Observer.Handle(ev)
}

// Render returns the representation of the resource at uri for query,
// built from the live reading without polling. Observation pushes use it.
func (c *Controller) Render(uri, query string) (model.Representation, error) {
	r, ok := c.Resource(uri)
	if !ok {
		return model.Representation{}, ErrUnknownResource
	}
	am, ok := r.Builder.(*AtomicMeasurementBuilder)
	if !ok {
		return model.Representation{}, ErrNotObservable
	}
	return am.Render(ParseQuery(query))
}

// Status returns the observation status of the resource at uri.
func (c *Controller) Status(uri string) (observe.Status, error) {
	r, ok := c.Resource(uri)
	if !ok {
		return observe.Idle, ErrUnknownResource
	}
	return r.State.Status(), nil
}

// Links returns the discovery links of all resources, sorted by URI.
func (c *Controller) Links() []model.Representation {
	uris := c.URIs()
	links := make([]model.Representation, 0, len(uris))
	for _, uri := range uris {
		r, _ := c.Resource(uri)
		links = append(links, r.Link())
	}
	return links
}

// Close stops every observation loop.
func (c *Controller) Close() {
	c.mu.RLock()
	var managers []*observe.Manager
	for _, r := range c.resources {
		if r.Observer != nil {
			managers = append(managers, r.Observer)
		}
	}
	c.mu.RUnlock()

	for _, m := range managers {
		m.Close()
	}
}

func (c *Controller) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Controller) warnLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
