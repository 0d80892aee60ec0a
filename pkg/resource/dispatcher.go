package resource

import (
	"errors"
	"log/slog"

	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// Responder emits the response for a request.
type Responder interface {
	// Respond sends outcome and an optional payload for the request
	// identified by handle. payload is nil for every outcome but OK.
	Respond(handle any, outcome wire.Outcome, payload *model.Representation) error
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(handle any, outcome wire.Outcome, payload *model.Representation) error

// Respond calls f.
func (f ResponderFunc) Respond(handle any, outcome wire.Outcome, payload *model.Representation) error {
	return f(handle, outcome, payload)
}

// Dispatcher validates requests for one resource and responds exactly once.
type Dispatcher struct {
	uri       string
	builder   Builder
	responder Responder
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger disables logging.
func NewDispatcher(uri string, builder Builder, responder Responder, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		uri:       uri,
		builder:   builder,
		responder: responder,
		logger:    logger,
	}
}

// Dispatch runs one request to completion and returns its outcome.
//
// A nil request yields InternalError with nothing emitted. Every other request
// emits exactly one response; if that emission fails the outcome becomes
// InternalError.
func (d *Dispatcher) Dispatch(req *wire.Request) wire.Outcome {
	if req == nil {
		d.errorLog("dispatch: rejected", "error", ErrNilRequest)
		return wire.InternalError
	}

	outcome, payload := d.evaluate(req)
	return d.respond(req, outcome, payload)
}

// evaluate takes a validated request to Built or Rejected.
func (d *Dispatcher) evaluate(req *wire.Request) (wire.Outcome, *model.Representation) {
	if req.HasBody() && req.BodyKind != wire.PayloadRepresentation {
		d.debugLog("dispatch: payload is not a representation", "kind", req.BodyKind)
		return wire.InvalidPayloadKind, nil
	}

	if !req.Method.IsRead() {
		d.debugLog("dispatch: method not allowed", "method", req.Method)
		return wire.MethodNotAllowed, nil
	}

	sel := ParseQuery(req.Query)
	rep, err := d.builder.Build(sel)
	switch {
	case err == nil:
		return wire.OK, &rep
	case errors.Is(err, ErrForbidden):
		d.debugLog("dispatch: forbidden", "selector", sel, "query", req.Query)
		return wire.Forbidden, nil
	default:
		d.errorLog("dispatch: build failed", "selector", sel, "error", err)
		return wire.InternalError, nil
	}
}

func (d *Dispatcher) respond(req *wire.Request, outcome wire.Outcome, payload *model.Representation) wire.Outcome {
	if err := d.responder.Respond(req.Handle, outcome, payload); err != nil {
		d.warnLog("dispatch: response not sent", "outcome", outcome, "error", err)
		return wire.InternalError
	}
	return outcome
}

func (d *Dispatcher) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, append([]any{"uri", d.uri}, args...)...)
	}
}

func (d *Dispatcher) warnLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, append([]any{"uri", d.uri}, args...)...)
	}
}

func (d *Dispatcher) errorLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Error(msg, append([]any{"uri", d.uri}, args...)...)
	}
}
