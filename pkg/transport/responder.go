package transport

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/mux"

	"github.com/ocf-bpm/bpm-go/pkg/log"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// ErrBadHandle is returned when a response handle did not come from this package.
var ErrBadHandle = errors.New("transport: response handle is not an exchange")

// ResponseSetter is the part of a CoAP response writer a response needs.
type ResponseSetter interface {
	SetResponse(code codes.Code, contentFormat message.MediaType, d io.ReadSeeker, opts ...message.Option) error
}

// Exchange is the response handle of one incoming request.
type Exchange struct {
	URI     string
	Peer    string
	Token   []byte
	Writer  ResponseSetter
	Started time.Time

	// Observe is set on successful observe registrations and carries the
	// sequence number of the registration response.
	Observe *uint32

	responded bool
	outcome   wire.Outcome
}

// Responded reports whether a response was sent and which outcome it carried.
func (e *Exchange) Responded() (wire.Outcome, bool) {
	return e.outcome, e.responded
}

// Responder writes dispatch outcomes as CoAP responses.
// It implements resource.Responder.
type Responder struct {
	protoLog log.Logger
}

// NewResponder creates a responder. protoLog may be nil.
func NewResponder(protoLog log.Logger) *Responder {
	return &Responder{protoLog: log.OrNoop(protoLog)}
}

// Respond sends outcome, and payload if non-nil, on the exchange in handle.
func (r *Responder) Respond(handle any, outcome wire.Outcome, payload *model.Representation) error {
	ex, ok := handle.(*Exchange)
	if !ok || ex == nil || ex.Writer == nil {
		return ErrBadHandle
	}

	var opts []message.Option
	if ex.Observe != nil && outcome == wire.OK {
		opts = append(opts, ObserveOption(*ex.Observe))
	}

	var body io.ReadSeeker
	var data []byte
	if payload != nil {
		var err error
		data, err = payload.Encode()
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		body = bytes.NewReader(data)
	}

	if err := ex.Writer.SetResponse(OutcomeCode(outcome), message.AppOcfCbor, body, opts...); err != nil {
		return err
	}
	ex.responded = true
	ex.outcome = outcome

	r.logResponse(ex, outcome, data)
	return nil
}

func (r *Responder) logResponse(ex *Exchange, outcome wire.Outcome, data []byte) {
	var diag string
	if len(data) > 0 {
		diag, _ = wire.Diagnose(data)
	}
	msg := &log.MessageEvent{
		Type:    log.MessageTypeResponse,
		Token:   hex.EncodeToString(ex.Token),
		Outcome: &outcome,
		Payload: diag,
	}
	if ex.Observe != nil && outcome == wire.OK {
		seq := *ex.Observe
		msg.Sequence = &seq
	}
	if !ex.Started.IsZero() {
		elapsed := time.Since(ex.Started)
		msg.ProcessingTime = &elapsed
	}
	r.protoLog.Log(log.Event{
		Timestamp: time.Now(),
		PeerID:    ex.Peer,
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		URI:       ex.URI,
		Message:   msg,
	})
}

var _ resource.Responder = (*Responder)(nil)

// clientSender writes notifications through a go-coap client.
type clientSender struct {
	client mux.Client
}

// NewSender returns a Sender writing to client. Confirmable notifications
// fall back to non-confirmable when the connection cannot set the type.
func NewSender(client mux.Client) Sender {
	return &clientSender{client: client}
}

func (s *clientSender) Send(ctx context.Context, n Notification) error {
	opts, err := notificationOptions(n.Sequence)
	if err != nil {
		return err
	}

	if n.Confirmable {
		if cc, ok := s.client.ClientConn().(confirmableConn); ok {
			return writeConfirmable(ctx, cc, n, opts)
		}
	}

	return s.client.WriteMessage(&message.Message{
		Code:    codes.Content,
		Token:   n.Token,
		Context: ctx,
		Options: opts,
		Body:    bytes.NewReader(n.Payload),
	})
}

// notificationOptions builds Content-Format and Observe options.
// Each option gets its own buffer so values never alias.
func notificationOptions(seq uint32) (message.Options, error) {
	var opts message.Options
	opts, _, err := opts.SetContentFormat(make([]byte, 4), message.AppOcfCbor)
	if err != nil {
		return nil, fmt.Errorf("cannot set content format: %w", err)
	}
	opts, _, err = opts.SetObserve(make([]byte, 4), seq&maxObserveSequence)
	if err != nil {
		return nil, fmt.Errorf("cannot set observe: %w", err)
	}
	return opts, nil
}
