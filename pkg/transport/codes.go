package transport

import (
	"errors"
	"io"
	"strings"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/mux"

	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// DefaultAddress is the CoAP listen address.
const DefaultAddress = ":5683"

// Observe option values.
const (
	ObserveRegister   uint32 = 0
	ObserveDeregister uint32 = 1
)

// maxObserveSequence bounds the 24-bit Observe option value.
const maxObserveSequence = 1<<24 - 1

// OutcomeCode returns the CoAP response code for a dispatch outcome.
func OutcomeCode(o wire.Outcome) codes.Code {
	switch o {
	case wire.OK:
		return codes.Content
	case wire.Forbidden:
		return codes.Forbidden
	case wire.MethodNotAllowed:
		return codes.MethodNotAllowed
	case wire.InvalidPayloadKind:
		return codes.BadRequest
	case wire.NotFound:
		return codes.NotFound
	default:
		return codes.InternalServerError
	}
}

// CodeOutcome is the inverse of OutcomeCode, used on the client side.
func CodeOutcome(c codes.Code) wire.Outcome {
	switch c {
	case codes.Content:
		return wire.OK
	case codes.Forbidden:
		return wire.Forbidden
	case codes.MethodNotAllowed:
		return wire.MethodNotAllowed
	case codes.BadRequest:
		return wire.InvalidPayloadKind
	case codes.NotFound:
		return wire.NotFound
	default:
		return wire.InternalError
	}
}

// CodeMethod maps a CoAP request code to a method.
func CodeMethod(c codes.Code) wire.Method {
	switch c {
	case codes.GET:
		return wire.MethodGet
	case codes.POST:
		return wire.MethodPost
	case codes.PUT:
		return wire.MethodPut
	case codes.DELETE:
		return wire.MethodDelete
	default:
		return wire.MethodUnknown
	}
}

// IsRepresentationFormat reports whether mt carries a CBOR representation.
func IsRepresentationFormat(mt message.MediaType) bool {
	return mt == message.AppCBOR || mt == message.AppOcfCbor
}

// JoinQuery joins Uri-Query options with '&'.
func JoinQuery(queries []string) string {
	return strings.Join(queries, "&")
}

// SplitQuery splits a raw query into Uri-Query options.
func SplitQuery(query string) []string {
	if query == "" {
		return nil
	}
	return strings.Split(query, "&")
}

// QueryOptions returns one Uri-Query option per '&'-separated term.
func QueryOptions(query string) []message.Option {
	terms := SplitQuery(query)
	opts := make([]message.Option, 0, len(terms))
	for _, t := range terms {
		opts = append(opts, message.Option{ID: message.URIQuery, Value: []byte(t)})
	}
	return opts
}

// ObserveOption encodes seq as an Observe option.
func ObserveOption(seq uint32) message.Option {
	buf := make([]byte, 4)
	n, _ := message.EncodeUint32(buf, seq&maxObserveSequence)
	return message.Option{ID: message.Observe, Value: buf[:n]}
}

// parsedRequest is an incoming CoAP request mapped onto wire types.
type parsedRequest struct {
	path    string
	req     wire.Request
	observe *uint32
}

// parseRequest reads the path, query, observe option and body of r.
func parseRequest(r *mux.Message) (parsedRequest, error) {
	var p parsedRequest
	path, err := r.Options.Path()
	if err != nil {
		return p, err
	}
	p.path = "/" + strings.TrimPrefix(path, "/")

	p.req.Method = CodeMethod(r.Code)

	queries, err := r.Options.Queries()
	if err != nil && !errors.Is(err, message.ErrOptionNotFound) {
		return p, err
	}
	p.req.Query = JoinQuery(queries)

	if obs, err := r.Options.Observe(); err == nil {
		p.observe = &obs
	}

	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return p, err
		}
		if len(body) > 0 {
			p.req.Body = body
			p.req.BodyKind = wire.PayloadOther
			if cf, err := r.Options.ContentFormat(); err == nil && IsRepresentationFormat(cf) {
				p.req.BodyKind = wire.PayloadRepresentation
			}
		}
	}
	return p, nil
}
