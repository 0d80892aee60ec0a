package transport

import (
	"bytes"
	"context"
	"fmt"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/plgd-dev/go-coap/v2/udp"
	"github.com/plgd-dev/go-coap/v2/udp/client"
	"github.com/plgd-dev/go-coap/v2/udp/message/pool"

	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// Response is a decoded CoAP response or notification.
type Response struct {
	Code          codes.Code
	Outcome       wire.Outcome
	ContentFormat message.MediaType
	Observe       *uint32
	Payload       []byte
}

// Representation decodes the payload.
func (r Response) Representation() (model.Representation, error) {
	return model.Decode(r.Payload)
}

// Diagnose returns the payload in CBOR diagnostic notation.
func (r Response) Diagnose() string {
	d, err := wire.Diagnose(r.Payload)
	if err != nil {
		return fmt.Sprintf("<%d bytes: %v>", len(r.Payload), err)
	}
	return d
}

// Client is a CoAP client for a blood pressure monitor.
type Client struct {
	cc *client.ClientConn
}

// Dial connects to the device at addr (host:port).
func Dial(ctx context.Context, addr string) (*Client, error) {
	cc, err := udp.Dial(addr, udp.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

// Get reads uri with the given raw query.
func (c *Client) Get(ctx context.Context, uri, query string) (Response, error) {
	m, err := c.cc.Get(ctx, uri, QueryOptions(query)...)
	if err != nil {
		return Response{}, err
	}
	return toResponse(m)
}

// Put writes rep to uri. The device refuses writes; this exists to check that.
func (c *Client) Put(ctx context.Context, uri string, rep model.Representation) (Response, error) {
	data, err := rep.Encode()
	if err != nil {
		return Response{}, err
	}
	m, err := c.cc.Put(ctx, uri, message.AppOcfCbor, bytes.NewReader(data))
	if err != nil {
		return Response{}, err
	}
	return toResponse(m)
}

// Observation is an active observe registration.
type Observation interface {
	Cancel(ctx context.Context) error
}

// Observe registers for notifications of uri. fn receives the registration
// response followed by every notification, on the connection goroutine.
func (c *Client) Observe(ctx context.Context, uri, query string, fn func(Response)) (Observation, error) {
	obs, err := c.cc.Observe(ctx, uri, func(m *pool.Message) {
		resp, err := toResponse(m)
		if err != nil {
			return
		}
		fn(resp)
	}, QueryOptions(query)...)
	if err != nil {
		return nil, err
	}
	return obs, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.cc.Close()
}

func toResponse(m *pool.Message) (Response, error) {
	resp := Response{
		Code:    m.Code(),
		Outcome: CodeOutcome(m.Code()),
	}
	if cf, err := m.Options().ContentFormat(); err == nil {
		resp.ContentFormat = cf
	}
	if obs, err := m.Options().Observe(); err == nil {
		resp.Observe = &obs
	}
	if m.Body() != nil {
		body, err := m.ReadBody()
		if err != nil {
			return Response{}, fmt.Errorf("failed to read body: %w", err)
		}
		resp.Payload = body
	}
	return resp, nil
}
