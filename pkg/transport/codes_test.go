package transport_test

import (
	"io"
	"testing"

	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/transport"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

func TestOutcomeCodes(t *testing.T) {
	tests := []struct {
		outcome wire.Outcome
		code    codes.Code
	}{
		{wire.OK, codes.Content},
		{wire.Forbidden, codes.Forbidden},
		{wire.MethodNotAllowed, codes.MethodNotAllowed},
		{wire.InvalidPayloadKind, codes.BadRequest},
		{wire.NotFound, codes.NotFound},
		{wire.InternalError, codes.InternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, transport.OutcomeCode(tt.outcome))
			assert.Equal(t, tt.outcome, transport.CodeOutcome(tt.code))
		})
	}
	assert.Equal(t, wire.InternalError, transport.CodeOutcome(codes.ServiceUnavailable))
}

func TestCodeMethod(t *testing.T) {
	assert.Equal(t, wire.MethodGet, transport.CodeMethod(codes.GET))
	assert.Equal(t, wire.MethodPost, transport.CodeMethod(codes.POST))
	assert.Equal(t, wire.MethodPut, transport.CodeMethod(codes.PUT))
	assert.Equal(t, wire.MethodDelete, transport.CodeMethod(codes.DELETE))
	assert.Equal(t, wire.MethodUnknown, transport.CodeMethod(codes.Content))
}

func TestQueryOptions(t *testing.T) {
	assert.Empty(t, transport.QueryOptions(""))

	opts := transport.QueryOptions("if=oic.if.b&rt=x")
	require.Len(t, opts, 2)
	assert.Equal(t, message.URIQuery, opts[0].ID)
	assert.Equal(t, []byte("if=oic.if.b"), opts[0].Value)
	assert.Equal(t, []byte("rt=x"), opts[1].Value)

	assert.Equal(t, "if=oic.if.b&rt=x", transport.JoinQuery(transport.SplitQuery("if=oic.if.b&rt=x")))
}

func TestObserveOption(t *testing.T) {
	assert.Empty(t, transport.ObserveOption(0).Value, "zero encodes as an empty option")
	assert.Equal(t, []byte{5}, transport.ObserveOption(5).Value)
	assert.Equal(t, []byte{0x01, 0x00}, transport.ObserveOption(256).Value)
	assert.Equal(t, []byte{1}, transport.ObserveOption(1<<24+1).Value, "wraps at 24 bits")
	assert.Equal(t, message.Observe, transport.ObserveOption(1).ID)
}

func TestIsRepresentationFormat(t *testing.T) {
	assert.True(t, transport.IsRepresentationFormat(message.AppCBOR))
	assert.True(t, transport.IsRepresentationFormat(message.AppOcfCbor))
	assert.False(t, transport.IsRepresentationFormat(message.AppJSON))
	assert.False(t, transport.IsRepresentationFormat(message.TextPlain))
}

type recordedResponse struct {
	code codes.Code
	cf   message.MediaType
	body []byte
	opts []message.Option
}

type fakeWriter struct {
	responses []recordedResponse
	err       error
}

func (f *fakeWriter) SetResponse(code codes.Code, cf message.MediaType, d io.ReadSeeker, opts ...message.Option) error {
	if f.err != nil {
		return f.err
	}
	r := recordedResponse{code: code, cf: cf, opts: opts}
	if d != nil {
		r.body, _ = io.ReadAll(d)
	}
	f.responses = append(f.responses, r)
	return nil
}

func TestResponderWritesOutcome(t *testing.T) {
	responder := transport.NewResponder(nil)
	w := &fakeWriter{}
	ex := &transport.Exchange{URI: amURI, Writer: w}

	rep := model.NewRepresentation()
	rep.SetInt(model.KeySystolic, 120)
	require.NoError(t, responder.Respond(ex, wire.OK, &rep))

	require.Len(t, w.responses, 1)
	got := w.responses[0]
	assert.Equal(t, codes.Content, got.code)
	assert.Equal(t, message.AppOcfCbor, got.cf)
	assert.Empty(t, got.opts, "no observe option outside registrations")

	decoded, err := model.Decode(got.body)
	require.NoError(t, err)
	v, _ := decoded.GetInt(model.KeySystolic)
	assert.Equal(t, int64(120), v)

	outcome, ok := ex.Responded()
	assert.True(t, ok)
	assert.Equal(t, wire.OK, outcome)
}

func TestResponderObserveRegistration(t *testing.T) {
	responder := transport.NewResponder(nil)

	seq := uint32(9)
	w := &fakeWriter{}
	require.NoError(t, responder.Respond(&transport.Exchange{Writer: w, Observe: &seq}, wire.OK, nil))
	require.Len(t, w.responses[0].opts, 1)
	assert.Equal(t, transport.ObserveOption(9), w.responses[0].opts[0])
	assert.Nil(t, w.responses[0].body)

	// A refused registration carries no observe option.
	w = &fakeWriter{}
	require.NoError(t, responder.Respond(&transport.Exchange{Writer: w, Observe: &seq}, wire.Forbidden, nil))
	assert.Equal(t, codes.Forbidden, w.responses[0].code)
	assert.Empty(t, w.responses[0].opts)
}

func TestResponderErrors(t *testing.T) {
	responder := transport.NewResponder(nil)

	assert.ErrorIs(t, responder.Respond("not an exchange", wire.OK, nil), transport.ErrBadHandle)
	assert.ErrorIs(t, responder.Respond(&transport.Exchange{}, wire.OK, nil), transport.ErrBadHandle)

	w := &fakeWriter{err: io.ErrClosedPipe}
	ex := &transport.Exchange{Writer: w}
	assert.ErrorIs(t, responder.Respond(ex, wire.Forbidden, nil), io.ErrClosedPipe)
	_, ok := ex.Responded()
	assert.False(t, ok)
}
