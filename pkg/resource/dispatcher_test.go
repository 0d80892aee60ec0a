package resource_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
	"github.com/ocf-bpm/bpm-go/pkg/resource/mocks"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

func newTestDispatcher(t *testing.T) (*resource.Dispatcher, *mocks.MockResponder, *sensor.FixedSource) {
	t.Helper()
	src := sensor.NewFixedSource(testReading)
	responder := mocks.NewMockResponder(t)
	builder := resource.NewAtomicMeasurementBuilder(resource.NewState(src))
	return resource.NewDispatcher(model.AtomicMeasurementHref, builder, responder, nil), responder, src
}

func TestDispatchGetOK(t *testing.T) {
	d, responder, _ := newTestDispatcher(t)

	var got *model.Representation
	responder.EXPECT().Respond("h1", wire.OK, mock.Anything).
		Run(func(_ any, _ wire.Outcome, payload *model.Representation) { got = payload }).
		Return(nil).Once()

	outcome := d.Dispatch(&wire.Request{Method: wire.MethodGet, Query: "if=oic.if.b", Handle: "h1"})

	assert.Equal(t, wire.OK, outcome)
	require.NotNil(t, got)
	assert.Len(t, got.Entries(), 2)
}

func TestDispatchForbiddenHasNoPayload(t *testing.T) {
	d, responder, _ := newTestDispatcher(t)

	responder.EXPECT().Respond("h", wire.Forbidden, (*model.Representation)(nil)).Return(nil).Once()

	outcome := d.Dispatch(&wire.Request{Method: wire.MethodGet, Query: "if=oic.if.xyz", Handle: "h"})
	assert.Equal(t, wire.Forbidden, outcome)
}

func TestDispatchTypeQueryForbidden(t *testing.T) {
	d, responder, _ := newTestDispatcher(t)

	responder.EXPECT().Respond(mock.Anything, wire.Forbidden, (*model.Representation)(nil)).Return(nil).Once()

	assert.Equal(t, wire.Forbidden, d.Dispatch(&wire.Request{Method: wire.MethodGet, Query: "rt=oic.r.pulserate"}))
}

func TestDispatchWriteMethodNotAllowed(t *testing.T) {
	for _, method := range []wire.Method{wire.MethodPost, wire.MethodPut, wire.MethodDelete, wire.MethodUnknown} {
		for _, query := range []string{"", "if=oic.if.b", "if=oic.if.xyz", "rt=x"} {
			d, responder, src := newTestDispatcher(t)
			responder.EXPECT().Respond(mock.Anything, wire.MethodNotAllowed, (*model.Representation)(nil)).Return(nil).Once()

			outcome := d.Dispatch(&wire.Request{
				Method:   method,
				Query:    query,
				Body:     []byte{0xa0},
				BodyKind: wire.PayloadRepresentation,
			})
			assert.Equal(t, wire.MethodNotAllowed, outcome, "%s ?%s", method, query)
			assert.Equal(t, int64(0), src.Polls(), "rejected request must not poll")
		}
	}
}

func TestDispatchInvalidPayloadKind(t *testing.T) {
	d, responder, src := newTestDispatcher(t)

	responder.EXPECT().Respond(mock.Anything, wire.InvalidPayloadKind, (*model.Representation)(nil)).Return(nil).Twice()

	// Checked before the method.
	assert.Equal(t, wire.InvalidPayloadKind, d.Dispatch(&wire.Request{
		Method: wire.MethodGet, Body: []byte("text"), BodyKind: wire.PayloadOther,
	}))
	assert.Equal(t, wire.InvalidPayloadKind, d.Dispatch(&wire.Request{
		Method: wire.MethodPost, Body: []byte("text"), BodyKind: wire.PayloadOther,
	}))
	assert.Equal(t, int64(0), src.Polls())
}

func TestDispatchRepresentationBodyAccepted(t *testing.T) {
	d, responder, _ := newTestDispatcher(t)
	responder.EXPECT().Respond(mock.Anything, wire.OK, mock.Anything).Return(nil).Once()

	outcome := d.Dispatch(&wire.Request{
		Method: wire.MethodGet, Body: []byte{0xa0}, BodyKind: wire.PayloadRepresentation,
	})
	assert.Equal(t, wire.OK, outcome)
}

func TestDispatchNilRequest(t *testing.T) {
	d, _, src := newTestDispatcher(t)

	// No Respond expectation: nothing may be emitted.
	assert.Equal(t, wire.InternalError, d.Dispatch(nil))
	assert.Equal(t, int64(0), src.Polls())
}

func TestDispatchTransmissionFailure(t *testing.T) {
	d, responder, _ := newTestDispatcher(t)
	responder.EXPECT().Respond(mock.Anything, wire.OK, mock.Anything).Return(errors.New("socket closed")).Once()

	assert.Equal(t, wire.InternalError, d.Dispatch(&wire.Request{Method: wire.MethodGet}))
}

func TestDispatchBuilderFailure(t *testing.T) {
	responder := mocks.NewMockResponder(t)
	builder := mocks.NewMockBuilder(t)
	d := resource.NewDispatcher("/x", builder, responder, nil)

	builder.EXPECT().Build(mock.Anything).Return(model.Representation{}, errors.New("broken")).Once()
	responder.EXPECT().Respond(mock.Anything, wire.InternalError, (*model.Representation)(nil)).Return(nil).Once()

	assert.Equal(t, wire.InternalError, d.Dispatch(&wire.Request{Method: wire.MethodGet}))
}

func TestDispatchPassesParsedSelector(t *testing.T) {
	responder := mocks.NewMockResponder(t)
	builder := mocks.NewMockBuilder(t)
	d := resource.NewDispatcher("/x", builder, responder, nil)

	builder.EXPECT().Build(resource.Selector{Kind: resource.KindLinkedList, Query: "if=oic.if.ll"}).
		Return(model.NewRepresentation(), nil).Once()
	responder.EXPECT().Respond(mock.Anything, wire.OK, mock.Anything).Return(nil).Once()

	assert.Equal(t, wire.OK, d.Dispatch(&wire.Request{Method: wire.MethodGet, Query: "if=oic.if.ll"}))
}
