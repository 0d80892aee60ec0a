package transport_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocf-bpm/bpm-go/pkg/log"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
	"github.com/ocf-bpm/bpm-go/pkg/transport"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

type memLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (m *memLogger) Log(e log.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *memLogger) count(typ log.MessageType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.Message != nil && e.Message.Type == typ {
			n++
		}
	}
	return n
}

type testDevice struct {
	ctrl      *resource.Controller
	observers *transport.Observers
	server    *transport.Server
	client    *transport.Client
	protoLog  *memLogger
}

func startTestDevice(t *testing.T, interval time.Duration) *testDevice {
	t.Helper()

	d := &testDevice{protoLog: &memLogger{}}
	d.observers = transport.NewObservers(transport.ObserversConfig{ProtocolLogger: d.protoLog})

	cfg := resource.DefaultConfig()
	cfg.Observe.Interval = interval
	src := sensor.NewFixedSource(sensor.NewReading(80, 120, 58))
	d.ctrl = resource.NewController(src, transport.NewResponder(d.protoLog), d.observers, cfg)
	d.observers.SetRenderer(d.ctrl)
	d.observers.SetSink(d.ctrl)
	t.Cleanup(d.ctrl.Close)

	server, err := transport.NewServer(transport.ServerConfig{
		Address:        "127.0.0.1:0",
		Controller:     d.ctrl,
		Observers:      d.observers,
		Device:         model.DefaultDeviceInfo("5f0e9d0c-0000-4000-8000-000000000001"),
		Platform:       model.DefaultPlatformInfo(),
		ProtocolLogger: d.protoLog,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, server.Start(ctx))
	t.Cleanup(func() { _ = server.Stop() })
	d.server = server

	assert.ErrorIs(t, server.Start(ctx), transport.ErrAlreadyRunning)

	c, err := transport.Dial(ctx, server.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	d.client = c
	return d
}

func requestCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewServerRequiresController(t *testing.T) {
	_, err := transport.NewServer(transport.ServerConfig{})
	assert.ErrorIs(t, err, transport.ErrNoController)
}

func TestServerGetBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	d := startTestDevice(t, observe.DefaultInterval)

	resp, err := d.client.Get(requestCtx(t), amURI, "if=oic.if.b")
	require.NoError(t, err)
	assert.Equal(t, wire.OK, resp.Outcome)

	rep, err := resp.Representation()
	require.NoError(t, err)
	entries := rep.Entries()
	require.Len(t, entries, 2)

	href, _ := entries[0].GetString(model.KeyHref)
	assert.Equal(t, model.BloodPressureHref, href)
	bp, ok := entries[0].GetObject(model.KeyRep)
	require.True(t, ok)
	sys, _ := bp.GetInt(model.KeySystolic)
	dia, _ := bp.GetInt(model.KeyDiastolic)
	assert.Equal(t, int64(80), sys)
	assert.Equal(t, int64(120), dia)

	pr, _ := entries[1].GetObject(model.KeyRep)
	pulse, _ := pr.GetInt(model.KeyPulseRate)
	assert.Equal(t, int64(58), pulse)

	assert.Eventually(t, func() bool { return d.protoLog.count(log.MessageTypeResponse) >= 1 }, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, d.protoLog.count(log.MessageTypeRequest), 1)
}

func TestServerRefusals(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	d := startTestDevice(t, observe.DefaultInterval)

	resp, err := d.client.Get(requestCtx(t), amURI, "if=oic.if.xyz")
	require.NoError(t, err)
	assert.Equal(t, wire.Forbidden, resp.Outcome)
	assert.Empty(t, resp.Payload)

	resp, err = d.client.Get(requestCtx(t), amURI, "rt=oic.r.blood.pressure")
	require.NoError(t, err)
	assert.Equal(t, wire.Forbidden, resp.Outcome)

	resp, err = d.client.Get(requestCtx(t), model.BloodPressureHref, "")
	require.NoError(t, err)
	assert.Equal(t, wire.Forbidden, resp.Outcome, "the child refuses direct reads")

	resp, err = d.client.Put(requestCtx(t), amURI, model.NewRepresentation())
	require.NoError(t, err)
	assert.Equal(t, wire.MethodNotAllowed, resp.Outcome)

	resp, err = d.client.Get(requestCtx(t), "/nope", "")
	require.NoError(t, err)
	assert.Equal(t, wire.NotFound, resp.Outcome)
}

func TestServerCoreResources(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	d := startTestDevice(t, observe.DefaultInterval)

	resp, err := d.client.Get(requestCtx(t), model.DeviceHref, "")
	require.NoError(t, err)
	require.Equal(t, wire.OK, resp.Outcome)
	dev, err := resp.Representation()
	require.NoError(t, err)
	di, _ := dev.GetString(model.KeyDeviceID)
	assert.Equal(t, "5f0e9d0c-0000-4000-8000-000000000001", di)

	resp, err = d.client.Get(requestCtx(t), model.PlatformHref, "")
	require.NoError(t, err)
	assert.Equal(t, wire.OK, resp.Outcome)

	resp, err = d.client.Get(requestCtx(t), model.DiscoveryHref, "")
	require.NoError(t, err)
	require.Equal(t, wire.OK, resp.Outcome)
	links, err := resp.Representation()
	require.NoError(t, err)

	var hrefs []string
	for _, l := range links.Entries() {
		h, _ := l.GetString(model.KeyHref)
		hrefs = append(hrefs, h)
	}
	assert.Equal(t, []string{amURI, model.BloodPressureHref, model.DeviceHref, model.PlatformHref}, hrefs)

	resp, err = d.client.Put(requestCtx(t), model.DeviceHref, model.NewRepresentation())
	require.NoError(t, err)
	assert.Equal(t, wire.MethodNotAllowed, resp.Outcome)
}

func TestServerObserve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	d := startTestDevice(t, 50*time.Millisecond)

	var mu sync.Mutex
	var got []transport.Response
	obs, err := d.client.Observe(requestCtx(t), amURI, "", func(r transport.Response) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 3
	}, 5*time.Second, 10*time.Millisecond)

	status, err := d.ctrl.Status(amURI)
	require.NoError(t, err)
	assert.Equal(t, observe.Active, status)
	assert.Equal(t, 1, d.observers.Count(amURI))

	mu.Lock()
	for _, r := range got {
		assert.Equal(t, wire.OK, r.Outcome)
		assert.NotNil(t, r.Observe)
		rep, err := r.Representation()
		require.NoError(t, err)
		assert.Len(t, rep.Entries(), 2)
	}
	mu.Unlock()

	require.NoError(t, obs.Cancel(requestCtx(t)))

	assert.Eventually(t, func() bool {
		s, _ := d.ctrl.Status(amURI)
		return s == observe.Idle && d.observers.Count(amURI) == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Greater(t, d.protoLog.count(log.MessageTypeNotification), 0)
}

func TestServerObserveRefusedQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}
	d := startTestDevice(t, 50*time.Millisecond)

	_, _ = d.client.Observe(requestCtx(t), amURI, "if=oic.if.xyz", func(transport.Response) {})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, d.observers.Count(amURI), "a refused registration is not kept")
	status, _ := d.ctrl.Status(amURI)
	assert.Equal(t, observe.Idle, status)
}
