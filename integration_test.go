package bpm_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocf-bpm/bpm-go/pkg/discovery"
	"github.com/ocf-bpm/bpm-go/pkg/metrics"
	"github.com/ocf-bpm/bpm-go/pkg/mirror"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
	"github.com/ocf-bpm/bpm-go/pkg/transport"
	"github.com/ocf-bpm/bpm-go/pkg/version"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

const testDeviceID = "0685b960-736f-46f7-bead-0f4a1b6f7e2c"

// recordingPublisher stands in for the MQTT client.
type recordingPublisher struct {
	mu       sync.Mutex
	payloads map[string][][]byte
}

func (p *recordingPublisher) Publish(topic string, payload []byte, _ byte, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.payloads == nil {
		p.payloads = make(map[string][][]byte)
	}
	p.payloads[topic] = append(p.payloads[topic], payload)
	return nil
}

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads[topic])
}

type e2eDevice struct {
	ctrl      *resource.Controller
	observers *transport.Observers
	mirror    *mirror.Notifier
	publisher *recordingPublisher
	registry  *prometheus.Registry
	client    *transport.Client
}

func startE2EDevice(t *testing.T, interval time.Duration) *e2eDevice {
	t.Helper()

	d := &e2eDevice{
		publisher: &recordingPublisher{},
		registry:  prometheus.NewRegistry(),
	}
	d.observers = transport.NewObservers(transport.ObserversConfig{})
	d.mirror = mirror.NewNotifier(d.observers, d.publisher, mirror.NotifierConfig{QoS: 1})

	cfg := resource.DefaultConfig()
	cfg.Observe.Interval = interval
	src := sensor.NewSeededRandomSource(1, 2)
	d.ctrl = resource.NewController(src, transport.NewResponder(nil), d.mirror, cfg)
	t.Cleanup(d.ctrl.Close)

	d.observers.SetRenderer(d.ctrl)
	d.observers.SetSink(d.ctrl)
	d.mirror.SetRenderer(d.ctrl)

	recorder, err := metrics.NewRecorder(d.registry)
	require.NoError(t, err)
	d.ctrl.OnEvent(recorder.Observe)

	server, err := transport.NewServer(transport.ServerConfig{
		Address:    "127.0.0.1:0",
		Controller: d.ctrl,
		Observers:  d.observers,
		Device:     model.DefaultDeviceInfo(testDeviceID),
		Platform:   model.DefaultPlatformInfo(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, server.Start(ctx))
	t.Cleanup(func() { _ = server.Stop() })

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

// TestE2E_ObservationLifecycle registers an observer over CoAP, receives
// periodic notifications, deregisters and checks the loop goes idle.
func TestE2E_ObservationLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	d := startE2EDevice(t, 100*time.Millisecond)
	uri := model.AtomicMeasurementHref

	var mu sync.Mutex
	var seqs []uint32
	var readings []model.Representation
	obs, err := d.client.Observe(requestCtx(t), uri, "if=oic.if.b", func(resp transport.Response) {
		if resp.Observe == nil || resp.Outcome != wire.OK {
			return
		}
		rep, err := resp.Representation()
		if err != nil {
			return
		}
		mu.Lock()
		seqs = append(seqs, *resp.Observe)
		readings = append(readings, rep)
		mu.Unlock()
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seqs) >= 4
	}, 5*time.Second, 20*time.Millisecond)

	status, err := d.ctrl.Status(uri)
	require.NoError(t, err)
	assert.Equal(t, observe.Active, status)

	mu.Lock()
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1], "observe sequence must increase")
	}
	for _, rep := range readings {
		entries := rep.Entries()
		require.Len(t, entries, 2)
		bp, ok := entries[0].GetObject(model.KeyRep)
		require.True(t, ok)
		dia, _ := bp.GetInt(model.KeyDiastolic)
		assert.GreaterOrEqual(t, dia, int64(sensor.DiastolicMin))
		assert.LessOrEqual(t, dia, int64(sensor.DiastolicMax))
	}
	mu.Unlock()

	require.NoError(t, obs.Cancel(requestCtx(t)))

	assert.Eventually(t, func() bool {
		s, _ := d.ctrl.Status(uri)
		return s == observe.Idle
	}, 5*time.Second, 20*time.Millisecond)
	assert.Zero(t, d.observers.Count(uri))

	published, failed := d.mirror.Stats()
	assert.Positive(t, published)
	assert.Zero(t, failed)
	assert.Positive(t, d.publisher.count(mirror.Config{}.Topic(uri)))

	assert.Positive(t, mustGatherCount(t, d.registry, "bpm_notifications_total"))
}

// TestE2E_RefusedShapes checks that only the served shapes are answered.
func TestE2E_RefusedShapes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	d := startE2EDevice(t, time.Second)

	tests := []struct {
		uri   string
		query string
		want  wire.Outcome
	}{
		{model.AtomicMeasurementHref, "", wire.OK},
		{model.AtomicMeasurementHref, "if=oic.if.ll", wire.OK},
		{model.AtomicMeasurementHref, "if=oic.if.baseline", wire.OK},
		{model.AtomicMeasurementHref, "if=oic.if.r", wire.Forbidden},
		{model.AtomicMeasurementHref, "rt=oic.r.blood.pressure", wire.Forbidden},
		{model.BloodPressureHref, "", wire.Forbidden},
		{"/unknown", "", wire.NotFound},
	}
	for _, tt := range tests {
		resp, err := d.client.Get(requestCtx(t), tt.uri, tt.query)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.Outcome, "%s?%s", tt.uri, tt.query)
	}

	resp, err := d.client.Put(requestCtx(t), model.AtomicMeasurementHref, model.NewRepresentation())
	require.NoError(t, err)
	assert.Equal(t, wire.MethodNotAllowed, resp.Outcome)
}

// TestE2E_DiscoveryLinksMatchManifest checks /oic/res against the embedded
// device manifest.
func TestE2E_DiscoveryLinksMatchManifest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	d := startE2EDevice(t, time.Second)

	resp, err := d.client.Get(requestCtx(t), model.DiscoveryHref, "")
	require.NoError(t, err)
	require.Equal(t, wire.OK, resp.Outcome)

	rep, err := resp.Representation()
	require.NoError(t, err)

	m, err := version.LoadCurrentManifest()
	require.NoError(t, err)

	result := version.ValidateLinks(m, rep.Entries())
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

// TestE2E_Discovery advertises a device over mDNS and finds it by ID.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	advertiser := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	defer func() { _ = advertiser.Stop() }()

	info := &discovery.Info{
		DeviceID:   testDeviceID,
		DeviceName: "E2E Monitor",
		Port:       15683,
	}
	if err := advertiser.Advertise(ctx, info); err != nil {
		t.Skipf("mDNS not available: %v", err)
	}

	browser := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	svc, err := browser.FindByDeviceID(ctx, testDeviceID)
	require.NoError(t, err)

	assert.Equal(t, info.InstanceName(), svc.InstanceName)
	assert.Equal(t, uint16(15683), svc.Port)
	assert.Equal(t, "E2E Monitor", svc.DeviceName)
	assert.Equal(t, model.DeviceTypeBloodPressureMonitor, svc.ResourceType)
}

func mustGatherCount(t *testing.T, g prometheus.Gatherer, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(g, name)
	require.NoError(t, err)
	return n
}
