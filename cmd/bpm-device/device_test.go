package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocf-bpm/bpm-go/pkg/config"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/transport"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Device.DataDir = t.TempDir()
	cfg.Device.Seed = 7
	cfg.CoAP.Address = "127.0.0.1:0"
	cfg.Discovery.Enabled = false
	cfg.Metrics.Enabled = false
	cfg.Observe.Interval = 50 * time.Millisecond
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startDevice(t *testing.T, cfg *config.Config) (*device, *transport.Client) {
	t.Helper()

	d, err := newDevice(cfg, discardLogger(), false)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Start(ctx))
	done := make(chan error, 1)
	go func() { done <- d.Wait() }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("device did not stop")
		}
	})

	c, err := transport.Dial(ctx, d.server.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return d, c
}

func TestDeviceServesMeasurement(t *testing.T) {
	d, c := startDevice(t, testConfig(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.Get(ctx, model.AtomicMeasurementHref, "if=oic.if.b")
	require.NoError(t, err)
	assert.Equal(t, wire.OK, resp.Outcome)

	resp, err = c.Get(ctx, model.DeviceHref, "")
	require.NoError(t, err)
	rep, err := resp.Representation()
	require.NoError(t, err)
	di, _ := rep.GetString(model.KeyDeviceID)
	assert.Equal(t, d.identity.DeviceID, di)
}

func TestDeviceIdentityIsStable(t *testing.T) {
	cfg := testConfig(t)

	first, err := newDevice(cfg, discardLogger(), false)
	require.NoError(t, err)
	first.Close()

	second, err := newDevice(cfg, discardLogger(), false)
	require.NoError(t, err)
	second.Close()
	assert.Equal(t, first.identity.DeviceID, second.identity.DeviceID)

	third, err := newDevice(cfg, discardLogger(), true)
	require.NoError(t, err)
	third.Close()
	assert.NotEqual(t, first.identity.DeviceID, third.identity.DeviceID)
}

func TestDeviceNameOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.Device.Name = "Ward 3"

	d, err := newDevice(cfg, discardLogger(), false)
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, "Ward 3", d.info.Name)
}

func TestDeviceProtocolCapture(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.ProtocolLog = filepath.Join(t.TempDir(), "capture.blog")

	d, c := startDevice(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.Get(ctx, model.AtomicMeasurementHref, "")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return d.capture.Written() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.NotNil(t, d.protoLog)
}

func TestDeviceMetricsWired(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	cfg.Metrics.Address = "127.0.0.1:0"

	d, err := newDevice(cfg, discardLogger(), false)
	require.NoError(t, err)
	defer d.Close()
	assert.NotNil(t, d.metrics)
}

func TestDeviceMirrorRequiresBroker(t *testing.T) {
	cfg := testConfig(t)
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = ""

	_, err := newDevice(cfg, discardLogger(), false)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"service":"bpm-device"`)
}

func TestLogOutputSwitch(t *testing.T) {
	var first, second bytes.Buffer
	out := &logOutput{w: &first}

	_, _ = out.Write([]byte("a"))
	out.Set(&second)
	_, _ = out.Write([]byte("b"))

	assert.Equal(t, "a", first.String())
	assert.Equal(t, "b", second.String())
}

func TestListenPort(t *testing.T) {
	d, _ := startDevice(t, testConfig(t))
	assert.NotZero(t, d.listenPort())
	assert.NotEqual(t, uint16(5683), d.listenPort())
}
