package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/ocf-bpm/bpm-go/cmd/bpm-device/interactive"
	"github.com/ocf-bpm/bpm-go/pkg/config"
	"github.com/ocf-bpm/bpm-go/pkg/discovery"
	"github.com/ocf-bpm/bpm-go/pkg/log"
	"github.com/ocf-bpm/bpm-go/pkg/metrics"
	"github.com/ocf-bpm/bpm-go/pkg/mirror"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/persistence"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
	"github.com/ocf-bpm/bpm-go/pkg/transport"
	"github.com/ocf-bpm/bpm-go/pkg/version"
)

// seedMix derives the second PCG seed from the configured one.
const seedMix = 0x9e3779b97f4a7c15

// device holds every running part of the monitor.
type device struct {
	cfg    *config.Config
	logger *slog.Logger

	identity *persistence.Identity
	info     model.DeviceInfo

	random sensor.Source
	sensor *sensor.Switchable

	capture  *log.FileLogger
	protoLog log.Logger

	observers *transport.Observers
	ctrl      *resource.Controller
	server    *transport.Server

	mqtt   *mirror.Client
	mirror *mirror.Notifier

	metrics    *metrics.Server
	advertiser *discovery.MDNSAdvertiser

	group *errgroup.Group
}

// newDevice wires the device from cfg. Nothing listens until Run.
func newDevice(cfg *config.Config, logger *slog.Logger, resetIdentity bool) (*device, error) {
	d := &device{cfg: cfg, logger: logger}

	if err := d.loadIdentity(resetIdentity); err != nil {
		return nil, err
	}
	if err := d.openProtocolLog(); err != nil {
		return nil, err
	}

	if cfg.Device.Seed != 0 {
		d.random = sensor.NewSeededRandomSource(cfg.Device.Seed, cfg.Device.Seed^seedMix)
	} else {
		d.random = sensor.NewRandomSource()
	}
	d.sensor = sensor.NewSwitchable(d.random)

	d.observers = transport.NewObservers(transport.ObserversConfig{
		Logger:         logger,
		ProtocolLogger: d.protoLog,
	})

	var notifier observe.Notifier = d.observers
	if cfg.MQTT.Enabled {
		if err := d.connectMirror(); err != nil {
			d.Close()
			return nil, err
		}
		notifier = d.mirror
	}

	rcfg := resource.DefaultConfig()
	rcfg.Observe.Interval = cfg.Observe.Interval
	rcfg.Observe.QoS = cfg.ObserveQoS()
	rcfg.Logger = logger
	d.ctrl = resource.NewController(d.sensor, transport.NewResponder(d.protoLog), notifier, rcfg)
	d.ctrl.OnEvent(d.logEvent)

	d.observers.SetRenderer(d.ctrl)
	d.observers.SetSink(d.ctrl)
	if d.mirror != nil {
		d.mirror.SetRenderer(d.ctrl)
	}

	if err := d.checkManifest(); err != nil {
		d.Close()
		return nil, err
	}

	d.info = model.DefaultDeviceInfo(d.identity.DeviceID)
	if cfg.Device.Name != "" {
		d.info.Name = cfg.Device.Name
	}

	server, err := transport.NewServer(transport.ServerConfig{
		Network:        cfg.CoAP.Network,
		Address:        cfg.CoAP.Address,
		Controller:     d.ctrl,
		Observers:      d.observers,
		Device:         d.info,
		Platform:       model.DefaultPlatformInfo(),
		Logger:         logger,
		ProtocolLogger: d.protoLog,
		OnConnect: func(peer string) {
			logger.Debug("client connected", "peer", peer)
		},
		OnDisconnect: func(peer string) {
			logger.Debug("client disconnected", "peer", peer)
		},
	})
	if err != nil {
		d.Close()
		return nil, err
	}
	d.server = server

	if cfg.Metrics.Enabled {
		if err := d.setupMetrics(); err != nil {
			d.Close()
			return nil, err
		}
	}

	if cfg.Discovery.Enabled {
		acfg := discovery.DefaultAdvertiserConfig()
		acfg.Interface = cfg.Discovery.Interface
		acfg.Logger = logger
		d.advertiser = discovery.NewMDNSAdvertiser(acfg)
	}

	return d, nil
}

func (d *device) loadIdentity(reset bool) error {
	store := persistence.NewIdentityStore(d.cfg.Device.DataDir)
	if reset {
		d.logger.Info("resetting device identity", "path", store.Path())
		if err := store.Clear(); err != nil {
			return fmt.Errorf("resetting identity: %w", err)
		}
	}

	id, err := store.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("loading identity: %w", err)
	}
	d.identity = id
	d.logger.Info("device identity", "device_id", id.DeviceID, "created_at", id.CreatedAt)
	return nil
}

func (d *device) openProtocolLog() error {
	var loggers []log.Logger
	if d.cfg.Log.ProtocolLog != "" {
		fl, err := log.NewFileLogger(d.cfg.Log.ProtocolLog)
		if err != nil {
			return fmt.Errorf("opening protocol log: %w", err)
		}
		d.capture = fl
		loggers = append(loggers, fl)
		d.logger.Info("protocol capture enabled", "path", d.cfg.Log.ProtocolLog)
	}
	if d.logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(d.logger))
	}

	switch len(loggers) {
	case 0:
	case 1:
		d.protoLog = loggers[0]
	default:
		d.protoLog = log.NewMultiLogger(loggers...)
	}
	return nil
}

func (d *device) connectMirror() error {
	mc := d.cfg.MQTT
	client, err := mirror.Connect(mirror.Config{
		Broker:      mc.Broker,
		ClientID:    mc.ClientID,
		Username:    mc.Username,
		Password:    mc.Password,
		QoS:         mc.QoS,
		Retained:    mc.Retained,
		TopicPrefix: mc.TopicPrefix,
	})
	if err != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	d.mqtt = client
	d.mirror = mirror.NewNotifier(d.observers, client, mirror.NotifierConfig{
		QoS:         mc.QoS,
		Retained:    mc.Retained,
		TopicPrefix: mc.TopicPrefix,
		Logger:      d.logger,
	})
	d.logger.Info("MQTT mirror connected", "broker", mc.Broker, "prefix", mc.TopicPrefix)
	return nil
}

// checkManifest validates the served resources against the embedded
// device manifest. Errors abort the start, warnings are logged.
func (d *device) checkManifest() error {
	m, err := version.LoadCurrentManifest()
	if err != nil {
		return err
	}

	result := version.ValidateLinks(m, d.ctrl.Links())
	for _, w := range result.Warnings {
		d.logger.Warn("manifest check", "warning", w)
	}
	if !result.Valid {
		for _, e := range result.Errors {
			d.logger.Error("manifest check", "error", e)
		}
		return fmt.Errorf("device does not satisfy manifest %s: %d error(s)", m.Version, len(result.Errors))
	}
	return nil
}

func (d *device) setupMetrics() error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return err
	}

	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	d.ctrl.OnEvent(recorder.Observe)

	handler := metrics.Handler(reg, metrics.HealthInfo{
		Version:     version.Version,
		Commit:      version.Commit,
		BuildTime:   version.BuildTime,
		Description: model.DeviceTypeBloodPressureMonitor,
		DeviceID:    d.identity.DeviceID,
	})
	d.metrics = metrics.NewServer(d.cfg.Metrics.Address, handler, d.logger)
	return nil
}

// Run serves until ctx is cancelled or a component fails.
func (d *device) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	return d.Wait()
}

// Start starts the CoAP server and the background components.
func (d *device) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if err := d.server.Start(ctx); err != nil {
		return err
	}
	d.group = g
	d.logger.Info("device started",
		"device_id", d.identity.DeviceID,
		"name", d.info.Name,
		"address", d.server.Addr().String(),
		"interval", d.cfg.Observe.Interval,
		"qos", d.cfg.ObserveQoS())

	g.Go(func() error {
		<-ctx.Done()
		return d.server.Stop()
	})

	if d.metrics != nil {
		g.Go(func() error {
			return d.metrics.Run(ctx)
		})
	}

	if d.advertiser != nil {
		g.Go(func() error {
			return d.advertise(ctx)
		})
	}
	return nil
}

// Wait blocks until every component started by Start has stopped.
func (d *device) Wait() error {
	if d.group == nil {
		return nil
	}
	return d.group.Wait()
}

// advertise announces the device over mDNS until ctx is done.
// A failed announcement is logged and leaves the device running.
func (d *device) advertise(ctx context.Context) error {
	info := &discovery.Info{
		DeviceID:   d.identity.DeviceID,
		DeviceName: d.info.Name,
		Port:       d.listenPort(),
	}
	if err := d.advertiser.Advertise(ctx, info); err != nil {
		d.logger.Warn("mDNS advertisement failed", "error", err)
		return nil
	}
	d.logger.Info("advertising", "instance", info.InstanceName(), "port", info.Port)

	<-ctx.Done()
	return d.advertiser.Stop()
}

func (d *device) listenPort() uint16 {
	addr := d.server.Addr()
	if addr == nil {
		return discovery.DefaultPort
	}
	_, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return discovery.DefaultPort
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return discovery.DefaultPort
	}
	return uint16(p)
}

// logEvent logs controller events worth an operator's attention.
func (d *device) logEvent(ev resource.Event) {
	switch ev.Type {
	case resource.EventObservationChanged:
		d.logger.Info("observation changed", "uri", ev.URI, "status", ev.Status)
	case resource.EventPushed:
		if ev.Err != nil {
			d.logger.Warn("push failed", "uri", ev.URI, "error", ev.Err)
		}
	}
}

func (d *device) consoleDeps() interactive.Deps {
	return interactive.Deps{
		Controller: d.ctrl,
		Sensor:     d.sensor,
		Random:     d.random,
		Observers:  d.observers,
		Server:     d.server,
		Mirror:     d.mirror,
	}
}

// Close releases everything newDevice acquired.
func (d *device) Close() {
	if d.ctrl != nil {
		d.ctrl.Close()
	}
	if d.mqtt != nil {
		_ = d.mqtt.Close()
	}
	if d.capture != nil {
		if err := d.capture.Close(); err != nil {
			d.logger.Warn("closing protocol log", "error", err)
		}
	}
}
