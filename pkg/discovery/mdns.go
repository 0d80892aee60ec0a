package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// registration is the part of *zeroconf.Server the advertiser uses.
type registration interface {
	SetText(text []string)
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string,
	ifaces []net.Interface, opts ...zeroconf.ServerOption) (registration, error)

func zeroconfRegister(instance, service, domain string, port int, text []string,
	ifaces []net.Interface, opts ...zeroconf.ServerOption) (registration, error) {
	server, err := zeroconf.Register(instance, service, domain, port, text, ifaces, opts...)
	if err != nil {
		return nil, err
	}
	return server, nil
}

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config   AdvertiserConfig
	register registerFunc

	mu     sync.Mutex
	server registration
	info   Info
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{
		config:   config,
		register: zeroconfRegister,
	}
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		a.warnLog("unknown interface, advertising on all", "interface", a.config.Interface, "error", err)
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts advertising the device.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *Info) error {
	if info == nil || info.DeviceID == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceID)
	}

	instanceName := info.InstanceName()
	if err := ValidateInstanceName(instanceName); err != nil {
		return err
	}

	txtRecords := EncodeTXT(info)
	if err := ValidateTXT(txtRecords); err != nil {
		return err
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Stop existing if any
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	server, err := a.register(
		instanceName,
		ServiceType,
		Domain,
		port,
		TXTRecordsToStrings(txtRecords),
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceType, err)
	}

	a.server = server
	a.info = *info
	a.debugLog("advertising", "instance", instanceName, "port", port, "device_id", info.DeviceID)
	return nil
}

// UpdateText updates the TXT records of the running advertisement.
func (a *MDNSAdvertiser) UpdateText(info *Info) error {
	txtRecords := EncodeTXT(info)
	if err := ValidateTXT(txtRecords); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}

	a.server.SetText(TXTRecordsToStrings(txtRecords))
	a.info = *info
	a.debugLog("TXT records updated", "device_name", info.DeviceName)
	return nil
}

// Stop stops advertising.
func (a *MDNSAdvertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		a.debugLog("advertising stopped")
	}
	return nil
}

// Advertising reports whether an advertisement is running, and for which device.
func (a *MDNSAdvertiser) Advertising() (Info, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info, a.server != nil
}

func (a *MDNSAdvertiser) debugLog(msg string, args ...any) {
	if a.config.Logger != nil {
		a.config.Logger.Debug(msg, args...)
	}
}

func (a *MDNSAdvertiser) warnLog(msg string, args ...any) {
	if a.config.Logger != nil {
		a.config.Logger.Warn(msg, args...)
	}
}
