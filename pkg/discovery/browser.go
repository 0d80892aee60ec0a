package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// Browse searches for blood pressure monitors.
	// The channel is closed when the context is cancelled.
	Browse(ctx context.Context) (<-chan *Service, error)

	// FindByDeviceID searches for a specific device.
	// Returns when found or when the browse timeout expires.
	FindByDeviceID(ctx context.Context, deviceID string) (*Service, error)
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindByDeviceID.
	// Default: 5 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
	}
}

// serviceEntry is a resolved DNS-SD record, detached from zeroconf.
type serviceEntry struct {
	Instance  string
	Host      string
	Port      int
	Text      []string
	Addresses []string
}

func fromZeroconf(e *zeroconf.ServiceEntry) serviceEntry {
	addrs := make([]string, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
	for _, ip := range e.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range e.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return serviceEntry{
		Instance:  e.Instance,
		Host:      e.HostName,
		Port:      e.Port,
		Text:      e.Text,
		Addresses: addrs,
	}
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	return &MDNSBrowser{config: config}
}

// Browse searches for blood pressure monitors.
// Services are aggregated by instance name: addresses from multiple interfaces
// are combined into a single entry.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *Service, error) {
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	added := make(chan serviceEntry)
	gone := make(chan serviceEntry)
	go forward(ctx, entries, added)
	go forward(ctx, removed, gone)

	out := make(chan *Service)
	go aggregate(ctx, added, gone, out)

	opts := b.browserOptions()
	go func() {
		if err := zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...); err != nil {
			b.debugLog("browse ended", "error", err)
		}
	}()

	return out, nil
}

// FindByDeviceID searches for the device advertising deviceID.
func (b *MDNSBrowser) FindByDeviceID(ctx context.Context, deviceID string) (*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	services, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	return findByDeviceID(ctx, services, deviceID)
}

func findByDeviceID(ctx context.Context, services <-chan *Service, deviceID string) (*Service, error) {
	for {
		select {
		case svc, ok := <-services:
			if !ok {
				return nil, fmt.Errorf("device %s: %w", deviceID, context.DeadlineExceeded)
			}
			if svc.DeviceID == deviceID {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("device %s: %w", deviceID, ctx.Err())
		}
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

func (b *MDNSBrowser) debugLog(msg string, args ...any) {
	if b.config.Logger != nil {
		b.config.Logger.Debug(msg, args...)
	}
}

func forward(ctx context.Context, in <-chan *zeroconf.ServiceEntry, out chan<- serviceEntry) {
	defer close(out)
	for {
		select {
		case e, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- fromZeroconf(e):
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// aggregate emits each newly seen device once and tracks address removals.
// Entries without valid TXT records are ignored.
func aggregate(ctx context.Context, added, removed <-chan serviceEntry, out chan<- *Service) {
	defer close(out)

	services := make(map[string]*Service)

	for added != nil || removed != nil {
		select {
		case entry, ok := <-added:
			if !ok {
				added = nil
				continue
			}
			svc := entryToService(entry)
			if svc == nil {
				continue
			}

			if existing, found := services[svc.InstanceName]; found {
				existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				continue
			}

			// The emitted value belongs to the receiver.
			tracked := *svc
			tracked.Addresses = append([]string(nil), svc.Addresses...)
			services[svc.InstanceName] = &tracked
			select {
			case out <- svc:
			case <-ctx.Done():
				return
			}

		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			if existing, found := services[entry.Instance]; found {
				existing.Addresses = removeAddresses(existing.Addresses, entry.Addresses)
				if len(existing.Addresses) == 0 {
					delete(services, entry.Instance)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

func entryToService(entry serviceEntry) *Service {
	info, err := DecodeTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	return &Service{
		InstanceName: entry.Instance,
		Host:         entry.Host,
		Port:         uint16(entry.Port),
		Addresses:    append([]string(nil), entry.Addresses...),
		ResourceType: info.ResourceType,
		DeviceID:     info.DeviceID,
		DeviceName:   info.DeviceName,
	}
}

// mergeAddresses appends the addresses not already present.
func mergeAddresses(existing, next []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range next {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the given addresses from the list.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSAdvertiser implements Advertiser interface.
var _ Advertiser = (*MDNSAdvertiser)(nil)

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
