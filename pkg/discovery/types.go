package discovery

import (
	"errors"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of CoAP over UDP.
	ServiceType = "_coap._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default CoAP port.
	DefaultPort = 5683

	// InstancePrefix prefixes every advertised instance name.
	InstancePrefix = "BPM-"
)

// TXT record key constants.
const (
	TXTKeyResourceType = "rt" // Device type
	TXTKeyDeviceID     = "di" // Device ID (UUID)
	TXTKeyDeviceName   = "n"  // Device name (optional)
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 5 * time.Second

	// DefaultTTL is the default DNS record TTL.
	DefaultTTL = 120 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size.
	MaxTXTRecordSize = 400
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrTXTRecordTooLarge   = errors.New("TXT records exceed 400 bytes")
	ErrNotAdvertising      = errors.New("not advertising")
)

// Info describes the advertised device.
type Info struct {
	// DeviceID is the device UUID, as served in /oic/d "di".
	DeviceID string

	// DeviceName is the human readable name, as served in /oic/d "n".
	DeviceName string

	// ResourceType is the device type. Empty means oic.d.bloodpressuremonitor.
	ResourceType string

	// Port is the CoAP port. Zero means DefaultPort.
	Port uint16
}

// InstanceName returns the DNS-SD instance name for the device.
func (i *Info) InstanceName() string {
	id := i.DeviceID
	if len(id) > 8 {
		id = id[:8]
	}
	return InstancePrefix + id
}

// Service is a device found while browsing.
type Service struct {
	// InstanceName is the mDNS instance name (e.g., "BPM-2f9c1a3e").
	InstanceName string

	// Host is the hostname.
	Host string

	// Port is the CoAP port.
	Port uint16

	// Addresses contains resolved IP addresses.
	Addresses []string

	// ResourceType is the device type (from TXT "rt").
	ResourceType string

	// DeviceID is the device ID (from TXT "di").
	DeviceID string

	// DeviceName is the optional device name (from TXT "n").
	DeviceName string
}
