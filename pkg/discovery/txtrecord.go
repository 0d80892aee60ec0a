package discovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ocf-bpm/bpm-go/pkg/model"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the TXT records advertised for info.
func EncodeTXT(info *Info) TXTRecordMap {
	txt := make(TXTRecordMap)

	rt := info.ResourceType
	if rt == "" {
		rt = model.DeviceTypeBloodPressureMonitor
	}

	// Required fields
	txt[TXTKeyResourceType] = rt
	txt[TXTKeyDeviceID] = info.DeviceID

	// Optional fields
	if info.DeviceName != "" {
		txt[TXTKeyDeviceName] = info.DeviceName
	}

	return txt
}

// DecodeTXT parses advertised TXT records.
func DecodeTXT(txt TXTRecordMap) (*Info, error) {
	info := &Info{}

	var ok bool
	info.ResourceType, ok = txt[TXTKeyResourceType]
	if !ok || info.ResourceType == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyResourceType)
	}

	info.DeviceID, ok = txt[TXTKeyDeviceID]
	if !ok || info.DeviceID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceID)
	}

	info.DeviceName = txt[TXTKeyDeviceName]

	return info, nil
}

// ValidateTXT checks that the encoded records fit in a TXT record.
func ValidateTXT(txt TXTRecordMap) error {
	size := 0
	for k, v := range txt {
		// Each string is prefixed with its length byte.
		size += 1 + len(k) + 1 + len(v)
	}
	if size > MaxTXTRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrTXTRecordTooLarge, size)
	}
	return nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings,
// sorted by key.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		switch {
		case found:
			txt[k] = v
		case k != "":
			// Key without value (boolean flag)
			txt[k] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
