package model

// Fixed identity values of the simulated monitor.
const (
	DefaultPlatformID       = "12341234-1234-1234-1234-123412341234"
	DefaultDeviceName       = "Blood Pressure Monitor"
	DefaultSpecVersion      = "ocf.1.1.0"
	DefaultDataModelVersion = "ocf.res.1.1.0,ocf.sh.1.1.0"
)

// DeviceInfo is the content of the /oic/d resource.
type DeviceInfo struct {
	DeviceType        string
	Name              string
	DeviceID          string
	SpecVersion       string
	DataModelVersions string
	ProtocolIndepID   string
}

// DefaultDeviceInfo returns the device info of the simulated monitor with
// the given device ID.
func DefaultDeviceInfo(deviceID string) DeviceInfo {
	return DeviceInfo{
		DeviceType:        DeviceTypeBloodPressureMonitor,
		Name:              DefaultDeviceName,
		DeviceID:          deviceID,
		SpecVersion:       DefaultSpecVersion,
		DataModelVersions: DefaultDataModelVersion,
		ProtocolIndepID:   DefaultPlatformID,
	}
}

// Representation returns the /oic/d representation.
func (d DeviceInfo) Representation() Representation {
	r := NewRepresentation()
	r.SetStringArray(KeyResourceTypes, []string{ResourceTypeDevice, d.DeviceType})
	r.SetStringArray(KeyInterfaces, []string{InterfaceBaseline, InterfaceReadOnly})
	r.SetString(KeyName, d.Name)
	r.SetString(KeyDeviceID, d.DeviceID)
	r.SetString(KeySpecVersion, d.SpecVersion)
	r.SetString(KeyDataModelVersions, d.DataModelVersions)
	r.SetString(KeyProtocolIndepID, d.ProtocolIndepID)
	return r
}

// PlatformInfo is the content of the /oic/p resource.
type PlatformInfo struct {
	PlatformID      string `yaml:"pi"`
	Manufacturer    string `yaml:"mnmn"`
	ManufacturerURL string `yaml:"mnml"`
	ModelNumber     string `yaml:"mnmo"`
	ManufactureDate string `yaml:"mndt"`
	PlatformVersion string `yaml:"mnpv"`
	OSVersion       string `yaml:"mnos"`
	HardwareVersion string `yaml:"mnhw"`
	FirmwareVersion string `yaml:"mnfv"`
	SupportURL      string `yaml:"mnsl"`
	SystemTime      string `yaml:"st"`
}

// DefaultPlatformInfo returns the platform info of the simulated monitor.
func DefaultPlatformInfo() PlatformInfo {
	return PlatformInfo{
		PlatformID:      DefaultPlatformID,
		Manufacturer:    "Electronics and Telecommunications Research Institute",
		ManufacturerURL: "https://www.etri.re.kr",
		ModelNumber:     "myModelNumber",
		ManufactureDate: "2017-11-09",
		PlatformVersion: "1.0",
		OSVersion:       "Ubuntu 16.04 LTS",
		HardwareVersion: "MacBook Pro",
		FirmwareVersion: "1.0",
		SupportURL:      "https://www.etri.re.kr",
		SystemTime:      "2011-08-30T13:22:53.108Z",
	}
}

// Representation returns the /oic/p representation.
// Empty optional fields are omitted.
func (p PlatformInfo) Representation() Representation {
	r := NewRepresentation()
	r.SetStringArray(KeyResourceTypes, []string{ResourceTypePlatform})
	r.SetStringArray(KeyInterfaces, []string{InterfaceBaseline, InterfaceReadOnly})
	r.SetString("pi", p.PlatformID)
	r.SetString("mnmn", p.Manufacturer)

	optional := []struct{ key, value string }{
		{"mnml", p.ManufacturerURL},
		{"mnmo", p.ModelNumber},
		{"mndt", p.ManufactureDate},
		{"mnpv", p.PlatformVersion},
		{"mnos", p.OSVersion},
		{"mnhw", p.HardwareVersion},
		{"mnfv", p.FirmwareVersion},
		{"mnsl", p.SupportURL},
		{"st", p.SystemTime},
	}
	for _, o := range optional {
		if o.value != "" {
			r.SetString(o.key, o.value)
		}
	}
	return r
}
