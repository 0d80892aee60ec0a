package model

// Interfaces.
const (
	InterfaceBaseline   = "oic.if.baseline"
	InterfaceBatch      = "oic.if.b"
	InterfaceLinkedList = "oic.if.ll"
	InterfaceSensor     = "oic.if.s"
	InterfaceReadOnly   = "oic.if.r"
)

// Resource types.
const (
	ResourceTypeBloodPressureMonitorAM = "oic.r.bloodpressuremonitor-am"
	ResourceTypeAtomicMeasurement      = "oic.wk.atomicmeasurement"
	ResourceTypeBloodPressure          = "oic.r.blood.pressure"
	ResourceTypePulseRate              = "oic.r.pulserate"
	ResourceTypeDevice                 = "oic.wk.d"
	ResourceTypePlatform               = "oic.wk.p"
	ResourceTypeDiscovery              = "oic.wk.res"
	DeviceTypeBloodPressureMonitor     = "oic.d.bloodpressuremonitor"
)

// Resource paths.
const (
	AtomicMeasurementHref = "/BloodPressureMonitorAMResURI"
	BloodPressureHref     = "/myBloodPressureResURI"
	PulseRateHref         = "/myPulseRateResURI"
	DeviceHref            = "/oic/d"
	PlatformHref          = "/oic/p"
	DiscoveryHref         = "/oic/res"
)

// Property keys.
const (
	KeyResourceTypes     = "rt"
	KeyInterfaces        = "if"
	KeyMandatoryTypes    = "rts-m"
	KeyRelatedTypes      = "rts"
	KeyID                = "id"
	KeyLinks             = "links"
	KeyHref              = "href"
	KeyPolicy            = "p"
	KeyBitmap            = "bm"
	KeyRep               = "rep"
	KeySystolic          = "systolic"
	KeyDiastolic         = "diastolic"
	KeyUnits             = "units"
	KeyPulseRate         = "pulserate"
	KeyName              = "n"
	KeyDeviceID          = "di"
	KeySpecVersion       = "icv"
	KeyDataModelVersions = "dmv"
	KeyProtocolIndepID   = "piid"
)

// Link policy bitmap values.
const (
	BitmapDiscoverable uint8 = 1 << 0
	BitmapObservable   uint8 = 1 << 1
)
