// Package model implements the OCF resource data model served by the device.
//
// # Representations
//
// A Representation is an ordered set of named properties. Property values are
// integers, strings, string arrays, nested Representations or arrays of
// Representations:
//
//	{
//	  "href": "/myBloodPressureResURI",
//	  "rep":  {"systolic": 80, "diastolic": 120, "units": "mmHg"}
//	}
//
// A Representation may be followed by sibling Representations. The batch and
// linked-list interfaces use siblings to return one entry per linked child.
// A Representation without siblings encodes as one CBOR map; with siblings it
// encodes as a CBOR array of maps, head first.
//
// # Resource Hierarchy
//
// The device exposes an atomic measurement collection linking two children:
//
//	/BloodPressureMonitorAMResURI  (oic.r.bloodpressuremonitor-am)
//	├── /myBloodPressureResURI     (oic.r.blood.pressure)
//	└── /myPulseRateResURI         (oic.r.pulserate)
//
// plus the /oic/d and /oic/p core resources described by DeviceInfo and
// PlatformInfo.
package model
