// Package mirror republishes observation pushes to an MQTT broker.
//
// Every push of an observable resource is mirrored as the resource's default
// representation, CBOR encoded, to the topic <prefix><uri>. With the default
// prefix "bpm" the measurement collection is published to
// bpm/BloodPressureMonitorAMResURI.
//
// The mirror never changes the outcome of a push: publish failures are logged
// and dropped.
package mirror
