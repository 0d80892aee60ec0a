// Package persistence keeps the device identity across restarts.
//
// The identity is a small YAML file in the device data directory. It holds
// the device UUID served as "di" on /oic/d and advertised over mDNS.
// Readings are never persisted.
package persistence
