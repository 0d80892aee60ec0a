// Package sensor provides the blood pressure and pulse readings served by
// the device.
//
// A Source is polled for a fresh Reading on every read request and on every
// observation tick. RandomSource simulates hardware sampling; FixedSource
// returns a configured Reading and is used by tests and the console.
package sensor
