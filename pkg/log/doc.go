// Package log provides structured protocol logging for the blood pressure
// monitor.
//
// This package defines the Logger interface and Event types for capturing
// CoAP exchanges and observation state changes. It is separate from
// operational logging (slog): a protocol capture is a machine-readable
// trace of what went over the wire and why.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For captures: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/bpm/device.blog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
//   - Transport: requests, responses and notifications (MessageEvent)
//   - Observation: observer registration and loop state (StateChangeEvent)
//   - Errors at any layer (ErrorEventData)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .blog extension.
// The bpm-log CLI tool views and summarizes them.
package log
