// Package metrics exports device activity as Prometheus metrics.
//
// A Recorder is registered as a resource controller event listener and
// maintains:
//   - bpm_requests_total{uri,outcome}
//   - bpm_notifications_total{uri,delivery}
//   - bpm_sensor_polls_total{uri}
//   - bpm_observation_active{uri}
//
// Handler serves /metrics and /health over HTTP.
package metrics
