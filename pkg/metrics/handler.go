package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const contentType = "application/health+json"

// HealthInfo is the body served on /health.
type HealthInfo struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	Description string `json:"description"`
	BuildTime   string `json:"build_time"`
	DeviceID    string `json:"device_id"`
}

// Handler returns an HTTP handler serving /metrics from gatherer and
// /health from info.
func Handler(gatherer prometheus.Gatherer, info HealthInfo) http.Handler {
	if info.Status == "" {
		info.Status = "pass"
	}

	mux := chi.NewRouter()
	mux.Get("/health", health(info))
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

func health(info HealthInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(info)
	}
}
