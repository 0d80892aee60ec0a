package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
)

const namespace = "bpm"

// deliveryError labels pushes that failed with an error.
const deliveryError = "ERROR"

// Recorder turns controller events into Prometheus metrics.
type Recorder struct {
	requests      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	polls         *prometheus.CounterVec
	active        *prometheus.GaugeVec
}

// NewRecorder creates a recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests dispatched to a resource, by outcome.",
		}, []string{"uri", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Observation pushes, by delivery result.",
		}, []string{"uri", "delivery"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_polls_total",
			Help:      "Sensor polls performed for a resource.",
		}, []string{"uri"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observation_active",
			Help:      "1 while the observation loop of a resource runs.",
		}, []string{"uri"}),
	}

	for _, c := range []prometheus.Collector{r.requests, r.notifications, r.polls, r.active} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records one controller event.
// It is meant to be passed to resource.Controller.OnEvent.
func (r *Recorder) Observe(ev resource.Event) {
	switch ev.Type {
	case resource.EventRequestHandled:
		r.requests.WithLabelValues(ev.URI, ev.Outcome.String()).Inc()

	case resource.EventPushed:
		delivery := ev.Delivery.String()
		if ev.Err != nil {
			delivery = deliveryError
		}
		r.notifications.WithLabelValues(ev.URI, delivery).Inc()

	case resource.EventSensorPolled:
		r.polls.WithLabelValues(ev.URI).Inc()

	case resource.EventObservationChanged:
		v := 0.0
		if ev.Status == observe.Active {
			v = 1
		}
		r.active.WithLabelValues(ev.URI).Set(v)
	}
}
