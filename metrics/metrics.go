// Package metrics provides prometheus instrumentation for the HTTP
// client facade.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts facade requests by endpoint and outcome and observes
// their durations. It satisfies the facade's Recorder interface.
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	defaultRecorder *Recorder
	defaultOnce     sync.Once
)

// NewRecorder creates a Recorder registered on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pothole",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests issued by the HTTP client facade.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pothole",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Request durations observed by the HTTP client facade.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	reg.MustRegister(r.requests, r.duration)
	return r
}

// Default returns the process-wide Recorder on the default prometheus
// registry.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewRecorder(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// ObserveRequest records one facade request outcome.
func (r *Recorder) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	r.requests.WithLabelValues(endpoint, outcome).Inc()
	if elapsed > 0 {
		r.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	}
}
