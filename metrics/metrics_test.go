package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveRequest("/predict", "ok", 120*time.Millisecond)
	rec.ObserveRequest("/predict", "ok", 80*time.Millisecond)
	rec.ObserveRequest("/predict", "server_error", 50*time.Millisecond)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(rec.requests.WithLabelValues("/predict", "ok")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(rec.requests.WithLabelValues("/predict", "server_error")))
}

func TestRecorder_ZeroElapsedSkipsDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	// A request refused before touching the network has no duration.
	rec.ObserveRequest("/authority/complaints", "unauthorized", 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "pothole_client_request_duration_seconds" {
			for _, m := range f.GetMetric() {
				assert.Equal(t, uint64(0), m.GetHistogram().GetSampleCount())
			}
		}
	}
}

func TestDefault_Singleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
