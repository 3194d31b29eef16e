package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Request("hit")
	m.Request("hit")
	m.Request("miss")
	m.Derivation(StatusSuccess, 120*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.derivations.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.derivationDuration))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Request("hit")
		m.Derivation(StatusFailure, time.Second)
	})
}
