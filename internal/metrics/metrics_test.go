package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.OrderPlaced("COD")
	m.OrderPlaced("COD")
	m.StockRestored("admin")
	m.OTPIssue("signup", false)
	m.OTPConsume("signup", "mismatch")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersPlaced.WithLabelValues("COD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StockRestorations.WithLabelValues("admin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OTPIssued.WithLabelValues("signup", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OTPConsumed.WithLabelValues("signup", "mismatch")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderPlaced("Online")
		m.StockWentNegative()
		m.ObserveHTTP("GET", "/api/products", "200", 0.01)
	})
}
