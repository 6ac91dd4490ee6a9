package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Metrics holds every collector the service exports. A nil *Metrics is valid
// and records nothing, so components can be built without a registry in tests.
type Metrics struct {
	OrdersPlaced      *prometheus.CounterVec   // {payment_method}
	StockRestorations *prometheus.CounterVec   // {trigger}
	NegativeStock     prometheus.Counter       // decrements that left stock below zero
	OTPIssued         *prometheus.CounterVec   // {purpose,delivered}
	OTPConsumed       *prometheus.CounterVec   // {purpose,outcome}
	EventsPublished   *prometheus.CounterVec   // {event}
	HTTPRequests      *prometheus.CounterVec   // {method,route,status}
	HTTPDuration      *prometheus.HistogramVec // {method,route}
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "orders_placed_total",
			Help: "Orders persisted, by payment method.",
		}, []string{"payment_method"}),
		StockRestorations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_restorations_total",
			Help: "Orders whose stock was credited back, by trigger.",
		}, []string{"trigger"}),
		NegativeStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "negative_stock_total",
			Help: "Stock decrements that left a product below zero.",
		}),
		OTPIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "otp_issued_total",
			Help: "One-time codes issued, by purpose and delivery result.",
		}, []string{"purpose", "delivered"}),
		OTPConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "otp_consumed_total",
			Help: "One-time code verification attempts, by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_published_total",
			Help: "Order lifecycle events handed to the producer.",
		}, []string{"event"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.OrdersPlaced, m.StockRestorations, m.NegativeStock,
			m.OTPIssued, m.OTPConsumed, m.EventsPublished,
			m.HTTPRequests, m.HTTPDuration,
		)
	}
	return m
}

func (m *Metrics) OrderPlaced(method string) {
	if m == nil {
		return
	}
	m.OrdersPlaced.WithLabelValues(method).Inc()
}

func (m *Metrics) StockRestored(trigger string) {
	if m == nil {
		return
	}
	m.StockRestorations.WithLabelValues(trigger).Inc()
}

func (m *Metrics) StockWentNegative() {
	if m == nil {
		return
	}
	m.NegativeStock.Inc()
}

func (m *Metrics) OTPIssue(purpose string, delivered bool) {
	if m == nil {
		return
	}
	d := "false"
	if delivered {
		d = "true"
	}
	m.OTPIssued.WithLabelValues(purpose, d).Inc()
}

func (m *Metrics) OTPConsume(purpose, outcome string) {
	if m == nil {
		return
	}
	m.OTPConsumed.WithLabelValues(purpose, outcome).Inc()
}

func (m *Metrics) EventPublished(event string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
