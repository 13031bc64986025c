package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const promNamespace = "rental"

// PrometheusMetrics is the scrape-side metric set: HTTP traffic plus the
// billing counters. It owns its registry so tests can build fresh instances.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	invoicesCreated     *prometheus.CounterVec
	invoicedAmount      *prometheus.CounterVec
	payments            *prometheus.CounterVec
	paymentAmount       *prometheus.CounterVec
	invoicesOverdue     *prometheus.CounterVec
	assetTransitions    *prometheus.CounterVec
	contractTransitions *prometheus.CounterVec
	measurementsBilled  *prometheus.CounterVec
}

// NewPrometheusMetrics registers every collector on a new registry,
// including the Go runtime and process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		invoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "invoices_created_total",
			Help:      "Invoices issued by source",
		}, []string{"tenant_id", "source"}),
		invoicedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "invoiced_amount_total",
			Help:      "Sum of issued invoice amounts",
		}, []string{"tenant_id"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "payments_total",
			Help:      "Payments recorded by method and whether they settled the invoice",
		}, []string{"tenant_id", "method", "settled"}),
		paymentAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "payment_amount_total",
			Help:      "Sum of recorded payments",
		}, []string{"tenant_id"}),
		invoicesOverdue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "invoices_overdue_total",
			Help:      "Invoices that became overdue",
		}, []string{"tenant_id"}),
		assetTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "asset_transitions_total",
			Help:      "Asset status transitions",
		}, []string{"from", "to"}),
		contractTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "contract_transitions_total",
			Help:      "Contract status transitions",
		}, []string{"from", "to"}),
		measurementsBilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "measurements_invoiced_total",
			Help:      "Measurements converted into invoices",
		}, []string{"tenant_id"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.invoicesCreated,
		m.invoicedAmount,
		m.payments,
		m.paymentAmount,
		m.invoicesOverdue,
		m.assetTransitions,
		m.contractTransitions,
		m.measurementsBilled,
	)
	return m
}

// Registry exposes the underlying registry
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTPRequest records one served request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func (m *PrometheusMetrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *PrometheusMetrics) RecordInvoiceCreated(_ context.Context, tenantID uuid.UUID, source string, amount decimal.Decimal) {
	m.invoicesCreated.WithLabelValues(tenantID.String(), source).Inc()
	addAmount(m.invoicedAmount.WithLabelValues(tenantID.String()), amount)
}

func (m *PrometheusMetrics) RecordPayment(_ context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal, settled bool) {
	m.payments.WithLabelValues(tenantID.String(), method, strconv.FormatBool(settled)).Inc()
	addAmount(m.paymentAmount.WithLabelValues(tenantID.String()), amount)
}

func (m *PrometheusMetrics) RecordInvoiceOverdue(_ context.Context, tenantID uuid.UUID, _ decimal.Decimal) {
	m.invoicesOverdue.WithLabelValues(tenantID.String()).Inc()
}

func (m *PrometheusMetrics) RecordAssetTransition(_ context.Context, _ uuid.UUID, from, to string) {
	m.assetTransitions.WithLabelValues(from, to).Inc()
}

func (m *PrometheusMetrics) RecordContractTransition(_ context.Context, _ uuid.UUID, from, to string, _ int) {
	m.contractTransitions.WithLabelValues(from, to).Inc()
}

func (m *PrometheusMetrics) RecordMeasurementInvoiced(_ context.Context, tenantID uuid.UUID) {
	m.measurementsBilled.WithLabelValues(tenantID.String()).Inc()
}

// addAmount ignores negative amounts, which would make Add panic
func addAmount(c prometheus.Counter, amount decimal.Decimal) {
	if amount.IsNegative() {
		return
	}
	c.Add(amount.InexactFloat64())
}
