package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the service's prometheus collectors on a private registry.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
	campaignApplies     *prometheus.CounterVec
	campaignExpirations prometheus.Counter
	expirySweeps        *prometheus.CounterVec
	billsPaid           prometheus.Counter
	billPaidAmount      prometheus.Histogram
	ticketsResolved     *prometheus.CounterVec
	eventsDispatched    *prometheus.CounterVec
}

// NewMetrics registers the collectors and returns the handle.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "Counts HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_http_errors_total",
			Help: "Counts error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		campaignApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_campaign_applications_total",
			Help: "Campaign application attempts by outcome.",
		}, []string{"outcome"}),
		campaignExpirations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_campaign_applications_expired_total",
			Help: "Campaign applications moved to expired.",
		}),
		expirySweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_campaign_expiry_sweeps_total",
			Help: "Expiry sweeps by result.",
		}, []string{"result"}),
		billsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backoffice_bills_paid_total",
			Help: "Bills transitioned to paid.",
		}),
		billPaidAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backoffice_bill_paid_amount",
			Help:    "Amount distribution of paid bills.",
			Buckets: []float64{10, 25, 50, 100, 200, 500, 1000},
		}),
		ticketsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_tickets_resolved_total",
			Help: "Support tickets resolved by priority.",
		}, []string{"priority"}),
		eventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_events_dispatched_total",
			Help: "Domain events delivered to subscribers by type.",
		}, []string{"type"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
		m.campaignApplies,
		m.campaignExpirations,
		m.expirySweeps,
		m.billsPaid,
		m.billPaidAmount,
		m.ticketsResolved,
		m.eventsDispatched,
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest observes one served request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(route, method, code).Inc()
}

// RecordCampaignApply counts an application attempt; outcome is "applied" or a rejection reason.
func (m *Metrics) RecordCampaignApply(outcome string) {
	if m == nil {
		return
	}
	m.campaignApplies.WithLabelValues(outcome).Inc()
}

// RecordExpirySweep records a sweep result and the rows it expired.
func (m *Metrics) RecordExpirySweep(result string, expired int64) {
	if m == nil {
		return
	}
	m.expirySweeps.WithLabelValues(result).Inc()
	if expired > 0 {
		m.campaignExpirations.Add(float64(expired))
	}
}

// RecordBillPaid counts a payment.
func (m *Metrics) RecordBillPaid(amount float64) {
	if m == nil {
		return
	}
	m.billsPaid.Inc()
	m.billPaidAmount.Observe(amount)
}

// RecordTicketResolved counts a resolution.
func (m *Metrics) RecordTicketResolved(priority string) {
	if m == nil {
		return
	}
	m.ticketsResolved.WithLabelValues(priority).Inc()
}

// RecordEvent counts a dispatched domain event.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.eventsDispatched.WithLabelValues(eventType).Inc()
}
