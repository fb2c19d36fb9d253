package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// Metrics owns the Prometheus collectors of the service.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
	ticketsCreated  prometheus.Counter
	statusChanges   *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	logins          *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Requests that ended in an application error, by error code",
		}, []string{"method", "path", "code"}),
		ticketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_tickets_created_total",
			Help: "Tickets submitted",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_ticket_status_changes_total",
			Help: "Ticket status updates by target status",
		}, []string{"status"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_import_rows_total",
			Help: "Bulk import rows by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_logins_total",
			Help: "Login attempts by entry surface and outcome",
		}, []string{"surface", "outcome"}),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.errorTotal,
		m.ticketsCreated,
		m.statusChanges,
		m.importRows,
		m.logins,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(method, path, code).Inc()
}

func (m *Metrics) TicketCreated() {
	if m == nil {
		return
	}
	m.ticketsCreated.Inc()
}

func (m *Metrics) TicketStatusChanged(status domain.TicketStatus) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(string(status)).Inc()
}

// ImportRows records the outcome counts of one import run.
func (m *Metrics) ImportRows(succeeded, failed int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("success").Add(float64(succeeded))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) Login(surface domain.EntrySurface, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(string(surface), outcome).Inc()
}
