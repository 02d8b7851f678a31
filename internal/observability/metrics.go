package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "applytrack"

// Metrics stores Prometheus collectors used by the API, the scanner and the alert relay.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	scansTotal             *prometheus.CounterVec
	scanDuration           prometheus.Histogram
	scanCreatedTotal       prometheus.Counter
	scanDuplicatesTotal    prometheus.Counter
	scanMessageErrorsTotal *prometheus.CounterVec
	alertsRelayedTotal     prometheus.Counter
	alertsFailedTotal      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Total number of mailbox scans grouped by outcome.",
			},
			[]string{"outcome"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Mailbox scan duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		scanCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_notifications_created_total",
				Help:      "Total number of notifications created by mailbox scans.",
			},
		),
		scanDuplicatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_duplicates_total",
				Help:      "Total number of matched messages skipped as already notified.",
			},
		),
		scanMessageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_message_errors_total",
				Help:      "Total number of non-fatal per-message scan errors grouped by kind.",
			},
			[]string{"kind"},
		),
		alertsRelayedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_relayed_total",
				Help:      "Total number of notifications forwarded to the alert webhook.",
			},
		),
		alertsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_failed_total",
				Help:      "Total number of alert forwards that failed grouped by reason.",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.scansTotal,
		m.scanDuration,
		m.scanCreatedTotal,
		m.scanDuplicatesTotal,
		m.scanMessageErrorsTotal,
		m.alertsRelayedTotal,
		m.alertsFailedTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

// ObserveScan records the outcome of one scan call. outcome is "ok" or the
// fatal error class ("auth", "no_watch_targets", ...).
func (m *Metrics) ObserveScan(outcome string, duration time.Duration, created int, duplicates int) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.scanDuration.Observe(seconds)
	if created > 0 {
		m.scanCreatedTotal.Add(float64(created))
	}
	if duplicates > 0 {
		m.scanDuplicatesTotal.Add(float64(duplicates))
	}
}

func (m *Metrics) IncScanMessageError(kind string) {
	if m == nil {
		return
	}
	m.scanMessageErrorsTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) IncAlertRelayed() {
	if m == nil {
		return
	}
	m.alertsRelayedTotal.Inc()
}

func (m *Metrics) IncAlertFailed(reason string) {
	if m == nil {
		return
	}
	m.alertsFailedTotal.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
