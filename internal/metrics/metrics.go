// Package metrics exposes Prometheus collectors for game and HTTP activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "heroquest"

// Metrics holds every collector the service reports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations     *prometheus.CounterVec
	operationTime  *prometheus.HistogramVec
	pointsAwarded  *prometheus.CounterVec
	badgesUnlocked *prometheus.CounterVec
	openDialogs    prometheus.Gauge
	cacheLookups   *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// MustNewMetrics creates collectors and registers them with reg.
// Registration errors panic, as promauto does.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "operations_total",
			Help:      "Game operations by name and result.",
		}, []string{"operation", "result"}),
		operationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "operation_duration_seconds",
			Help:      "Time spent in game operations including storage round trips.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		pointsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "points_awarded_total",
			Help:      "Points awarded to players by source.",
		}, []string{"source"}),
		badgesUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "badges_unlocked_total",
			Help:      "Badges unlocked by players.",
		}, []string{"badge"}),
		openDialogs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "story",
			Name:      "open_dialogs",
			Help:      "Story dialogs currently open.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "cache_lookups_total",
			Help:      "Player state cache lookups by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.operations,
		m.operationTime,
		m.pointsAwarded,
		m.badgesUnlocked,
		m.openDialogs,
		m.cacheLookups,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveOperation records one game operation
func (m *Metrics) ObserveOperation(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.operationTime.WithLabelValues(op).Observe(d.Seconds())
}

// AddPoints records points awarded from a source
func (m *Metrics) AddPoints(source string, points int) {
	if m == nil || points <= 0 {
		return
	}
	m.pointsAwarded.WithLabelValues(source).Add(float64(points))
}

// IncBadgeUnlocked records a badge unlock
func (m *Metrics) IncBadgeUnlocked(badgeID string) {
	if m == nil {
		return
	}
	m.badgesUnlocked.WithLabelValues(badgeID).Inc()
}

// SetOpenDialogs reports the number of open story dialogs
func (m *Metrics) SetOpenDialogs(n int) {
	if m == nil {
		return
	}
	m.openDialogs.Set(float64(n))
}

// ObserveCacheLookup records a storage cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
