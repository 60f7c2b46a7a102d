// Package metrics объявляет метрики prometheus сервиса и middleware для HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studio_churn"

var (
	// EngineDuration время расчёта по операциям движка.
	// Labels: operation (series, studios, overview, members, facets)
	EngineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "duration_seconds",
		Help:      "Churn engine computation latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation"})

	// SnapshotRecords число абонементов в последнем загруженном снимке.
	SnapshotRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "records",
		Help:      "Number of membership records in the last loaded snapshot",
	})

	// SnapshotLoads загрузки снимка. Labels: source (cache, storage)
	SnapshotLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "loads_total",
		Help:      "Snapshot loads by source",
	}, []string{"source"})

	// Inconsistencies записи с противоречивыми данными. Labels: kind
	Inconsistencies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "inconsistencies_total",
		Help:      "Membership records with inconsistent dates or status",
	}, []string{"kind"})

	// NoticesPublished уведомления об истекающих абонементах, отправленные планировщиком.
	NoticesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "notices_published_total",
		Help:      "Expiring membership notices published to the broker",
	})

	// TicketsCreated тикеты. Labels: source (api, notifier)
	TicketsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tickets",
		Name:      "created_total",
		Help:      "Support tickets created",
	}, []string{"source"})

	// RemindersSent письма-напоминания участникам. Labels: result (sent, failed)
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifier",
		Name:      "reminders_total",
		Help:      "Renewal reminder emails by result",
	}, []string{"result"})

	httpRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

// ObserveEngine записывает длительность операции движка, начатой в start.
func ObserveEngine(operation string, start time.Time) {
	EngineDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// HTTPMiddleware считает длительность запросов по шаблону маршрута chi.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
