package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	ordersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of orders placed through checkout.",
		},
	)

	orderValue = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "value_dollars",
			Help:      "Distribution of order totals in dollars.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8), // $5 to ~$640
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Total number of order status transitions.",
		},
		[]string{"from", "to"},
	)

	cartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Total number of cart mutations by operation.",
		},
		[]string{"operation"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ordersPlaced,
		orderValue,
		statusTransitions,
		cartOperations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordOrderPlaced records a successful checkout.
func RecordOrderPlaced(total float64) {
	ordersPlaced.Inc()
	orderValue.Observe(total)
}

// RecordStatusTransition records an order status change.
func RecordStatusTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

// RecordCartOperation records a cart mutation.
func RecordCartOperation(operation string) {
	cartOperations.WithLabelValues(operation).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource ids so metric labels stay bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "products", "categories", "orders", "favorites":
		if len(parts) == 1 {
			return "/" + parts[0]
		}
		if len(parts) >= 3 {
			return "/" + parts[0] + "/:id/" + parts[2]
		}
		return "/" + parts[0] + "/:id"
	case "cart":
		if len(parts) >= 3 && parts[1] == "items" {
			return "/cart/items/:id"
		}
		return "/" + trimmed
	default:
		return "/" + parts[0]
	}
}
