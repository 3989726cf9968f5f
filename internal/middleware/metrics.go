package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes request counts, latencies, and in-flight requests,
// partitioned by method, route pattern, and status code. Routes are
// resolved the same way the tracing middleware resolves them so the label
// cardinality stays bounded.
type Metrics struct {
	routes   RouteMatcher
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// NewMetrics creates the middleware and registers its collectors with reg.
func NewMetrics(reg prometheus.Registerer, routes RouteMatcher) *Metrics {
	m := &Metrics{
		routes: routes,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed, partitioned by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distribution, partitioned by method, route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Currently active HTTP requests, partitioned by method and route.",
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

// Middleware wraps next with request metric collection.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		route := req.Pattern
		if route == "" && m.routes != nil {
			route = m.routes.Route(req)
		}
		if route == "" {
			route = defaultRoute
		}

		m.inFlight.WithLabelValues(req.Method, route).Inc()
		defer m.inFlight.WithLabelValues(req.Method, route).Dec()

		rw := newStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(rw, req)

		status := strconv.Itoa(rw.status)
		m.requests.WithLabelValues(req.Method, route, status).Inc()
		m.duration.WithLabelValues(req.Method, route, status).Observe(time.Since(start).Seconds())
	})
}
