package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCountsRequestsByRouteAndStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, ServeMuxRoutes{Mux: mux})
	handler := metrics.Middleware(mux)

	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil))
	}
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/users/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/broken", "500")))
}

func TestMetricsDefaultRouteForUnmatchedRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/known", func(w http.ResponseWriter, r *http.Request) {})

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, ServeMuxRoutes{Mux: mux})
	handler := metrics.Middleware(mux)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "default", "404")))
}

func TestMetricsInFlightReturnsToZero(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, nil)

	var during float64
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(metrics.inFlight.WithLabelValues("GET", "default"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.inFlight.WithLabelValues("GET", "default")))
}
