package api

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukepan/linkpulse/internal/analytics"
	"github.com/dukepan/linkpulse/internal/auth"
	"github.com/dukepan/linkpulse/internal/cache"
	"github.com/dukepan/linkpulse/internal/config"
	"github.com/dukepan/linkpulse/internal/db"
	"github.com/dukepan/linkpulse/internal/events"
	"github.com/dukepan/linkpulse/internal/linkcheck"
	"github.com/dukepan/linkpulse/internal/middleware"
	"github.com/dukepan/linkpulse/internal/utils"
)

type Router struct {
	mux        *http.ServeMux
	db         *db.Database
	cache      *cache.Cache
	jwtMgr     *auth.JWTManager
	hub        *events.Hub
	aggregator *analytics.Aggregator
	checker    *linkcheck.Checker
	cfg        *config.Config
	logger     *utils.Logger
}

// NewRouter creates the HTTP handler tree: the mux with all endpoints, and
// the middleware chain around it. Tracing is outermost so every request is
// spanned, including rejections from auth and the rate limiter.
func NewRouter(database *db.Database, redisCache *cache.Cache, hub *events.Hub, aggregator *analytics.Aggregator, checker *linkcheck.Checker, cfg *config.Config, logger *utils.Logger) http.Handler {
	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("Failed to initialize JWT manager: %v", err)
	}

	r := &Router{
		mux:        http.NewServeMux(),
		db:         database,
		cache:      redisCache,
		jwtMgr:     jwtMgr,
		hub:        hub,
		aggregator: aggregator,
		checker:    checker,
		cfg:        cfg,
		logger:     logger,
	}

	authMW := middleware.NewAuth(jwtMgr)
	rateLimiter := middleware.NewRateLimiter(redisCache.GetClient(), cfg.RateLimitBurst, cfg.RateLimitRate)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMW.Middleware(rateLimiter.Middleware(h))
	}

	// Public endpoints
	r.mux.HandleFunc("POST /auth/signup", r.SignupHandler)
	r.mux.HandleFunc("POST /auth/login", r.LoginHandler)
	r.mux.HandleFunc("GET /healthz", r.HealthzHandler)
	r.mux.Handle("GET /metrics", promhttp.Handler())
	r.mux.HandleFunc("GET /{slug}", r.RedirectHandler)
	r.mux.HandleFunc("GET /ws/stats", r.StatsSocketHandler)

	// Protected link management endpoints
	r.mux.Handle("POST /api/links", protected(r.CreateLinkHandler))
	r.mux.Handle("GET /api/links", protected(r.ListLinksHandler))
	r.mux.Handle("DELETE /api/links/{id}", protected(r.DeleteLinkHandler))

	// Middleware chain, outermost first: tracing, request ID, metrics.
	routes := middleware.ServeMuxRoutes{Mux: r.mux}
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer, routes)
	tracing := middleware.NewTracing(
		middleware.WithRouteMatcher(routes),
		middleware.WithServerName(cfg.ServerName),
	)

	var handler http.Handler = r.mux
	handler = metrics.Middleware(handler)
	handler = middleware.RequestID(handler)
	handler = tracing.Middleware(handler)

	return handler
}
