package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this instrumentation to the tracer provider.
const tracerName = "github.com/dukepan/linkpulse/internal/middleware"

// Tracing instruments every request with a server-kind span. The upstream
// trace context is extracted from the request headers, a span named after
// the matched route pattern is opened around the inner handler, and the
// response status code (or a handler panic) determines the final span
// status. Tracing is best effort: no failure in here may fail a request,
// and the middleware never alters the handler's response or panic value.
type Tracing struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	formatter  RouteFormatter
	routes     RouteMatcher
	serverName string
}

// TracingOption configures the Tracing middleware.
type TracingOption func(*Tracing)

// WithRouteFormatter passes matched routes through f before they are used
// as span names and http.route attributes.
func WithRouteFormatter(f RouteFormatter) TracingOption {
	return func(t *Tracing) { t.formatter = f }
}

// WithRouteMatcher resolves route patterns through m for requests that carry
// no pattern of their own, which is the case whenever the middleware is
// installed outside the mux.
func WithRouteMatcher(m RouteMatcher) TracingOption {
	return func(t *Tracing) { t.routes = m }
}

// WithServerName records name on spans whenever it differs from the Host
// the client connected with.
func WithServerName(name string) TracingOption {
	return func(t *Tracing) { t.serverName = name }
}

// WithPropagator overrides the globally registered text map propagator.
func WithPropagator(p propagation.TextMapPropagator) TracingOption {
	return func(t *Tracing) { t.propagator = p }
}

// WithTracerProvider overrides the globally registered tracer provider.
// A nil provider disables span creation entirely; requests still pass
// through to the inner handler.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(t *Tracing) {
		if tp == nil {
			t.tracer = nil
			return
		}
		t.tracer = tp.Tracer(tracerName)
	}
}

// NewTracing builds the tracing middleware. With no options it extracts
// parent context with the globally registered propagator, starts spans on
// the globally registered tracer provider, and names spans after the raw
// matched pattern, or "default" when no route matched.
func NewTracing(opts ...TracingOption) *Tracing {
	t := &Tracing{tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Middleware wraps next with request tracing.
func (t *Tracing) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		propagator := t.propagator
		if propagator == nil {
			propagator = otel.GetTextMapPropagator()
		}
		ctx := propagator.Extract(req.Context(), headerCarrier(req.Header))

		if t.tracer == nil {
			// No tracer means no instrumentation, never a failed request.
			next.ServeHTTP(w, req.WithContext(ctx))
			return
		}

		route := t.routePattern(req)
		ctx, span := t.tracer.Start(ctx, route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(requestAttributes(req, route, t.serverName)...),
		)

		defer func() {
			if v := recover(); v != nil {
				span.SetStatus(codes.Error, fmt.Sprint(v))
				span.End()
				panic(v)
			}
		}()

		rw := newStatusRecorder(w)
		next.ServeHTTP(rw, req.WithContext(ctx))

		span.SetAttributes(attrHTTPStatusCode.Int(rw.status))
		span.SetStatus(spanStatus(rw.status))
		span.End()
	})
}

// routePattern resolves the route name for a request: the pattern recorded
// by the mux during dispatch, a RouteMatcher lookup otherwise, and the
// fixed fallback when nothing matched. The formatter, when configured, is
// applied to the result either way.
func (t *Tracing) routePattern(req *http.Request) string {
	route := req.Pattern
	if route == "" && t.routes != nil {
		route = t.routes.Route(req)
	}
	if route == "" {
		route = defaultRoute
	}
	if t.formatter != nil {
		route = t.formatter.Format(route)
	}
	return route
}
