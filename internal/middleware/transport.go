package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Transport instruments outbound requests: it opens a client-kind span,
// injects the trace context into the request headers so the next hop can
// continue the trace, and records the response status with the same mapping
// the server side uses. A transport error is recorded as an error status
// and returned unchanged.
type Transport struct {
	// Base performs the actual round trip; nil means http.DefaultTransport.
	Base http.RoundTripper

	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewTransport wraps base with client-side tracing against the globally
// registered tracer provider and propagator.
func NewTransport(base http.RoundTripper) *Transport {
	return &Transport{Base: base, tracer: otel.Tracer(tracerName)}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	tracer := t.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ctx, span := tracer.Start(req.Context(), req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attrHTTPMethod.String(req.Method),
			attrHTTPHost.String(req.URL.Host),
			attrHTTPTarget.String(req.URL.RequestURI()),
			attrHTTPScheme.String(req.URL.Scheme),
		),
	)
	defer span.End()

	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(ctx)
	propagator := t.propagator
	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}
	propagator.Inject(ctx, headerCarrier(req.Header))

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	res, err := base.RoundTrip(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attrHTTPStatusCode.Int(res.StatusCode))
	span.SetStatus(spanStatus(res.StatusCode))
	return res, nil
}
