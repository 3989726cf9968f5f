package middleware

import "go.opentelemetry.io/otel/codes"

// spanStatus maps an HTTP status code onto the span status recorded when a
// request completes. The OpenTelemetry Go API only distinguishes Ok and
// Error, so the finer-grained outcome is carried in the description.
func spanStatus(status int) (codes.Code, string) {
	switch {
	case status >= 100 && status <= 399:
		return codes.Ok, ""
	case status == 401:
		return codes.Error, "Unauthenticated"
	case status == 403:
		return codes.Error, "PermissionDenied"
	case status == 404:
		return codes.Error, "NotFound"
	case status == 429:
		return codes.Error, "ResourceExhausted"
	case status >= 400 && status <= 499:
		return codes.Error, "InvalidArgument"
	case status == 501:
		return codes.Error, "Unimplemented"
	case status == 503:
		return codes.Error, "Unavailable"
	case status == 504:
		return codes.Error, "DeadlineExceeded"
	case status >= 500 && status <= 599:
		return codes.Error, "Internal"
	default:
		return codes.Error, "Unknown"
	}
}
