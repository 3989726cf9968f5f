package middleware

import "net/http"

// defaultRoute is reported when the router matched no registered pattern.
// A fixed name keeps the route attribute's cardinality bounded even for
// requests that hit no route at all.
const defaultRoute = "default"

// RouteFormatter normalizes a matched route pattern into the name used for
// the span and the http.route attribute. Implementations must be
// deterministic, side-effect free, and safe for concurrent use; they are
// invoked once per request, before the span is created.
type RouteFormatter interface {
	Format(path string) string
}

// RouteFormatterFunc adapts a plain function to the RouteFormatter interface.
type RouteFormatterFunc func(path string) string

// Format implements RouteFormatter.
func (f RouteFormatterFunc) Format(path string) string { return f(path) }

// RouteMatcher reports the route pattern that would match a request. It lets
// the tracing and metrics middleware resolve the pattern even when they wrap
// the mux from outside, before dispatch has set http.Request.Pattern.
type RouteMatcher interface {
	Route(r *http.Request) string
}

// ServeMuxRoutes adapts an *http.ServeMux into a RouteMatcher through the
// mux's own Handler lookup. The lookup does not dispatch the request.
type ServeMuxRoutes struct {
	Mux *http.ServeMux
}

// Route implements RouteMatcher. It returns "" for unmatched requests.
func (m ServeMuxRoutes) Route(r *http.Request) string {
	_, pattern := m.Mux.Handler(r)
	return pattern
}
