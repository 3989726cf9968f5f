package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys, per the OpenTelemetry HTTP semantic conventions.
const (
	attrHTTPMethod     = attribute.Key("http.method")
	attrHTTPFlavor     = attribute.Key("http.flavor")
	attrHTTPHost       = attribute.Key("http.host")
	attrHTTPRoute      = attribute.Key("http.route")
	attrHTTPScheme     = attribute.Key("http.scheme")
	attrHTTPServerName = attribute.Key("http.server_name")
	attrHTTPTarget     = attribute.Key("http.target")
	attrHTTPUserAgent  = attribute.Key("http.user_agent")
	attrHTTPClientIP   = attribute.Key("http.client_ip")
	attrHTTPStatusCode = attribute.Key("http.status_code")
	attrNetHostPort    = attribute.Key("net.host.port")
	attrNetPeerIP      = attribute.Key("net.peer.ip")
)

// requestAttributes derives the standard span attributes for an inbound
// request. serverName is the host this server was configured with; it is
// recorded only when it differs from the Host the client connected with.
// Optional metadata that cannot be derived (port, user agent, addresses) is
// simply omitted, never an error.
func requestAttributes(r *http.Request, route, serverName string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 12)
	attrs = append(attrs,
		attrHTTPMethod.String(r.Method),
		attrHTTPFlavor.String(strings.TrimPrefix(r.Proto, "HTTP/")),
		attrHTTPHost.String(r.Host),
		attrHTTPRoute.String(route),
		attrHTTPScheme.String(requestScheme(r)),
	)
	if serverName != "" && serverName != r.Host {
		attrs = append(attrs, attrHTTPServerName.String(serverName))
	}
	if port, ok := hostPort(r.Host); ok {
		attrs = append(attrs, attrNetHostPort.Int(port))
	}
	if r.URL != nil {
		if target := r.URL.RequestURI(); target != "" {
			attrs = append(attrs, attrHTTPTarget.String(target))
		}
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attrHTTPUserAgent.String(ua))
	}
	clientIP := realClientIP(r)
	if clientIP != "" {
		attrs = append(attrs, attrHTTPClientIP.String(clientIP))
	}
	if r.RemoteAddr != "" && r.RemoteAddr != clientIP {
		// The socket peer differs from the resolved client, so the request
		// came through a proxy. Record who the server actually talked to.
		attrs = append(attrs, attrNetPeerIP.String(r.RemoteAddr))
	}
	return attrs
}

// requestScheme resolves the request scheme, honoring a forwarding proxy's
// X-Forwarded-Proto before falling back to the connection itself.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		if i := strings.IndexByte(proto, ','); i >= 0 {
			proto = proto[:i]
		}
		return strings.TrimSpace(proto)
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// hostPort extracts the numeric port from a host:port value. A missing or
// non-numeric port is not an error, the attribute is just omitted.
func hostPort(host string) (int, bool) {
	i := strings.LastIndexByte(host, ':')
	if i < 0 || i == len(host)-1 {
		return 0, false
	}
	port, err := strconv.Atoi(host[i+1:])
	if err != nil {
		return 0, false
	}
	return port, true
}

// realClientIP resolves the client address the way a proxy-aware server
// does: first X-Forwarded-For entry, then X-Real-Ip, then the socket peer.
func realClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
