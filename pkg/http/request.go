package http

import (
	"net"
	"net/http"
)

// ClientIP returns the client network address for rate-limit keying.
// chi's middleware.RealIP has already rewritten RemoteAddr from
// X-Forwarded-For / X-Real-IP when the request came through a proxy.
func ClientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	// RemoteAddr may include port: "ip:port"
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
