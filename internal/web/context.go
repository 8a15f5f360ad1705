package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/candidate-import/internal/core"
)

// withClientContext stores the client IP and user agent on the request
// context for the service's import logs. Runs after TrustedRealIP.
func withClientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), clientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP strips the port from RemoteAddr when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
