package auth

import (
	"net"
	"net/http"
)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware verifies the bearer token and stores the resulting Principal on the request context.
func Middleware(secret []byte, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractBearer(r.Header.Get("Authorization"))
			if token == "" {
				onError(w, r, ErrUnauthenticated)
				return
			}

			claims, err := ParseJWT(token, secret)
			if err != nil {
				onError(w, r, err)
				return
			}

			p := Principal{
				UserID:    claims.Subject,
				Roles:     claims.Roles,
				IPAddress: clientIP(r),
				UserAgent: r.UserAgent(),
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RemoteAddr has already been rewritten by chi's RealIP when running behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
