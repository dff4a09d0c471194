package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// requestLog collects attributes that inner handlers learn about the request,
// such as the authenticated user, so the access log line can include them.
type requestLog struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

type requestLogKey struct{}

// Annotate adds an attribute to the access log line of the current request.
// It is a no-op outside NewStructuredLogger.
func Annotate(ctx context.Context, attr slog.Attr) {
	rl, ok := ctx.Value(requestLogKey{}).(*requestLog)
	if !ok {
		return
	}
	rl.mu.Lock()
	rl.attrs = append(rl.attrs, attr)
	rl.mu.Unlock()
}

// AnnotatePrincipal records the authenticated user id. Mount it after auth.Middleware.
func AnnotatePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := auth.PrincipalFrom(r.Context()); ok {
			Annotate(r.Context(), slog.String("user_id", p.UserID))
		}
		next.ServeHTTP(w, r)
	})
}

// NewStructuredLogger is a custom middleware that provides structured logging and request metrics.
// httpMetrics may be nil.
func NewStructuredLogger(logger *slog.Logger, httpMetrics *metrics.HTTP) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			tww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			rl := &requestLog{}
			r = r.WithContext(context.WithValue(r.Context(), requestLogKey{}, rl))

			t_start := time.Now()
			defer func() {
				status := tww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				latency := time.Since(t_start)

				var pattern string
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					pattern = rctx.RoutePattern()
				}
				route := pattern
				if route == "" {
					route = r.URL.Path
				}

				requestAttrs := []any{
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("route", route),
					slog.String("remote_addr", r.RemoteAddr),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				}
				rl.mu.Lock()
				for _, a := range rl.attrs {
					requestAttrs = append(requestAttrs, a)
				}
				rl.mu.Unlock()

				responseAttrs := slog.Group("response",
					slog.Int("status", status),
					slog.Int("bytes", tww.BytesWritten()),
					slog.String("latency", latency.String()),
				)

				if status >= 500 {
					logger.Error("server error", slog.Group("request", requestAttrs...), responseAttrs)
				} else {
					logger.Info("request completed", slog.Group("request", requestAttrs...), responseAttrs)
				}

				httpMetrics.Observe(r.Method, pattern, status, latency)
			}()

			next.ServeHTTP(tww, r)
		}
		return http.HandlerFunc(fn)
	}
}
