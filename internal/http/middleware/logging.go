package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logging writes one record per request after it completes.
func Logging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == MetricsPath {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			// The auth middleware runs deeper in the chain; it reports the
			// subject back through this holder.
			holder := &subjectHolder{}
			next.ServeHTTP(ww, r.WithContext(withSubjectHolder(r.Context(), holder)))

			status := ww.Status()
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", routePattern(r)),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if holder.subject != "" {
				attrs = append(attrs, slog.String("subject", holder.subject))
			}

			log.LogAttrs(r.Context(), level, "http request", attrs...)
		})
	}
}

type subjectHolder struct {
	subject string
}

type subjectHolderKey struct{}

func withSubjectHolder(ctx context.Context, h *subjectHolder) context.Context {
	return context.WithValue(ctx, subjectHolderKey{}, h)
}

func recordSubject(ctx context.Context, subject string) {
	if h, ok := ctx.Value(subjectHolderKey{}).(*subjectHolder); ok {
		h.subject = subject
	}
}
