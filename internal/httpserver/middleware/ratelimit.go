package middleware

import (
	"net/http"
	"strconv"

	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/observability"
)

// RateLimit throttles requests per client IP. When the limit is reached the
// request is handed to onLimit, or answered with 429.
func RateLimit(instance *limiter.Limiter, onLimit http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())
			ip := instance.GetIPKey(r)

			lctx, err := instance.Get(r.Context(), ip)
			if err != nil {
				logger.Error("rate limit lookup failed", zap.String("ip", ip), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))

			if lctx.Reached {
				logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.Int64("limit", lctx.Limit))
				if onLimit != nil {
					onLimit.ServeHTTP(w, r)
					return
				}
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBody caps request bodies at n bytes.
func MaxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
