package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/core/engine"
	"github.com/unpackhq/unpack/internal/metrics"
	"github.com/unpackhq/unpack/internal/observability"
)

// RateLimit admits requests through limiter keyed by client IP. Rejected
// requests get Retry-After and are handed to reject, which writes the body.
// Admitted requests carry X-RateLimit-* headers.
func RateLimit(limiter *engine.RateLimiter, reject func(http.ResponseWriter, *http.Request, engine.Decision)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := ClientIP(r)
			decision := limiter.Allow(key)
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				now := time.Now()
				if limiter.Clock != nil {
					now = limiter.Clock()
				}
				retry := decision.RetryAfter(now)
				h.Set("Retry-After", strconv.Itoa(int(retry/time.Second)))
				metrics.RecordRateLimitRejection()
				if observability.ServerLogger != nil {
					observability.ServerLogger.Warn("Rate limit exceeded",
						zap.String("client", key),
						zap.Int("count", decision.Count),
						zap.String("request_id", GetRequestID(r.Context())),
					)
				}
				if reject != nil {
					reject(w, r, decision)
				} else {
					w.WriteHeader(http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of RemoteAddr. Forwarded headers count only
// when the server mounts chi's RealIP (server.trust_proxy), which rewrites
// RemoteAddr before this runs.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
