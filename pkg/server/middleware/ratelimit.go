package middleware

import (
	"net/http"
	"strconv"

	"github.com/de-tools/medical-reports/pkg/serializers"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests over the process-wide token bucket with 429.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				rateLimitRejects.Inc()
				w.Header().Set("Retry-After", "1")
				serializers.RespondError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			if limiter.Limit() != rate.Inf {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(int(limiter.Limit())))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			}
			next.ServeHTTP(w, r)
		})
	}
}
