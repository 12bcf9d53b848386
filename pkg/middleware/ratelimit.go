package middleware

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/metrics"
)

// RateLimit throttles requests with a single token bucket shared by all
// clients. Health checks bypass it. A zero rate disables limiting. m may be
// nil.
func RateLimit(cfg config.RateLimitConfig, m *metrics.Metrics) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = max(1, int(cfg.RequestsPerSecond))
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow() {
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				w.Header().Set("Retry-After", "1")
				writeError(w, apperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatusCode(err))
	w.Write([]byte(`{"error":"` + err.Error() + `"}`))
}
