package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/televista/storefront-api/internal/common"
	"github.com/televista/storefront-api/internal/obs"
)

// Config describes how to derive a rate limit key and thresholds.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// Handler enforces rate limits before delegating to the next handler. The
// limiter key is scoped by route pattern, so a caller burning through the
// product quote budget does not starve checkout or wholesale quotes.
type Handler struct {
	Limiter Limiter
	Config  Config
	OnError func(error)
}

func scopedKey(r *http.Request, caller string) string {
	route := obs.RoutePatternFromContext(r.Context())
	if route == "" {
		route = r.URL.Path
	}
	return route + ":" + caller
}

// Middleware implements the http.Handler middleware interface. Limiter errors
// fail open: the request proceeds and OnError observes the failure.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Config.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := scopedKey(r, h.Config.Key(r))
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), key, h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		limitValue := h.Config.Max
		if limitValue < 0 {
			limitValue = 0
		}
		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(limitValue))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, common.CodeRateLimited, "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
