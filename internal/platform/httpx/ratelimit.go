package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Limiter throttles heavy endpoints (exports, imports) per actor, falling back to the client IP.
func Limiter(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(RateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "")
		}),
	)
}

// RateLimitKey keys requests by authenticated actor id, else by IP.
func RateLimitKey(r *http.Request) (string, error) {
	if actor := shared.ActorFromContext(r.Context()); actor.Authenticated && actor.ID > 0 {
		return "user:" + strconv.FormatInt(actor.ID, 10), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
