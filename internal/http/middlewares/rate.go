package middlewares

import (
	"math"
	"net/http"
	"strconv"

	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/farmasanti/tienda/internal/rate"
)

// MsgDemasiadosIntentos es la respuesta cuando se supera el límite.
const MsgDemasiadosIntentos = "Demasiados intentos. Espera unos minutos e inténtalo de nuevo."

// WithRateLimit limita por IP y path. Un limiter nil no limita; si el limiter
// falla se deja pasar el request.
func WithRateLimit(l rate.Limiter) Middleware {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), clientIP(r)+"|"+r.URL.Path)
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				http.Error(w, MsgDemasiadosIntentos, http.StatusTooManyRequests)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
