package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"doflin-hub/internal/api/response"
	"doflin-hub/internal/metrics"
	"doflin-hub/internal/ratelimit"
)

// RateLimit gates a route group with the shared fixed-window governor,
// keyed by client IP. The reveal endpoint does its own Check call so it
// can audit denials; this wrapper covers the telemetry routes.
func RateLimit(limiter ratelimit.Limiter, prefix string, limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		result := limiter.Check(prefix+":"+c.ClientIP(), limit, window, time.Now())
		if !result.Allowed {
			metrics.RateLimitedTotal.Inc()
			response.FailRetryAfter(
				c,
				429,
				response.CodeRateLimited,
				"Has alcanzado el límite temporal de intentos. Intenta de nuevo en un minuto.",
				result.RetryAfter,
			)
			c.Abort()
			return
		}

		c.Next()
	}
}
