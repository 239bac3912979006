package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"motiv8/internal/infrastructure/ratelimit"
	"motiv8/pkg/errors"
	"motiv8/pkg/logger"
	"motiv8/pkg/response"
)

type RateLimitMiddleware struct {
	limiter *ratelimit.RateLimiter
}

func NewRateLimitMiddleware(limiter *ratelimit.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit throttles the authenticated caller for one action. It must run
// after Authenticate; anonymous requests are keyed by IP.
func (m *RateLimitMiddleware) Limit(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := c.Get(ContextUID).(string)
			if !ok || key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, retryAfter := m.limiter.Allow(key, action)
			if !allowed {
				logger.Warn("rate limit hit: key=%s action=%s retry=%v", key, action, retryAfter)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Too many requests, slow down"))
			}

			return next(c)
		}
	}
}
