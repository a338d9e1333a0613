package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinebook/booking-api/internal/config"
)

// NewRateLimiter returns a fixed-window limiter keyed by client IP and
// route: the first request of a window creates a counter with expiry,
// later requests increment it, and once the counter exceeds the limit the
// request is rejected with 429 and a Retry-After header. When disabled or
// without Redis it passes everything through.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			window := time.Now().Unix() / int64(cfg.Window.Seconds())
			key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, c.RealIP(), c.Path(), window)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis trouble must not take the API down.
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}
			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if n > int64(cfg.Limit) {
				retry := int(cfg.Window.Seconds())
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
