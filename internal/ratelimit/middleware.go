package ratelimit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// Middleware enforces a per-client-IP fixed window on a route group.
func Middleware(limiter *Limiter, scope string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := limiter.Allow(c.UserContext(), Key(scope, c.IP()), limit, window)
		if !res.Allowed {
			retryAfter := res.RetryAfterSeconds(time.Now())
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return apperrors.NewRateLimited("too many requests, slow down", retryAfter)
		}
		return c.Next()
	}
}
