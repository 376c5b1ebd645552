package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/DocBridge/internal/ratelimit"
)

// RateLimit rejects requests over the class budget with 429 and a
// Retry-After header carrying the seconds left in the window.
func RateLimit(limiter *ratelimit.Limiter, class ratelimit.Class) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, retryAfter := limiter.Allow(c.IP(), class)
		if !ok {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limited",
				"retry_after": retryAfter,
			})
		}
		return c.Next()
	}
}
