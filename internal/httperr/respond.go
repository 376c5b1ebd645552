package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Respond translates an error from the service layers into an HTTP response.
// Auth and internal failures never leak detail to the client.
func Respond(c *fiber.Ctx, err error) error {
	var conflict *LockConflict
	switch {
	case errors.As(err, &conflict):
		c.Set("X-WOPI-Lock", conflict.Current)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "lock conflict"})
	case errors.Is(err, ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrAuth):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, ErrUpstream):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "storage backend unavailable"})
	case errors.Is(err, ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limited"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
