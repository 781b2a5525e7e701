package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
)

// RequestContext copies the client IP and User-Agent into the request's
// user context for rate limiting and audit records.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := coursehub.WithClientIP(c.UserContext(), c.IP())
		ctx = coursehub.WithUserAgent(ctx, c.Get(fiber.HeaderUserAgent))
		c.SetUserContext(ctx)
		return c.Next()
	}
}
