package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
)

// AuthorizeRoles rejects callers whose role is not in roles with
// coursehub.ErrForbidden.
func AuthorizeRoles(engine *coursehub.Engine, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, ok := AuthResult(c)
		if !ok {
			return fmt.Errorf("%w: %w", coursehub.ErrUnauthenticated, coursehub.ErrMissingToken)
		}
		if engine == nil {
			return coursehub.ErrEngineNotReady
		}
		if err := engine.Authorize(c.UserContext(), res, roles...); err != nil {
			return err
		}
		return c.Next()
	}
}
