package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
)

// RequireJWTOnly verifies the access token without touching Redis. Logout
// uses it so a repeated call with a still valid token succeeds after the
// session is gone.
func RequireJWTOnly(engine *coursehub.Engine) fiber.Handler {
	return Authenticate(engine, coursehub.ModeJWTOnly)
}
