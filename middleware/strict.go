package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
)

func RequireStrict(engine *coursehub.Engine) fiber.Handler {
	return Authenticate(engine, coursehub.ModeStrict)
}
