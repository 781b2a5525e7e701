package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
)

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

const authResultLocalsKey = "coursehub.auth"

// AuthResult returns the result stored by a guard.
func AuthResult(c *fiber.Ctx) (*coursehub.AuthResult, bool) {
	res, ok := c.Locals(authResultLocalsKey).(*coursehub.AuthResult)
	return res, ok && res != nil
}

// Authenticate returns a guard that validates the caller in mode.
func Authenticate(engine *coursehub.Engine, mode coursehub.ValidationMode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if engine == nil {
			return coursehub.ErrEngineNotReady
		}

		res, err := engine.Authenticate(c.UserContext(), AccessToken(c), mode)
		if err != nil {
			return err
		}

		c.Locals(authResultLocalsKey, res)
		return c.Next()
	}
}

// AccessToken returns the cookie token or, failing that, the bearer token.
func AccessToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(AccessTokenCookie)); token != "" {
		return token
	}
	token, _ := bearerToken(c.Get(fiber.HeaderAuthorization))
	return token
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}
