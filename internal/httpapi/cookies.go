package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/middleware"
)

const refreshTokenCookie = "refreshToken"

type cookieConfig struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func (cc cookieConfig) cookie(name, value string, ttl time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HTTPOnly: true,
		Secure:   cc.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (cc cookieConfig) setTokens(c *fiber.Ctx, pair coursehub.TokenPair) {
	c.Cookie(cc.cookie(middleware.AccessTokenCookie, pair.AccessToken, cc.accessTTL))
	c.Cookie(cc.cookie(refreshTokenCookie, pair.RefreshToken, cc.refreshTTL))
}

// clearTokens overwrites both cookies with empty values that expire in the
// past.
func (cc cookieConfig) clearTokens(c *fiber.Ctx) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		ck := cc.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0).UTC()
		c.Cookie(ck)
	}
}
