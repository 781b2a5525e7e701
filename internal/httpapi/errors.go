package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/internal/courses"
)

const internalMessage = "internal server error"

// statusFor maps err to a status code. ok is false for errors outside the
// domain taxonomy, which are reported as 500 without their text.
func statusFor(err error) (status int, ok bool) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, true
	case errors.Is(err, coursehub.ErrUnauthenticated):
		return http.StatusUnauthorized, true
	case errors.Is(err, coursehub.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, coursehub.ErrLoginRateLimited),
		errors.Is(err, coursehub.ErrActivationLimited),
		errors.Is(err, coursehub.ErrRegisterLimited),
		errors.Is(err, coursehub.ErrRefreshRateLimited):
		return http.StatusTooManyRequests, true
	case errors.Is(err, coursehub.ErrUserNotFound),
		errors.Is(err, courses.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, coursehub.ErrDuplicateEmail),
		errors.Is(err, coursehub.ErrInvalidCredentials),
		errors.Is(err, coursehub.ErrTokenInvalid),
		errors.Is(err, coursehub.ErrTokenExpired),
		errors.Is(err, coursehub.ErrCodeMismatch),
		errors.Is(err, coursehub.ErrSessionRevoked),
		errors.Is(err, coursehub.ErrMissingToken),
		errors.Is(err, coursehub.ErrInvalidInput),
		errors.Is(err, coursehub.ErrPasswordReuse),
		errors.Is(err, coursehub.ErrPasswordPolicy),
		errors.Is(err, courses.ErrInvalid):
		return http.StatusBadRequest, true
	default:
		return http.StatusInternalServerError, false
	}
}

// errorHandler renders every handler error as {"success": false, "message"}.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, ok := statusFor(err)
		message := err.Error()
		if !ok {
			log.ErrorContext(c.UserContext(), "request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
			message = internalMessage
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
