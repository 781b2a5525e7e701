package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/middleware"
)

type updateInfoBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePasswordBody struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAvatarBody struct {
	Avatar string `json:"avatar"`
}

func callerID(c *fiber.Ctx) (string, error) {
	res, ok := middleware.AuthResult(c)
	if !ok {
		return "", coursehub.ErrUnauthenticated
	}
	return res.UserID, nil
}

func userResponse(c *fiber.Ctx, user *coursehub.User) error {
	return c.JSON(fiber.Map{"success": true, "user": user})
}

func (h *handlers) me(c *fiber.Ctx) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	user, err := h.engine.UserInfo(c.UserContext(), id)
	if err != nil {
		return err
	}
	return userResponse(c, user)
}

func (h *handlers) updateInfo(c *fiber.Ctx) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	var body updateInfoBody
	if err := bind(c, &body); err != nil {
		return err
	}
	user, err := h.engine.UpdateUserInfo(c.UserContext(), id, coursehub.UpdateUserInfoRequest{
		Name:  body.Name,
		Email: body.Email,
	})
	if err != nil {
		return err
	}
	return userResponse(c, user)
}

func (h *handlers) updatePassword(c *fiber.Ctx) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	var body updatePasswordBody
	if err := bind(c, &body); err != nil {
		return err
	}
	user, err := h.engine.UpdatePassword(c.UserContext(), id, body.OldPassword, body.NewPassword)
	if err != nil {
		return err
	}
	return userResponse(c, user)
}

func (h *handlers) updateAvatar(c *fiber.Ctx) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	var body updateAvatarBody
	if err := bind(c, &body); err != nil {
		return err
	}
	user, err := h.engine.UpdateAvatar(c.UserContext(), id, body.Avatar)
	if err != nil {
		return err
	}
	return userResponse(c, user)
}
