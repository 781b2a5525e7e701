package httpapi

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/middleware"
)

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type activateBody struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialAuthBody struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func (h *handlers) register(c *fiber.Ctx) error {
	var body registerBody
	if err := bind(c, &body); err != nil {
		return err
	}
	res, err := h.engine.Register(c.UserContext(), coursehub.RegisterRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":         true,
		"message":         fmt.Sprintf("Please check your email %s to activate your account!", res.Email),
		"activationToken": res.ActivationToken,
	})
}

func (h *handlers) activate(c *fiber.Ctx) error {
	var body activateBody
	if err := bind(c, &body); err != nil {
		return err
	}
	user, err := h.engine.Activate(c.UserContext(), body.ActivationToken, body.ActivationCode)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "user": user})
}

func (h *handlers) login(c *fiber.Ctx) error {
	var body loginBody
	if err := bind(c, &body); err != nil {
		return err
	}
	res, err := h.engine.Login(c.UserContext(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return h.sendTokens(c, fiber.StatusOK, res)
}

func (h *handlers) socialAuth(c *fiber.Ctx) error {
	var body socialAuthBody
	if err := bind(c, &body); err != nil {
		return err
	}
	res, err := h.engine.SocialAuth(c.UserContext(), coursehub.SocialAuthRequest{
		Email:  body.Email,
		Name:   body.Name,
		Avatar: body.Avatar,
	})
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return h.sendTokens(c, status, res)
}

func (h *handlers) sendTokens(c *fiber.Ctx, status int, res *coursehub.LoginResult) error {
	h.cookies.setTokens(c, res.Tokens)
	return c.Status(status).JSON(fiber.Map{
		"success":     true,
		"user":        res.User,
		"accessToken": res.Tokens.AccessToken,
	})
}

// logout runs behind the JWT-only guard, so repeating it after the session
// is gone still succeeds.
func (h *handlers) logout(c *fiber.Ctx) error {
	res, ok := middleware.AuthResult(c)
	if !ok {
		return coursehub.ErrUnauthenticated
	}
	if err := h.engine.Logout(c.UserContext(), res.UserID); err != nil {
		return err
	}
	h.cookies.clearTokens(c)
	return c.JSON(fiber.Map{"success": true, "message": "Logged out successfully"})
}

func (h *handlers) refresh(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Cookies(refreshTokenCookie))
	if token == "" {
		token = strings.TrimSpace(c.Get("X-Refresh-Token"))
	}
	pair, err := h.engine.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	h.cookies.setTokens(c, *pair)
	return c.JSON(fiber.Map{"success": true, "accessToken": pair.AccessToken})
}
