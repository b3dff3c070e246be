// Package handlers exposes the HTTP layer. Handlers parse and
// validate requests, call the services and map service errors to
// status codes; they never touch repositories directly.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"camillo/internal/services/auth"
	"camillo/internal/utils/response"
)

type AuthHandler struct {
	service auth.Service
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input auth.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	user, accessToken, refreshToken, err := h.service.Register(c.Context(), input)
	if err != nil {
		switch err {
		case auth.ErrEmailTaken:
			return response.Conflict(c, err.Error())
		case auth.ErrWeakPassword:
			return response.ValidationError(c, err.Error())
		default:
			return response.BadRequest(c, err.Error())
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	user, accessToken, refreshToken, err := h.service.Login(c.Context(), input.Email, input.Phone, input.Password)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	accessToken, refreshToken, err := h.service.RefreshTokens(c.Context(), input.RefreshToken)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, err.Error())
	}

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}
