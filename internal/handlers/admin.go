package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"camillo/internal/repositories"
	"camillo/internal/services/admin"
	"camillo/internal/utils"
	"camillo/internal/utils/response"
)

type AdminHandler struct {
	service admin.Service
}

func NewAdminHandler(service admin.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// AdjustBalance sets a user's balance. The delta is booked through the
// ledger; a positive delta also opens an admin-credited investment.
func (h *AdminHandler) AdjustBalance(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	var input struct {
		Balance int64 `json:"balance"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	user, err := h.service.AdjustBalance(c.Context(), uint(id), input.Balance)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return response.NotFound(c, "user not found")
		case errors.Is(err, admin.ErrNoChange):
			return response.ValidationError(c, err.Error())
		default:
			return response.ServerError(c, "failed to adjust balance")
		}
	}
	return response.Success(c, "balance updated", user)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list users")
	}
	return c.JSON(users)
}

func (h *AdminHandler) SearchUsers(c *fiber.Ctx) error {
	fragment := c.Query("phone")
	if fragment == "" {
		return response.BadRequest(c, "phone query parameter is required")
	}
	users, err := h.service.SearchUsersByPhone(c.Context(), fragment)
	if err != nil {
		return response.ServerError(c, "failed to search users")
	}
	return c.JSON(users)
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	user, err := h.service.GetUser(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "user not found")
		}
		return response.ServerError(c, "failed to get user")
	}
	return c.JSON(user)
}

// Me returns the authenticated user's profile.
func (h *AdminHandler) Me(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	user, err := h.service.GetUser(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to get user")
	}
	return c.JSON(user)
}

func (h *AdminHandler) Notifications(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	out, err := h.service.Notifications(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to get notifications")
	}
	return c.JSON(out)
}

// Digest returns the admin's pending-work bundle: payments waiting for
// confirmation, recent profit payouts and withdrawals to disburse.
func (h *AdminHandler) Digest(c *fiber.Ctx) error {
	out, err := h.service.AdminDigest(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to get notifications")
	}
	return c.JSON(out)
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to get stats")
	}
	return c.JSON(stats)
}
