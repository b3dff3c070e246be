package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"camillo/internal/models"
	"camillo/internal/repositories"
	"camillo/internal/services/deposit"
	"camillo/internal/utils"
	"camillo/internal/utils/response"
)

type DepositHandler struct {
	service deposit.Service
}

func NewDepositHandler(service deposit.Service) *DepositHandler {
	return &DepositHandler{service: service}
}

func (h *DepositHandler) Create(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	var input struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	req, err := h.service.Create(c.Context(), claims.UserID, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, deposit.ErrInvalidAmount):
			return response.ValidationError(c, err.Error())
		case errors.Is(err, repositories.ErrUserNotFound):
			return response.NotFound(c, "user not found")
		default:
			return response.ServerError(c, "failed to create deposit request")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *DepositHandler) List(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	if claims.Role == models.RoleAdmin {
		out, err := h.service.ListAll(c.Context())
		if err != nil {
			return response.ServerError(c, "failed to list deposit requests")
		}
		return c.JSON(out)
	}

	out, err := h.service.ListByUser(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to list deposit requests")
	}
	return c.JSON(out)
}

func (h *DepositHandler) Approve(c *fiber.Ctx) error {
	return h.settle(c, h.service.Approve, "deposit approved")
}

func (h *DepositHandler) Reject(c *fiber.Ctx) error {
	return h.settle(c, h.service.Reject, "deposit rejected")
}

func (h *DepositHandler) settle(c *fiber.Ctx, fn func(ctx context.Context, id uint) (*models.DepositRequest, error), msg string) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid request id")
	}
	req, err := fn(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRequestNotFound):
			return response.NotFound(c, "deposit request not found")
		case errors.Is(err, deposit.ErrAlreadySettled):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, "failed to settle deposit request")
		}
	}
	return response.Success(c, msg, req)
}
