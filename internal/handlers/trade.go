package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"camillo/internal/repositories"
	"camillo/internal/services/trade"
	"camillo/internal/utils"
	"camillo/internal/utils/response"
)

type TradeHandler struct {
	service trade.Service
}

func NewTradeHandler(service trade.Service) *TradeHandler {
	return &TradeHandler{service: service}
}

func (h *TradeHandler) Create(c *fiber.Ctx) error {
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

	t, err := h.service.Create(c.Context(), claims.UserID, input.Amount)
	if err != nil {
		if errors.Is(err, trade.ErrInvalidAmount) {
			return response.ValidationError(c, err.Error())
		}
		return response.ServerError(c, "failed to create trade")
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *TradeHandler) List(c *fiber.Ctx) error {
	out, err := h.service.ListAll(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list trades")
	}
	return c.JSON(out)
}

func (h *TradeHandler) Complete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid trade id")
	}
	var input struct {
		Profit int64 `json:"profit"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	t, err := h.service.Complete(c.Context(), uint(id), input.Profit)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTradeNotFound):
			return response.NotFound(c, "trade not found")
		case errors.Is(err, trade.ErrAlreadyCompleted):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, "failed to complete trade")
		}
	}
	return response.Success(c, "trade completed", t)
}
