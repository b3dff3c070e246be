package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"camillo/internal/models"
	"camillo/internal/repositories"
	"camillo/internal/services/ledger"
	"camillo/internal/utils"
	"camillo/internal/utils/response"
)

type TransactionHandler struct {
	ledger ledger.Service
}

func NewTransactionHandler(ledgerSvc ledger.Service) *TransactionHandler {
	return &TransactionHandler{ledger: ledgerSvc}
}

func (h *TransactionHandler) ListMine(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	out, err := h.ledger.ListByUser(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to list transactions")
	}
	return c.JSON(out)
}

func (h *TransactionHandler) ListAll(c *fiber.Ctx) error {
	out, err := h.ledger.ListAll(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list transactions")
	}
	return c.JSON(out)
}

func (h *TransactionHandler) ListPendingWithdrawals(c *fiber.Ctx) error {
	out, err := h.ledger.ListPendingWithdrawals(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list pending withdrawals")
	}
	return c.JSON(out)
}

// RequestWithdrawal creates a pending withdrawal for the caller.
func (h *TransactionHandler) RequestWithdrawal(c *fiber.Ctx) error {
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

	txn, err := h.ledger.RequestWithdrawal(c.Context(), claims.UserID, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, ledger.ErrInsufficientBalance):
			return response.ValidationError(c, err.Error())
		case errors.Is(err, repositories.ErrUserNotFound):
			return response.NotFound(c, "user not found")
		default:
			return response.ServerError(c, "failed to request withdrawal")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

// Settle approves or rejects a pending withdrawal.
func (h *TransactionHandler) Settle(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid transaction id")
	}
	var input struct {
		Approve bool `json:"approve"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	txn, err := h.ledger.SettleWithdrawal(c.Context(), uint(id), input.Approve)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransactionNotFound):
			return response.NotFound(c, "transaction not found")
		case errors.Is(err, ledger.ErrAlreadySettled):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, "failed to settle withdrawal")
		}
	}
	return response.Success(c, "withdrawal settled", txn)
}

// CreateProfit books a manual profit credit for a user, outside the
// investment lifecycle. The entry completes immediately and moves the
// balance through the ledger like any other credit.
func (h *TransactionHandler) CreateProfit(c *fiber.Ctx) error {
	var input struct {
		UserID uint  `json:"user_id"`
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	txn := &models.Transaction{
		UserID: input.UserID,
		Type:   models.TxnProfit,
		Amount: input.Amount,
		Status: models.TxnCompleted,
	}
	if err := h.ledger.Apply(c.Context(), txn); err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return response.ValidationError(c, err.Error())
		case errors.Is(err, repositories.ErrUserNotFound):
			return response.NotFound(c, "user not found")
		default:
			return response.ServerError(c, "failed to create profit transaction")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

func (h *TransactionHandler) Totals(c *fiber.Ctx) error {
	totals, err := h.ledger.Totals(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to get totals")
	}
	return c.JSON(totals)
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid transaction id")
	}
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	txn, err := h.ledger.GetTransaction(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return response.NotFound(c, "transaction not found")
		}
		return response.ServerError(c, "failed to get transaction")
	}
	if txn.UserID != claims.UserID && claims.Role != models.RoleAdmin {
		return response.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}
	return c.JSON(txn)
}
