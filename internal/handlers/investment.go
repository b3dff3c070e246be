package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"camillo/internal/models"
	"camillo/internal/repositories"
	"camillo/internal/services/investment"
	"camillo/internal/services/ledger"
	"camillo/internal/services/scheduler"
	"camillo/internal/utils"
	"camillo/internal/utils/response"
)

type InvestmentHandler struct {
	service   investment.Service
	ledger    ledger.Service
	scheduler *scheduler.Scheduler
}

func NewInvestmentHandler(service investment.Service, ledgerSvc ledger.Service, sched *scheduler.Scheduler) *InvestmentHandler {
	return &InvestmentHandler{service: service, ledger: ledgerSvc, scheduler: sched}
}

func (h *InvestmentHandler) Create(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Amount   int64 `json:"amount"`
		TestMode bool  `json:"test_mode"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	inv, err := h.service.Open(c.Context(), claims.UserID, input.Amount, input.TestMode)
	if err != nil {
		switch {
		case errors.Is(err, investment.ErrAmountTooSmall),
			errors.Is(err, investment.ErrInsufficientBalance):
			return response.ValidationError(c, err.Error())
		case errors.Is(err, repositories.ErrUserNotFound):
			return response.NotFound(c, err.Error())
		default:
			return response.ServerError(c, "failed to create investment")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

func (h *InvestmentHandler) ListMine(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	out, err := h.service.ListByUser(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to list investments")
	}
	return c.JSON(out)
}

func (h *InvestmentHandler) ListAll(c *fiber.Ctx) error {
	out, err := h.service.ListAll(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list investments")
	}
	return c.JSON(out)
}

func (h *InvestmentHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid investment id")
	}
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	inv, err := h.service.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrInvestmentNotFound) {
			return response.NotFound(c, "investment not found")
		}
		return response.ServerError(c, "failed to get investment")
	}
	if inv.UserID != claims.UserID && claims.Role != models.RoleAdmin {
		return response.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}
	return c.JSON(inv)
}

// ListByPhone looks up investments by the phone snapshot taken at
// creation, for support requests that only carry a phone number.
func (h *InvestmentHandler) ListByPhone(c *fiber.Ctx) error {
	phone := c.Params("phone")
	if phone == "" {
		return response.BadRequest(c, "phone is required")
	}
	out, err := h.service.ListByPhone(c.Context(), phone)
	if err != nil {
		return response.ServerError(c, "failed to list investments")
	}
	return c.JSON(out)
}

// ListExpired returns active investments past their holding period that
// the sweep has not completed yet.
func (h *InvestmentHandler) ListExpired(c *fiber.Ctx) error {
	out, err := h.service.ListExpired(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list expired investments")
	}
	return c.JSON(out)
}

func (h *InvestmentHandler) ListPendingPayments(c *fiber.Ctx) error {
	out, err := h.service.ListPendingPayments(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list pending payments")
	}
	return c.JSON(out)
}

func (h *InvestmentHandler) ListPendingWithdrawals(c *fiber.Ctx) error {
	out, err := h.service.ListPendingWithdrawals(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list pending withdrawals")
	}
	return c.JSON(out)
}

func (h *InvestmentHandler) ListCompleted(c *fiber.Ctx) error {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "since must be RFC3339")
		}
		since = &t
	}
	out, err := h.service.ListCompletedSince(c.Context(), since)
	if err != nil {
		return response.ServerError(c, "failed to list completed investments")
	}
	return c.JSON(out)
}

func (h *InvestmentHandler) ApprovePayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid investment id")
	}
	inv, err := h.service.ApprovePayment(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvestmentNotFound):
			return response.NotFound(c, "investment not found")
		case errors.Is(err, investment.ErrPaymentNotApprovable):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, "failed to approve payment")
		}
	}
	return response.Success(c, "payment approved", inv)
}

func (h *InvestmentHandler) ApproveWithdrawal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid investment id")
	}
	inv, err := h.service.ApproveWithdrawal(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvestmentNotFound):
			return response.NotFound(c, "investment not found")
		case errors.Is(err, investment.ErrWithdrawalAlreadyPaid),
			errors.Is(err, investment.ErrWithdrawalNotPending):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, "failed to approve withdrawal")
		}
	}
	return response.Success(c, "withdrawal approved", inv)
}

func (h *InvestmentHandler) ForceStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid investment id")
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	inv, err := h.service.ForceStatus(c.Context(), uint(id), input.Status)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvestmentNotFound):
			return response.NotFound(c, "investment not found")
		case errors.Is(err, investment.ErrInvalidStatus):
			return response.ValidationError(c, err.Error())
		case errors.Is(err, investment.ErrInvalidTransition):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, "failed to update status")
		}
	}
	return response.Success(c, "status updated", inv)
}

// CompleteExpired triggers an immediate expiry sweep, the same one the
// background scheduler runs.
func (h *InvestmentHandler) CompleteExpired(c *fiber.Ctx) error {
	completed, err := h.scheduler.RunSweep(c.Context())
	if err != nil {
		return response.ServerError(c, "sweep failed")
	}
	return c.JSON(fiber.Map{"completed": completed})
}

func (h *InvestmentHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to get stats")
	}
	return c.JSON(stats)
}

// VerifyLedger checks the ledger invariant for one user.
func (h *InvestmentHandler) VerifyLedger(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	if err := h.ledger.VerifyUser(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return response.NotFound(c, "user not found")
		case errors.Is(err, ledger.ErrLedgerInconsistency):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"consistent": false,
				"detail":     err.Error(),
			})
		default:
			return response.ServerError(c, "failed to verify ledger")
		}
	}
	return c.JSON(fiber.Map{"consistent": true})
}
