package handlers

import (
	"errors"

	"github.com/escrow-shield/backend/internal/config"
	"github.com/escrow-shield/backend/internal/http/dto"
	"github.com/escrow-shield/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminHandler struct {
	escrowService *services.EscrowService
	cfg           *config.Config
	log           *zap.Logger
}

func NewAdminHandler(escrowService *services.EscrowService, cfg *config.Config, log *zap.Logger) *AdminHandler {
	return &AdminHandler{escrowService: escrowService, cfg: cfg, log: log}
}

func (h *AdminHandler) adminAction(
	c *fiber.Ctx,
	action func(c *fiber.Ctx, id uuid.UUID) (services.TransitionResult, error),
) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	res, err := action(c, id)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "admin access required"})
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}
	return transitionJSON(c, res)
}

func (h *AdminHandler) ConfirmDeposit(c *fiber.Ctx) error {
	return h.adminAction(c, func(c *fiber.Ctx, id uuid.UUID) (services.TransitionResult, error) {
		return h.escrowService.AdminConfirm(c.Context(), actorFrom(c), id)
	})
}

func (h *AdminHandler) RejectPayment(c *fiber.Ctx) error {
	return h.adminAction(c, func(c *fiber.Ctx, id uuid.UUID) (services.TransitionResult, error) {
		return h.escrowService.AdminReject(c.Context(), actorFrom(c), id)
	})
}

func (h *AdminHandler) ReleaseFunds(c *fiber.Ctx) error {
	return h.adminAction(c, func(c *fiber.Ctx, id uuid.UUID) (services.TransitionResult, error) {
		return h.escrowService.AdminRelease(c.Context(), actorFrom(c), id)
	})
}

func (h *AdminHandler) CancelEscrow(c *fiber.Ctx) error {
	return h.adminAction(c, func(c *fiber.Ctx, id uuid.UUID) (services.TransitionResult, error) {
		return h.escrowService.Cancel(c.Context(), actorFrom(c), id)
	})
}

func (h *AdminHandler) GetBalance(c *fiber.Ctx) error {
	info, err := h.escrowService.AdminBalance(c.Context(), actorFrom(c))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "admin access required"})
		}
		h.log.Error("balance read failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	resp := dto.BalanceResponse{
		Known:    info.Known,
		Currency: h.cfg.SettlementCurrency,
		Raw:      info.Raw,
	}
	if info.Known {
		resp.Amount = info.Amount.String()
	}
	return c.JSON(resp)
}
