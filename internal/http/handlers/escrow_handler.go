package handlers

import (
	"errors"
	"strconv"

	"github.com/escrow-shield/backend/internal/http/dto"
	"github.com/escrow-shield/backend/internal/middleware"
	"github.com/escrow-shield/backend/internal/repositories"
	"github.com/escrow-shield/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EscrowHandler struct {
	escrowService *services.EscrowService
	log           *zap.Logger
}

func NewEscrowHandler(escrowService *services.EscrowService, log *zap.Logger) *EscrowHandler {
	return &EscrowHandler{escrowService: escrowService, log: log}
}

func actorFrom(c *fiber.Ctx) services.Actor {
	return services.Actor{
		UserID:     middleware.GetUserID(c),
		TelegramID: middleware.GetTelegramUserID(c),
	}
}

// transitionJSON maps a transition result to an HTTP response. Applied and
// duplicate triggers are 200, guard violations 409, exchange failures 502.
func transitionJSON(c *fiber.Ctx, res services.TransitionResult) error {
	body := dto.TransitionResponse{
		OK:               res.Outcome == services.OutcomeApplied || res.Outcome == services.OutcomeNoOp,
		Outcome:          string(res.Outcome),
		Reason:           res.Reason,
		Escrow:           res.Escrow,
		DepositCheck:     string(res.Deposit),
		TxReference:      res.TxReference,
		Retryable:        res.Retryable,
		ExchangeResponse: res.ExchangeResponse,
	}
	switch res.Outcome {
	case services.OutcomeRejected:
		return c.Status(fiber.StatusConflict).JSON(body)
	case services.OutcomeFailed:
		return c.Status(fiber.StatusBadGateway).JSON(body)
	default:
		return c.JSON(body)
	}
}

func (h *EscrowHandler) CreateEscrow(c *fiber.Ctx) error {
	var req dto.CreateEscrowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid amount"})
	}

	escrow, err := h.escrowService.Create(c.Context(), actorFrom(c), services.CreateEscrowInput{
		ChatID:      req.ChatID,
		Amount:      amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.log.Error("create escrow failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: escrow})
}

func (h *EscrowHandler) GetEscrow(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	escrow, err := h.escrowService.GetEscrow(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: escrow})
}

func (h *EscrowHandler) ListEscrows(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	filter := repositories.EscrowFilter{
		ParticipantID: &userID,
		Limit:         20,
		Offset:        0,
	}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("chat_id"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ChatID = &n
		}
	}

	escrows, err := h.escrowService.ListEscrows(c.Context(), filter)
	if err != nil {
		h.log.Error("list escrows failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: escrows})
}

func (h *EscrowHandler) ClaimProvider(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	res, err := h.escrowService.ClaimProvider(c.Context(), actorFrom(c), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}
	return transitionJSON(c, res)
}

func (h *EscrowHandler) SetWallet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	var req dto.SetWalletRequest
	if err := c.BodyParser(&req); err != nil || req.WalletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "wallet_address is required"})
	}

	res, err := h.escrowService.SetWallet(c.Context(), actorFrom(c), id, req.WalletAddress)
	if err != nil {
		if errors.Is(err, services.ErrInvalidWallet) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}
	return transitionJSON(c, res)
}

func (h *EscrowHandler) MarkPaid(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	res, err := h.escrowService.MarkPaid(c.Context(), actorFrom(c), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}
	return transitionJSON(c, res)
}

func (h *EscrowHandler) ConfirmDelivery(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	res, err := h.escrowService.ConfirmDelivery(c.Context(), actorFrom(c), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}
	return transitionJSON(c, res)
}

func (h *EscrowHandler) CancelEscrow(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	res, err := h.escrowService.Cancel(c.Context(), actorFrom(c), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}
	return transitionJSON(c, res)
}

func (h *EscrowHandler) GetEvents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	entries, err := h.escrowService.GetEscrowEvents(c.Context(), id, limit, offset)
	if err != nil {
		h.log.Error("get escrow events failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *EscrowHandler) GetPaymentInfo(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	info, err := h.escrowService.GetPaymentInfo(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "escrow not found"})
	}

	return c.JSON(dto.PaymentInfoResponse{
		EscrowID:       id.String(),
		DepositAddress: info.DepositAddress,
		Chain:          info.Chain,
		Amount:         info.Amount.String(),
		Currency:       info.Currency,
		Status:         info.Status,
	})
}
