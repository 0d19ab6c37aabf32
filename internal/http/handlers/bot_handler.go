package handlers

import (
	"errors"
	"strings"

	"github.com/escrow-shield/backend/internal/http/dto"
	"github.com/escrow-shield/backend/internal/i18n"
	"github.com/escrow-shield/backend/internal/models"
	"github.com/escrow-shield/backend/internal/repositories"
	"github.com/escrow-shield/backend/internal/services"
	"github.com/escrow-shield/backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BotHandler serves the Telegram bot's internal API. The bot forwards raw
// user messages here and relays the returned text back; all conversation
// state lives in the session store, not in the bot.
type BotHandler struct {
	userRepo      *repositories.UserRepo
	sessions      *session.Store
	escrowService *services.EscrowService
	log           *zap.Logger
}

func NewBotHandler(
	userRepo *repositories.UserRepo,
	sessions *session.Store,
	escrowService *services.EscrowService,
	log *zap.Logger,
) *BotHandler {
	return &BotHandler{userRepo: userRepo, sessions: sessions, escrowService: escrowService, log: log}
}

func (h *BotHandler) resolveUser(c *fiber.Ctx, telegramUserID int64, username *string) (*models.User, error) {
	return h.userRepo.UpsertByTelegramID(c.Context(), telegramUserID, username)
}

// StartEscrowDraft begins the conversational escrow creation flow.
func (h *BotHandler) StartEscrowDraft(c *fiber.Ctx) error {
	var req dto.BotStartEscrowRequest
	if err := c.BodyParser(&req); err != nil || req.TelegramUserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "telegram_user_id is required"})
	}

	user, err := h.resolveUser(c, req.TelegramUserID, req.Username)
	if err != nil {
		h.log.Error("failed to resolve user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	state := &session.State{
		Step:   session.StepEscrowAmount,
		ChatID: req.ChatID,
		Fields: map[string]string{},
	}
	if err := h.sessions.Put(c.Context(), req.TelegramUserID, state); err != nil {
		h.log.Error("failed to store session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.BotReply{Text: i18n.T(user.Lang, i18n.MsgAskAmount, "USDT")})
}

// StartWalletFlow asks the provider for a payout wallet for a given escrow.
func (h *BotHandler) StartWalletFlow(c *fiber.Ctx) error {
	escrowID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid escrow id"})
	}

	var req dto.BotStartWalletRequest
	if err := c.BodyParser(&req); err != nil || req.TelegramUserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "telegram_user_id is required"})
	}

	user, err := h.resolveUser(c, req.TelegramUserID, req.Username)
	if err != nil {
		h.log.Error("failed to resolve user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	state := &session.State{
		Step:     session.StepWalletAddress,
		EscrowID: escrowID.String(),
	}
	if err := h.sessions.Put(c.Context(), req.TelegramUserID, state); err != nil {
		h.log.Error("failed to store session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.BotReply{Text: i18n.T(user.Lang, i18n.MsgAskWallet, "TRC20")})
}

// HandleMessage advances whatever flow the user is in.
func (h *BotHandler) HandleMessage(c *fiber.Ctx) error {
	var req dto.BotMessageRequest
	if err := c.BodyParser(&req); err != nil || req.TelegramUserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "telegram_user_id is required"})
	}

	user, err := h.resolveUser(c, req.TelegramUserID, req.Username)
	if err != nil {
		h.log.Error("failed to resolve user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	state, err := h.sessions.Get(c.Context(), req.TelegramUserID)
	if err != nil {
		h.log.Error("failed to load session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if state == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "no active flow"})
	}

	text := strings.TrimSpace(req.Text)

	switch state.Step {
	case session.StepEscrowAmount:
		amount, err := decimal.NewFromString(text)
		if err != nil || !amount.IsPositive() {
			return c.JSON(dto.BotReply{Text: i18n.T(user.Lang, i18n.MsgInvalidAmount)})
		}
		state.Fields["amount"] = amount.String()
		state.Step = session.StepEscrowDescription
		if err := h.sessions.Put(c.Context(), req.TelegramUserID, state); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
		}
		return c.JSON(dto.BotReply{Text: i18n.T(user.Lang, i18n.MsgAskDescription)})

	case session.StepEscrowDescription:
		var description *string
		if text != "" && text != "-" {
			description = &text
		}
		amount, err := decimal.NewFromString(state.Fields["amount"])
		if err != nil {
			_ = h.sessions.Delete(c.Context(), req.TelegramUserID)
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "no active flow"})
		}

		actor := services.Actor{UserID: user.ID, TelegramID: user.TelegramUserID}
		escrow, err := h.escrowService.Create(c.Context(), actor, services.CreateEscrowInput{
			ChatID:      state.ChatID,
			Amount:      amount,
			Description: description,
		})
		if err != nil {
			h.log.Error("bot escrow create failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
		}
		_ = h.sessions.Delete(c.Context(), req.TelegramUserID)

		info, err := h.escrowService.GetPaymentInfo(c.Context(), escrow.ID)
		if err != nil {
			h.log.Error("payment info lookup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
		}

		text := i18n.T(user.Lang, i18n.MsgEscrowCreated, escrow.Amount.String(), escrow.Currency) +
			"\n\n" +
			i18n.T(user.Lang, i18n.MsgPaymentInfo, info.Amount.String(), info.Currency, info.DepositAddress, info.Chain)
		return c.JSON(dto.BotReply{
			Text:     text,
			Done:     true,
			EscrowID: escrow.ID.String(),
		})

	case session.StepWalletAddress:
		escrowID, err := uuid.Parse(state.EscrowID)
		if err != nil {
			_ = h.sessions.Delete(c.Context(), req.TelegramUserID)
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "no active flow"})
		}

		actor := services.Actor{UserID: user.ID, TelegramID: user.TelegramUserID}
		res, err := h.escrowService.SetWallet(c.Context(), actor, escrowID, text)
		if err != nil {
			if errors.Is(err, services.ErrInvalidWallet) {
				return c.JSON(dto.BotReply{Text: i18n.T(user.Lang, i18n.MsgInvalidWallet)})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
		}
		if res.Outcome == services.OutcomeRejected {
			_ = h.sessions.Delete(c.Context(), req.TelegramUserID)
			return c.JSON(dto.BotReply{Text: res.Reason, Done: true})
		}
		_ = h.sessions.Delete(c.Context(), req.TelegramUserID)
		return c.JSON(dto.BotReply{
			Text:     i18n.T(user.Lang, i18n.MsgWalletSet),
			Done:     true,
			EscrowID: escrowID.String(),
		})
	}

	_ = h.sessions.Delete(c.Context(), req.TelegramUserID)
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "no active flow"})
}

// CancelFlow throws away the user's in-progress conversation.
func (h *BotHandler) CancelFlow(c *fiber.Ctx) error {
	var req dto.BotStartWalletRequest
	if err := c.BodyParser(&req); err != nil || req.TelegramUserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "telegram_user_id is required"})
	}
	if err := h.sessions.Delete(c.Context(), req.TelegramUserID); err != nil {
		h.log.Error("failed to delete session", zap.Error(err))
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
