package handlers

import (
	"github.com/escrow-shield/backend/internal/http/dto"
	"github.com/escrow-shield/backend/internal/i18n"
	"github.com/escrow-shield/backend/internal/middleware"
	"github.com/escrow-shield/backend/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userRepo *repositories.UserRepo
	log      *zap.Logger
}

func NewUserHandler(userRepo *repositories.UserRepo, log *zap.Logger) *UserHandler {
	return &UserHandler{userRepo: userRepo, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *UserHandler) SetLang(c *fiber.Ctx) error {
	var req dto.SetLangRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.Lang != i18n.LangEN && req.Lang != i18n.LangZH {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unsupported language"})
	}

	userID := middleware.GetUserID(c)
	if err := h.userRepo.SetLang(c.Context(), userID, req.Lang); err != nil {
		h.log.Error("failed to set lang", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *UserHandler) Ping(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if err := h.userRepo.UpdateLastActive(c.Context(), userID); err != nil {
		h.log.Error("failed to update last_active", zap.Error(err))
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
