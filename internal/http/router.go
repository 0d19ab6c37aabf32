package http

import (
	"time"

	"github.com/escrow-shield/backend/internal/config"
	"github.com/escrow-shield/backend/internal/http/handlers"
	"github.com/escrow-shield/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	escrowHandler *handlers.EscrowHandler,
	adminHandler *handlers.AdminHandler,
	botHandler *handlers.BotHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/telegram", authHandler.TelegramAuth)

	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Put("/me/lang", userHandler.SetLang)
	protected.Post("/me/ping", userHandler.Ping)

	// Escrows
	protected.Post("/escrows", escrowHandler.CreateEscrow)
	protected.Get("/escrows", escrowHandler.ListEscrows)
	protected.Get("/escrows/:id", escrowHandler.GetEscrow)
	protected.Get("/escrows/:id/events", escrowHandler.GetEvents)
	protected.Get("/escrows/:id/payment", escrowHandler.GetPaymentInfo)
	protected.Post("/escrows/:id/claim", escrowHandler.ClaimProvider)
	protected.Post("/escrows/:id/wallet", escrowHandler.SetWallet)
	protected.Post("/escrows/:id/paid", escrowHandler.MarkPaid)
	protected.Post("/escrows/:id/delivered", escrowHandler.ConfirmDelivery)
	protected.Post("/escrows/:id/cancel", escrowHandler.CancelEscrow)

	// Admin actions (allowlist re-checked inside the service as well)
	admin := protected.Group("/admin", middleware.AdminMiddleware(cfg))
	admin.Post("/escrows/:id/confirm", adminHandler.ConfirmDeposit)
	admin.Post("/escrows/:id/reject", adminHandler.RejectPayment)
	admin.Post("/escrows/:id/release", adminHandler.ReleaseFunds)
	admin.Post("/escrows/:id/cancel", adminHandler.CancelEscrow)
	admin.Get("/balance", adminHandler.GetBalance)

	// Internal bot API (reachable only on the internal network)
	internal := app.Group("/internal/bot")
	internal.Post("/escrows/start", botHandler.StartEscrowDraft)
	internal.Post("/escrows/:id/wallet", botHandler.StartWalletFlow)
	internal.Post("/message", botHandler.HandleMessage)
	internal.Post("/cancel", botHandler.CancelFlow)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
