package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/escrow-shield/backend/internal/config"
	"github.com/escrow-shield/backend/internal/db"
	"github.com/escrow-shield/backend/internal/events"
	apphttp "github.com/escrow-shield/backend/internal/http"
	"github.com/escrow-shield/backend/internal/http/handlers"
	"github.com/escrow-shield/backend/internal/okx"
	"github.com/escrow-shield/backend/internal/repositories"
	"github.com/escrow-shield/backend/internal/services"
	"github.com/escrow-shield/backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Exchange client
	exchange := okx.NewClient(
		cfg.OKXAPIBase,
		cfg.OKXAPIKey,
		cfg.OKXAPISecret,
		cfg.OKXPassphrase,
		cfg.BalanceTimeout,
		cfg.WithdrawTimeout,
		log,
	)

	// Services
	sessions := session.NewStore(rdb, cfg.SessionTTL)
	escrowService := services.NewEscrowService(escrowRepo, userRepo, auditRepo, exchange, publisher, cfg, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, cfg, log)
	userHandler := handlers.NewUserHandler(userRepo, log)
	escrowHandler := handlers.NewEscrowHandler(escrowService, log)
	adminHandler := handlers.NewAdminHandler(escrowService, cfg, log)
	botHandler := handlers.NewBotHandler(userRepo, sessions, escrowService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, userHandler, escrowHandler, adminHandler, botHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
