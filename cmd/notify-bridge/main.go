package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/escrow-shield/backend/internal/config"
	"github.com/escrow-shield/backend/internal/db"
	"github.com/escrow-shield/backend/internal/events"
	"github.com/escrow-shield/backend/internal/i18n"
	"github.com/escrow-shield/backend/internal/reconcile"
	"github.com/escrow-shield/backend/internal/services"
	"go.uber.org/zap"
)

// The notify bridge turns lifecycle events into chat messages. It is the only
// consumer that talks to the bot's notification endpoint; the API process
// never blocks on Telegram delivery.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	subscriber := events.NewRedisSubscriber(rdb, log)
	botClient := services.NewBotClient(cfg.BotInternalURL, log)
	bridge := newBridge(botClient, cfg, log)

	if err := subscriber.Subscribe(ctx, events.StreamEscrow, bridge.handle); err != nil {
		log.Fatal("failed to subscribe", zap.Error(err))
	}

	log.Info("notify bridge started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down...")
	cancel()
}

type bridge struct {
	bot *services.BotClient
	cfg *config.Config
	log *zap.Logger
}

func newBridge(bot *services.BotClient, cfg *config.Config, log *zap.Logger) *bridge {
	return &bridge{bot: bot, cfg: cfg, log: log}
}

func (b *bridge) handle(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	chatID := asInt64(event.Payload["chat_id"])
	text := b.render(event)
	if text == "" {
		return
	}

	if chatID != 0 {
		if err := b.bot.NotifyChat(ctx, chatID, text); err != nil {
			b.log.Warn("chat notification failed",
				zap.String("type", event.Type), zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}

	// Admins get pinged on the events that need a decision from them.
	if event.Type == events.EventPaymentMarked || event.Type == events.EventDeliveryConfirmed {
		for _, adminID := range b.cfg.AdminTelegramIDs {
			if err := b.bot.NotifyUser(ctx, adminID, text); err != nil {
				b.log.Warn("admin notification failed", zap.Int64("admin", adminID), zap.Error(err))
			}
		}
	}
}

// render produces the bilingual message body for an event. Group chats have
// no single language, so both translations are sent together.
func (b *bridge) render(event events.Event) string {
	var key string
	var args []any

	switch event.Type {
	case events.EventEscrowCreated:
		key = i18n.MsgEscrowCreated
		args = []any{asString(event.Payload["amount"]), asString(event.Payload["currency"])}
	case events.EventProviderClaimed:
		key = i18n.MsgProviderClaimed
	case events.EventWalletSet:
		key = i18n.MsgWalletSet
	case events.EventPaymentMarked:
		key = i18n.MsgPaymentMarked
	case events.EventPaymentRejected:
		key = i18n.MsgPaymentRejected
	case events.EventDepositChecked:
		// The status moved either way; the wording reflects whether the
		// balance check actually saw the money.
		key = i18n.MsgDepositInconclusive
		if asString(event.Payload["deposit_check"]) == string(reconcile.DepositConfirmed) {
			key = i18n.MsgDepositConfirmed
		}
	case events.EventDeliveryConfirmed:
		key = i18n.MsgDeliveryConfirmed
	case events.EventFundsReleased:
		key = i18n.MsgFundsReleased
		args = []any{asString(event.Payload["tx_reference"])}
	case events.EventEscrowCancelled:
		key = i18n.MsgEscrowCancelled
	default:
		b.log.Warn("unknown event type", zap.String("type", event.Type))
		return ""
	}

	return strings.Join([]string{
		i18n.T(i18n.LangEN, key, args...),
		i18n.T(i18n.LangZH, key, args...),
	}, "\n\n")
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
