package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	TelegramUserID int64     `json:"telegram_user_id"`
	Username       *string   `json:"username,omitempty"`
	Lang           string    `json:"lang"`
	// DefaultWallet is a convenience cache of the last wallet the user set on
	// an escrow. It is never authoritative for any particular escrow.
	DefaultWallet *string   `json:"default_wallet,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastActiveAt  time.Time `json:"last_active_at"`
}
