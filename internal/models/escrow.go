package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Escrow statuses
const (
	EscrowStatusCreated   = "created"
	EscrowStatusPaid      = "paid"
	EscrowStatusConfirmed = "confirmed"
	EscrowStatusReleased  = "released"
	EscrowStatusCancelled = "cancelled"
)

// Valid state transitions: from -> []to.
// paid -> created is the admin reject path (payment claim withdrawn).
var ValidEscrowTransitions = map[string][]string{
	EscrowStatusCreated:   {EscrowStatusPaid, EscrowStatusCancelled},
	EscrowStatusPaid:      {EscrowStatusConfirmed, EscrowStatusCreated, EscrowStatusCancelled},
	EscrowStatusConfirmed: {EscrowStatusReleased, EscrowStatusCancelled},
	EscrowStatusReleased:  {},
	EscrowStatusCancelled: {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidEscrowTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminalStatus(status string) bool {
	return status == EscrowStatusReleased || status == EscrowStatusCancelled
}

// IsAtOrPast reports whether status lies at or past target on the forward
// path. Used to tell a duplicate trigger (already happened, absorb as no-op)
// apart from a premature one.
func IsAtOrPast(status, target string) bool {
	order := map[string]int{
		EscrowStatusCreated:   0,
		EscrowStatusPaid:      1,
		EscrowStatusConfirmed: 2,
		EscrowStatusReleased:  3,
	}
	s, okS := order[status]
	t, okT := order[target]
	if !okS || !okT {
		return false
	}
	return s >= t
}

type Escrow struct {
	ID              uuid.UUID       `json:"id"`
	ChatID          int64           `json:"chat_id"`
	SeekerID        uuid.UUID       `json:"seeker_id"`
	ProviderID      *uuid.UUID      `json:"provider_id,omitempty"`
	ProviderWallet  *string         `json:"provider_wallet,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     *string         `json:"description,omitempty"`
	Status          string          `json:"status"`
	DepositSnapshot json.RawMessage `json:"-"`
	TxReference     *string         `json:"tx_reference,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	ReleasedAt      *time.Time      `json:"released_at,omitempty"`
}
