package events

import "context"

// StreamEscrow carries every lifecycle event the core emits. Formatting and
// localization happen downstream in the notify bridge.
const StreamEscrow = "events:escrow"

// Event types: the closed set of lifecycle notifications, one per transition
// plus the advisory deposit check.
const (
	EventEscrowCreated     = "escrow_created"
	EventProviderClaimed   = "provider_claimed"
	EventWalletSet         = "wallet_set"
	EventPaymentMarked     = "payment_marked"
	EventPaymentRejected   = "payment_rejected"
	EventDepositChecked    = "deposit_checked"
	EventDeliveryConfirmed = "delivery_confirmed"
	EventFundsReleased     = "funds_released"
	EventEscrowCancelled   = "escrow_cancelled"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
