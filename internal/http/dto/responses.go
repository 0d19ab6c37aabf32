package dto

import "encoding/json"

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// TransitionResponse reports the outcome of a lifecycle action. A rejected
// action carries the reason; a failed release additionally carries the raw
// exchange response and whether a retry is safe.
type TransitionResponse struct {
	OK               bool            `json:"ok"`
	Outcome          string          `json:"outcome"`
	Reason           string          `json:"reason,omitempty"`
	Escrow           any             `json:"escrow,omitempty"`
	DepositCheck     string          `json:"deposit_check,omitempty"`
	TxReference      string          `json:"tx_reference,omitempty"`
	Retryable        bool            `json:"retryable,omitempty"`
	ExchangeResponse json.RawMessage `json:"exchange_response,omitempty"`
}

type PaymentInfoResponse struct {
	EscrowID       string `json:"escrow_id"`
	DepositAddress string `json:"deposit_address"`
	Chain          string `json:"chain"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
}

type BalanceResponse struct {
	Known    bool            `json:"known"`
	Amount   string          `json:"amount,omitempty"`
	Currency string          `json:"currency"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// BotReply is what the Telegram bot relays back to the user verbatim.
type BotReply struct {
	Text     string `json:"text"`
	Done     bool   `json:"done"`
	EscrowID string `json:"escrow_id,omitempty"`
}
