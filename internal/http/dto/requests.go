package dto

type AuthTelegramRequest struct {
	InitData string `json:"init_data"`
}

type CreateEscrowRequest struct {
	ChatID      int64   `json:"chat_id"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	Description *string `json:"description,omitempty"`
}

type SetWalletRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type SetLangRequest struct {
	Lang string `json:"lang"`
}

// Internal bot API

type BotStartEscrowRequest struct {
	TelegramUserID int64   `json:"telegram_user_id"`
	Username       *string `json:"username,omitempty"`
	ChatID         int64   `json:"chat_id"`
}

type BotStartWalletRequest struct {
	TelegramUserID int64   `json:"telegram_user_id"`
	Username       *string `json:"username,omitempty"`
}

type BotMessageRequest struct {
	TelegramUserID int64   `json:"telegram_user_id"`
	Username       *string `json:"username,omitempty"`
	ChatID         int64   `json:"chat_id"`
	Text           string  `json:"text"`
}
