package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Steps of the conversational flows driven through the bot.
const (
	StepEscrowAmount      = "escrow_amount"
	StepEscrowDescription = "escrow_description"
	StepWalletAddress     = "wallet_address"
)

// State is one user's in-progress conversation. It lives in redis under a
// TTL so abandoned flows expire on their own.
type State struct {
	Step     string            `json:"step"`
	ChatID   int64             `json:"chat_id"`
	EscrowID string            `json:"escrow_id,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(telegramUserID int64) string {
	return fmt.Sprintf("session:%d", telegramUserID)
}

// Get returns the current state, or nil when no flow is in progress.
func (s *Store) Get(ctx context.Context, telegramUserID int64) (*State, error) {
	data, err := s.client.Get(ctx, key(telegramUserID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) Put(ctx context.Context, telegramUserID int64, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(telegramUserID), data, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, telegramUserID int64) error {
	return s.client.Del(ctx, key(telegramUserID)).Err()
}
