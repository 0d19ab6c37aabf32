package repositories

import (
	"context"
	"time"

	"github.com/escrow-shield/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) UpsertByTelegramID(ctx context.Context, telegramID int64, username *string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (telegram_user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (telegram_user_id) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, users.username),
			last_active_at = now()
		RETURNING id, telegram_user_id, username, lang, default_wallet, created_at, last_active_at
	`, telegramID, username).Scan(
		&u.ID, &u.TelegramUserID, &u.Username, &u.Lang, &u.DefaultWallet, &u.CreatedAt, &u.LastActiveAt,
	)
	return &u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, telegram_user_id, username, lang, default_wallet, created_at, last_active_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.TelegramUserID, &u.Username, &u.Lang, &u.DefaultWallet, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, telegram_user_id, username, lang, default_wallet, created_at, last_active_at
		FROM users WHERE telegram_user_id = $1
	`, telegramID).Scan(&u.ID, &u.TelegramUserID, &u.Username, &u.Lang, &u.DefaultWallet, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) SetLang(ctx context.Context, id uuid.UUID, lang string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET lang = $1 WHERE id = $2`, lang, id)
	return err
}

// SetDefaultWallet caches the user's last used wallet address. This is a
// convenience only; per-escrow settlement always uses the escrow's own wallet.
func (r *UserRepo) SetDefaultWallet(ctx context.Context, id uuid.UUID, wallet string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET default_wallet = $1 WHERE id = $2`, wallet, id)
	return err
}

func (r *UserRepo) UpdateLastActive(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_active_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}
