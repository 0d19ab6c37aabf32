package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/escrow-shield/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EscrowRepo persists escrows. Every status mutation is a conditional update
// on the current status; the caller learns from the returned bool whether it
// won the race. No other write path touches the status column.
type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

const escrowColumns = `id, chat_id, seeker_id, provider_id, provider_wallet, amount, currency,
	       description, status, deposit_snapshot, tx_reference,
	       created_at, paid_at, confirmed_at, released_at`

func (r *EscrowRepo) Create(ctx context.Context, e *models.Escrow) error {
	var snapshot any
	if len(e.DepositSnapshot) > 0 {
		snapshot = []byte(e.DepositSnapshot)
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO escrows (chat_id, seeker_id, amount, currency, description, status, deposit_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, e.ChatID, e.SeekerID, e.Amount, e.Currency, e.Description, e.Status, snapshot,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *EscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	var e models.Escrow
	var snapshot []byte
	err := r.pool.QueryRow(ctx, `
		SELECT `+escrowColumns+`
		FROM escrows WHERE id = $1
	`, id).Scan(&e.ID, &e.ChatID, &e.SeekerID, &e.ProviderID, &e.ProviderWallet, &e.Amount, &e.Currency,
		&e.Description, &e.Status, &snapshot, &e.TxReference,
		&e.CreatedAt, &e.PaidAt, &e.ConfirmedAt, &e.ReleasedAt)
	if err != nil {
		return nil, err
	}
	e.DepositSnapshot = json.RawMessage(snapshot)
	return &e, nil
}

type EscrowFilter struct {
	ChatID        *int64
	ParticipantID *uuid.UUID
	Status        *string
	Limit         int
	Offset        int
}

func (r *EscrowRepo) List(ctx context.Context, f EscrowFilter) ([]models.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ChatID != nil {
		where = append(where, fmt.Sprintf("chat_id = $%d", argIdx))
		args = append(args, *f.ChatID)
		argIdx++
	}
	if f.ParticipantID != nil {
		where = append(where, fmt.Sprintf("(seeker_id = $%d OR provider_id = $%d)", argIdx, argIdx))
		args = append(args, *f.ParticipantID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var escrows []models.Escrow
	for rows.Next() {
		var e models.Escrow
		var snapshot []byte
		if err := rows.Scan(&e.ID, &e.ChatID, &e.SeekerID, &e.ProviderID, &e.ProviderWallet, &e.Amount, &e.Currency,
			&e.Description, &e.Status, &snapshot, &e.TxReference,
			&e.CreatedAt, &e.PaidAt, &e.ConfirmedAt, &e.ReleasedAt); err != nil {
			return nil, err
		}
		e.DepositSnapshot = json.RawMessage(snapshot)
		escrows = append(escrows, e)
	}
	return escrows, nil
}

// ClaimProvider fills the provider slot, but only while the escrow is still
// in created and the slot is empty.
func (r *EscrowRepo) ClaimProvider(ctx context.Context, id, providerID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET provider_id = $1
		WHERE id = $2 AND status = 'created' AND provider_id IS NULL
	`, providerID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetProviderWallet records the settlement address for the claimed provider.
func (r *EscrowRepo) SetProviderWallet(ctx context.Context, id, providerID uuid.UUID, wallet string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET provider_wallet = $1
		WHERE id = $2 AND status = 'created' AND provider_id = $3
	`, wallet, id, providerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EscrowRepo) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = 'paid', paid_at = now()
		WHERE id = $1 AND status = 'created'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EscrowRepo) MarkConfirmed(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = 'confirmed', confirmed_at = now()
		WHERE id = $1 AND status = 'paid'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RevertPaid returns a rejected payment claim to created.
func (r *EscrowRepo) RevertPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = 'created', paid_at = NULL
		WHERE id = $1 AND status = 'paid'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkReleased finalizes the escrow with the exchange's withdrawal reference.
// The tx_reference is written in the same guarded statement so it can only
// ever appear on a released row.
func (r *EscrowRepo) MarkReleased(ctx context.Context, id uuid.UUID, txReference string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = 'released', tx_reference = $1, released_at = now()
		WHERE id = $2 AND status = 'confirmed'
	`, txReference, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EscrowRepo) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows SET status = 'cancelled'
		WHERE id = $1 AND status NOT IN ('released', 'cancelled')
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
