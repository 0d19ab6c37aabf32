package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/escrow-shield/backend/internal/config"
	"github.com/escrow-shield/backend/internal/events"
	"github.com/escrow-shield/backend/internal/models"
	"github.com/escrow-shield/backend/internal/okx"
	"github.com/escrow-shield/backend/internal/reconcile"
	"github.com/escrow-shield/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validation errors, reported to the actor without any state change.
var (
	ErrInvalidAmount = errors.New("amount must be a positive number")
	ErrInvalidWallet = errors.New("wallet address must be between 20 and 50 characters")
	ErrUnauthorized  = errors.New("not allowed")
)

// Actor identifies who triggered a transition. Admin authority is re-checked
// against the configured allowlist at every invocation, never cached.
type Actor struct {
	UserID     uuid.UUID
	TelegramID int64
}

// Outcome classifies a transition attempt. Every (status, event) pair maps to
// exactly one of these; nothing is undefined and nothing panics.
type Outcome string

const (
	// OutcomeApplied means the transition happened.
	OutcomeApplied Outcome = "applied"
	// OutcomeNoOp is a duplicate trigger: the escrow is already at or past the
	// requested status. Absorbs double taps and lost conditional updates.
	OutcomeNoOp Outcome = "noop"
	// OutcomeRejected is a guard violation: wrong actor or wrong status.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means the exchange call failed; for release this is
	// retryable, the escrow stays in confirmed.
	OutcomeFailed Outcome = "failed"
)

type TransitionResult struct {
	Outcome Outcome
	Escrow  *models.Escrow
	Reason  string

	// Deposit is the advisory reconciliation outcome, set by AdminConfirm.
	Deposit reconcile.Outcome

	// TxReference is the exchange's withdrawal reference, set on release.
	TxReference string

	// Retryable marks a failed release safe to re-invoke. ExchangeResponse
	// carries the raw exchange body so the admin can judge what happened.
	Retryable        bool
	ExchangeResponse json.RawMessage
}

// EscrowStore is the state machine's only persistence dependency. Status
// mutations are conditional: the bool reports whether the guarded update won.
type EscrowStore interface {
	Create(ctx context.Context, e *models.Escrow) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error)
	List(ctx context.Context, f repositories.EscrowFilter) ([]models.Escrow, error)
	ClaimProvider(ctx context.Context, id, providerID uuid.UUID) (bool, error)
	SetProviderWallet(ctx context.Context, id, providerID uuid.UUID, wallet string) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID) (bool, error)
	RevertPaid(ctx context.Context, id uuid.UUID) (bool, error)
	MarkReleased(ctx context.Context, id uuid.UUID, txReference string) (bool, error)
	MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error)
}

type UserStore interface {
	SetDefaultWallet(ctx context.Context, id uuid.UUID, wallet string) error
}

type Auditor interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

// Exchange is the custodial balance/withdrawal API surface the service needs.
type Exchange interface {
	GetBalances(ctx context.Context) okx.BalanceResult
	Withdraw(ctx context.Context, ccy string, amount decimal.Decimal, toAddr, chain string) okx.WithdrawResult
}

type EscrowService struct {
	escrows   EscrowStore
	users     UserStore
	audit     Auditor
	exchange  Exchange
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger

	// Per-escrow release latch: two concurrent release calls must not both
	// reach the exchange. This is not the store lock and is never held
	// across other escrows.
	latchMu        sync.Mutex
	releaseLatches map[uuid.UUID]*sync.Mutex
}

func NewEscrowService(
	escrows EscrowStore,
	users UserStore,
	audit Auditor,
	exchange Exchange,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *EscrowService {
	return &EscrowService{
		escrows:        escrows,
		users:          users,
		audit:          audit,
		exchange:       exchange,
		publisher:      publisher,
		cfg:            cfg,
		log:            log,
		releaseLatches: make(map[uuid.UUID]*sync.Mutex),
	}
}

type CreateEscrowInput struct {
	ChatID      int64
	Amount      decimal.Decimal
	Currency    string
	Description *string
}

// Create opens a new escrow for the seeker and captures the exchange balance
// snapshot used later for deposit inference. A failed snapshot is tolerated;
// reconciliation will simply report inconclusive.
func (s *EscrowService) Create(ctx context.Context, actor Actor, in CreateEscrowInput) (*models.Escrow, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	currency := in.Currency
	if currency == "" {
		currency = s.cfg.SettlementCurrency
	}

	var snapshot json.RawMessage
	if res := s.exchange.GetBalances(ctx); res.OK() {
		snapshot = res.Raw
	} else {
		s.log.Warn("deposit snapshot unavailable at escrow creation",
			zap.Int("status", res.StatusCode), zap.Error(res.TransportErr))
	}

	escrow := &models.Escrow{
		ChatID:          in.ChatID,
		SeekerID:        actor.UserID,
		Amount:          in.Amount,
		Currency:        currency,
		Description:     in.Description,
		Status:          models.EscrowStatusCreated,
		DepositSnapshot: snapshot,
	}
	if err := s.escrows.Create(ctx, escrow); err != nil {
		return nil, err
	}

	s.auditTransition(ctx, actor, escrow.ID, "escrow_created", map[string]any{
		"amount": in.Amount.String(), "currency": currency,
	})
	s.publish(ctx, events.EventEscrowCreated, escrow, nil)

	return escrow, nil
}

// ClaimProvider fills the empty provider slot. The seeker cannot claim their
// own escrow; a repeated claim by the same provider is a no-op.
func (s *EscrowService) ClaimProvider(ctx context.Context, actor Actor, id uuid.UUID) (TransitionResult, error) {
	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}

	if actor.UserID == e.SeekerID {
		return rejected(e, "the seeker cannot act as provider"), nil
	}
	if e.ProviderID != nil {
		if *e.ProviderID == actor.UserID {
			return noop(e, "provider already claimed by this user"), nil
		}
		return rejected(e, "provider slot is already claimed"), nil
	}
	if e.Status != models.EscrowStatusCreated {
		return rejected(e, fmt.Sprintf("a provider can only join while the escrow is open, not %s", e.Status)), nil
	}

	ok, err := s.escrows.ClaimProvider(ctx, id, actor.UserID)
	if err != nil {
		return TransitionResult{}, err
	}
	if !ok {
		e, err = s.escrows.GetByID(ctx, id)
		if err != nil {
			return TransitionResult{}, err
		}
		if e.ProviderID != nil && *e.ProviderID == actor.UserID {
			return noop(e, "provider already claimed by this user"), nil
		}
		return rejected(e, "provider slot is already claimed"), nil
	}

	s.auditTransition(ctx, actor, id, "provider_claimed", nil)
	e, err = s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	s.publish(ctx, events.EventProviderClaimed, e, nil)
	return applied(e), nil
}

// SetWallet records the provider's settlement address while the escrow is
// still in created. The address is also cached on the user record for next
// time; that cache is never consulted for settlement.
func (s *EscrowService) SetWallet(ctx context.Context, actor Actor, id uuid.UUID, wallet string) (TransitionResult, error) {
	if len(wallet) < 20 || len(wallet) > 50 {
		return TransitionResult{}, ErrInvalidWallet
	}

	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}

	if e.ProviderID == nil || *e.ProviderID != actor.UserID {
		return rejected(e, "only the claimed provider can set the wallet"), nil
	}
	if e.Status != models.EscrowStatusCreated {
		if e.ProviderWallet != nil && *e.ProviderWallet == wallet {
			return noop(e, "wallet already set"), nil
		}
		return rejected(e, "the wallet can only be set before payment"), nil
	}

	ok, err := s.escrows.SetProviderWallet(ctx, id, actor.UserID, wallet)
	if err != nil {
		return TransitionResult{}, err
	}
	if !ok {
		e, err = s.escrows.GetByID(ctx, id)
		if err != nil {
			return TransitionResult{}, err
		}
		if e.ProviderWallet != nil && *e.ProviderWallet == wallet {
			return noop(e, "wallet already set"), nil
		}
		return rejected(e, "the wallet can only be set before payment"), nil
	}

	if err := s.users.SetDefaultWallet(ctx, actor.UserID, wallet); err != nil {
		s.log.Warn("failed to cache default wallet", zap.Error(err))
	}

	s.auditTransition(ctx, actor, id, "wallet_set", nil)
	e, err = s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	s.publish(ctx, events.EventWalletSet, e, nil)
	return applied(e), nil
}

// MarkPaid is the seeker's claim that the deposit has been sent.
func (s *EscrowService) MarkPaid(ctx context.Context, actor Actor, id uuid.UUID) (TransitionResult, error) {
	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}

	if actor.UserID != e.SeekerID {
		return rejected(e, "only the seeker can mark the escrow as paid"), nil
	}
	if e.Status != models.EscrowStatusCreated {
		return s.rejectForStatus(e, models.EscrowStatusPaid), nil
	}

	ok, err := s.escrows.MarkPaid(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	if !ok {
		return s.rereadAndReject(ctx, id, models.EscrowStatusPaid)
	}

	s.auditTransition(ctx, actor, id, "escrow_status_created_to_paid", nil)
	e, err = s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	s.publish(ctx, events.EventPaymentMarked, e, nil)
	return applied(e), nil
}

// AdminConfirm acknowledges the deposit. The reconciliation outcome is
// advisory: it annotates the confirmation for the admin, it never blocks it.
func (s *EscrowService) AdminConfirm(ctx context.Context, actor Actor, id uuid.UUID) (TransitionResult, error) {
	if !s.cfg.IsAdmin(actor.TelegramID) {
		return TransitionResult{}, ErrUnauthorized
	}

	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	if e.Status != models.EscrowStatusPaid {
		return s.rejectForStatus(e, models.EscrowStatusConfirmed), nil
	}

	var current json.RawMessage
	if res := s.exchange.GetBalances(ctx); res.OK() {
		current = res.Raw
	}
	deposit := reconcile.Check(e.DepositSnapshot, current, e.Amount, e.Currency)

	ok, err := s.escrows.MarkConfirmed(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	if !ok {
		return s.rereadAndReject(ctx, id, models.EscrowStatusConfirmed)
	}

	s.auditTransition(ctx, actor, id, "escrow_status_paid_to_confirmed", map[string]any{
		"deposit_check": string(deposit),
	})
	e, err = s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	s.publish(ctx, events.EventDepositChecked, e, map[string]any{"deposit_check": string(deposit)})

	result := applied(e)
	result.Deposit = deposit
	return result, nil
}

// AdminReject returns a paid escrow to created when the admin cannot verify
// the deposit claim.
func (s *EscrowService) AdminReject(ctx context.Context, actor Actor, id uuid.UUID) (TransitionResult, error) {
	if !s.cfg.IsAdmin(actor.TelegramID) {
		return TransitionResult{}, ErrUnauthorized
	}

	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	if e.Status != models.EscrowStatusPaid {
		if e.Status == models.EscrowStatusCreated {
			return noop(e, "escrow is not marked as paid"), nil
		}
		return rejected(e, fmt.Sprintf("cannot reject payment in status %s", e.Status)), nil
	}

	ok, err := s.escrows.RevertPaid(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	if !ok {
		e, err = s.escrows.GetByID(ctx, id)
		if err != nil {
			return TransitionResult{}, err
		}
		return noop(e, "payment claim already resolved"), nil
	}

	s.auditTransition(ctx, actor, id, "escrow_status_paid_to_created", nil)
	e, err = s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	s.publish(ctx, events.EventPaymentRejected, e, nil)
	return applied(e), nil
}

// ConfirmDelivery records the provider's claim that the work is done. It
// changes no status; the published event is what prompts the admin to release.
func (s *EscrowService) ConfirmDelivery(ctx context.Context, actor Actor, id uuid.UUID) (TransitionResult, error) {
	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}

	if e.ProviderID == nil || *e.ProviderID != actor.UserID {
		return rejected(e, "only the provider can confirm delivery"), nil
	}
	if e.Status != models.EscrowStatusConfirmed {
		if models.IsAtOrPast(e.Status, models.EscrowStatusReleased) {
			return noop(e, fmt.Sprintf("escrow is already %s", e.Status)), nil
		}
		return rejected(e, fmt.Sprintf("delivery can only be confirmed once the deposit is held, not in status %s", e.Status)), nil
	}

	s.auditTransition(ctx, actor, id, "delivery_confirmed", nil)
	s.publish(ctx, events.EventDeliveryConfirmed, e, nil)
	return applied(e), nil
}

// AdminRelease pays the provider out through the exchange. The withdrawal is
// issued first and the guarded status write second, so a failed withdrawal
// leaves the escrow in confirmed and the action safely retryable. The store
// lock is never held across the network call; the per-escrow latch only
// prevents two concurrent releases from both reaching the exchange.
func (s *EscrowService) AdminRelease(ctx context.Context, actor Actor, id uuid.UUID) (TransitionResult, error) {
	if !s.cfg.IsAdmin(actor.TelegramID) {
		return TransitionResult{}, ErrUnauthorized
	}

	latch := s.releaseLatch(id)
	latch.Lock()
	defer latch.Unlock()

	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	if e.Status != models.EscrowStatusConfirmed {
		if models.IsTerminalStatus(e.Status) {
			s.dropReleaseLatch(id)
		}
		res := s.rejectForStatus(e, models.EscrowStatusReleased)
		if e.Status == models.EscrowStatusReleased && e.TxReference != nil {
			res.TxReference = *e.TxReference
		}
		return res, nil
	}
	if e.ProviderWallet == nil || *e.ProviderWallet == "" {
		return rejected(e, "provider wallet is not set"), nil
	}

	wd := s.exchange.Withdraw(ctx, e.Currency, e.Amount, *e.ProviderWallet, s.cfg.SettlementChain)
	if !wd.Succeeded() {
		s.log.Error("withdrawal failed, escrow stays confirmed",
			zap.String("escrow_id", id.String()),
			zap.Int("status", wd.StatusCode),
			zap.String("code", wd.Code),
			zap.ByteString("response", wd.Raw),
			zap.Error(wd.TransportErr))
		s.auditTransition(ctx, actor, id, "escrow_release_failed", map[string]any{
			"detail": wd.FailureDetail(),
		})
		return TransitionResult{
			Outcome:          OutcomeFailed,
			Escrow:           e,
			Reason:           wd.FailureDetail(),
			Retryable:        true,
			ExchangeResponse: wd.Raw,
		}, nil
	}

	ok, err := s.escrows.MarkReleased(ctx, id, wd.WithdrawalID)
	if err != nil {
		return TransitionResult{}, err
	}
	if !ok {
		e, err = s.escrows.GetByID(ctx, id)
		if err != nil {
			return TransitionResult{}, err
		}
		if e.Status == models.EscrowStatusReleased {
			s.dropReleaseLatch(id)
			res := noop(e, "escrow already released")
			if e.TxReference != nil {
				res.TxReference = *e.TxReference
			}
			return res, nil
		}
		// Funds moved but the escrow left confirmed under us. This needs a
		// human; surface it loudly instead of pretending nothing happened.
		s.log.Error("withdrawal succeeded but escrow is no longer confirmed",
			zap.String("escrow_id", id.String()),
			zap.String("status", e.Status),
			zap.String("withdrawal_id", wd.WithdrawalID))
		s.auditTransition(ctx, actor, id, "escrow_release_orphaned", map[string]any{
			"withdrawal_id": wd.WithdrawalID, "status": e.Status,
		})
		return rejected(e, fmt.Sprintf("withdrawal %s issued but escrow is %s, manual review required", wd.WithdrawalID, e.Status)), nil
	}

	s.auditTransition(ctx, actor, id, "escrow_status_confirmed_to_released", map[string]any{
		"withdrawal_id": wd.WithdrawalID,
	})
	e, err = s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	s.publish(ctx, events.EventFundsReleased, e, map[string]any{"tx_reference": wd.WithdrawalID})
	s.dropReleaseLatch(id)

	result := applied(e)
	result.TxReference = wd.WithdrawalID
	return result, nil
}

// Cancel closes a non-terminal escrow. Allowed for the seeker and the admin;
// no exchange interaction ever happens on this path.
func (s *EscrowService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (TransitionResult, error) {
	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}

	if actor.UserID != e.SeekerID && !s.cfg.IsAdmin(actor.TelegramID) {
		return rejected(e, "only the seeker or the admin can cancel"), nil
	}
	if e.Status == models.EscrowStatusCancelled {
		return noop(e, "escrow already cancelled"), nil
	}
	if !models.IsValidTransition(e.Status, models.EscrowStatusCancelled) {
		return rejected(e, "a released escrow cannot be cancelled"), nil
	}

	ok, err := s.escrows.MarkCancelled(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	if !ok {
		e, err = s.escrows.GetByID(ctx, id)
		if err != nil {
			return TransitionResult{}, err
		}
		if e.Status == models.EscrowStatusCancelled {
			return noop(e, "escrow already cancelled"), nil
		}
		return rejected(e, "a released escrow cannot be cancelled"), nil
	}

	s.auditTransition(ctx, actor, id, "escrow_cancelled", nil)
	s.dropReleaseLatch(id)
	e, err = s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	s.publish(ctx, events.EventEscrowCancelled, e, nil)
	return applied(e), nil
}

// BalanceInfo is the admin's balance-inspection read.
type BalanceInfo struct {
	Known  bool
	Amount decimal.Decimal
	Raw    json.RawMessage
}

func (s *EscrowService) AdminBalance(ctx context.Context, actor Actor) (*BalanceInfo, error) {
	if !s.cfg.IsAdmin(actor.TelegramID) {
		return nil, ErrUnauthorized
	}

	res := s.exchange.GetBalances(ctx)
	if !res.OK() {
		if res.TransportErr != nil {
			return nil, fmt.Errorf("balance read failed: %w", res.TransportErr)
		}
		return nil, fmt.Errorf("balance read failed: status %d", res.StatusCode)
	}

	bal := okx.FindAvailable(res.Raw, s.cfg.SettlementCurrency)
	return &BalanceInfo{Known: bal.Known, Amount: bal.Amount, Raw: res.Raw}, nil
}

func (s *EscrowService) GetEscrow(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	return s.escrows.GetByID(ctx, id)
}

func (s *EscrowService) ListEscrows(ctx context.Context, f repositories.EscrowFilter) ([]models.Escrow, error) {
	return s.escrows.List(ctx, f)
}

func (s *EscrowService) GetEscrowEvents(ctx context.Context, id uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	return s.audit.GetByEntity(ctx, "escrow", id, limit, offset)
}

// PaymentInfo tells the seeker where to send the deposit. The address is the
// platform's custodial deposit address, not anything escrow-specific.
type PaymentInfo struct {
	DepositAddress string
	Chain          string
	Amount         decimal.Decimal
	Currency       string
	Status         string
}

func (s *EscrowService) GetPaymentInfo(ctx context.Context, id uuid.UUID) (*PaymentInfo, error) {
	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PaymentInfo{
		DepositAddress: s.cfg.DepositAddress,
		Chain:          s.cfg.SettlementChain,
		Amount:         e.Amount,
		Currency:       e.Currency,
		Status:         e.Status,
	}, nil
}

// --- helpers ---

func applied(e *models.Escrow) TransitionResult {
	return TransitionResult{Outcome: OutcomeApplied, Escrow: e}
}

func noop(e *models.Escrow, reason string) TransitionResult {
	return TransitionResult{Outcome: OutcomeNoOp, Escrow: e, Reason: reason}
}

func rejected(e *models.Escrow, reason string) TransitionResult {
	return TransitionResult{Outcome: OutcomeRejected, Escrow: e, Reason: reason}
}

// rejectForStatus classifies a wrong-status trigger: at or past the target is
// a duplicate (no-op), anything else is a guard violation.
func (s *EscrowService) rejectForStatus(e *models.Escrow, target string) TransitionResult {
	if models.IsAtOrPast(e.Status, target) {
		return noop(e, fmt.Sprintf("escrow is already %s", e.Status))
	}
	return rejected(e, fmt.Sprintf("escrow is %s, not ready for %s", e.Status, target))
}

// rereadAndReject handles a lost conditional update: re-read the row and
// classify what actually happened. The store conflict itself never surfaces.
func (s *EscrowService) rereadAndReject(ctx context.Context, id uuid.UUID, target string) (TransitionResult, error) {
	e, err := s.escrows.GetByID(ctx, id)
	if err != nil {
		return TransitionResult{}, err
	}
	return s.rejectForStatus(e, target), nil
}

func (s *EscrowService) releaseLatch(id uuid.UUID) *sync.Mutex {
	s.latchMu.Lock()
	defer s.latchMu.Unlock()
	m, ok := s.releaseLatches[id]
	if !ok {
		m = &sync.Mutex{}
		s.releaseLatches[id] = m
	}
	return m
}

// dropReleaseLatch forgets the latch once the escrow is terminal. A late
// caller re-creating it is harmless: the exchange call is only reachable
// while the escrow is still confirmed.
func (s *EscrowService) dropReleaseLatch(id uuid.UUID) {
	s.latchMu.Lock()
	delete(s.releaseLatches, id)
	s.latchMu.Unlock()
}

func (s *EscrowService) auditTransition(ctx context.Context, actor Actor, escrowID uuid.UUID, action string, meta map[string]any) {
	actorType := "user"
	if s.cfg.IsAdmin(actor.TelegramID) {
		actorType = "admin"
	}
	actorID := actor.UserID
	if err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   actorType,
		Action:      action,
		EntityType:  "escrow",
		EntityID:    &escrowID,
		Meta:        meta,
	}); err != nil {
		s.log.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *EscrowService) publish(ctx context.Context, eventType string, e *models.Escrow, extra map[string]any) {
	payload := map[string]any{
		"escrow_id": e.ID.String(),
		"chat_id":   e.ChatID,
		"status":    e.Status,
		"amount":    e.Amount.String(),
		"currency":  e.Currency,
	}
	for k, v := range extra {
		payload[k] = v
	}
	if err := s.publisher.Publish(ctx, events.StreamEscrow, events.Event{Type: eventType, Payload: payload}); err != nil {
		s.log.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}
