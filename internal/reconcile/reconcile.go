// Package reconcile infers whether an escrow's deposit reached the custodial
// exchange account by comparing the balance snapshot taken at escrow creation
// with one taken at confirmation time.
//
// The lower-bound comparison cannot tell the expected deposit apart from any
// other inbound transfer to the shared account in the same window. The result
// is therefore advisory: it annotates the admin's confirmation, it never
// gates it.
package reconcile

import (
	"encoding/json"

	"github.com/escrow-shield/backend/internal/okx"
	"github.com/shopspring/decimal"
)

type Outcome string

const (
	DepositConfirmed   Outcome = "deposit_confirmed"
	DepositNotDetected Outcome = "deposit_not_detected"
	Inconclusive       Outcome = "inconclusive"
)

// Check extracts the settlement-asset balance from both snapshots and applies
// the lower-bound test: confirmed iff current >= previous + amount. If either
// snapshot yields no parseable balance the answer is Inconclusive and the
// admin's manual judgment stands.
func Check(prev, curr json.RawMessage, amount decimal.Decimal, ccy string) Outcome {
	prevBal := okx.FindAvailable(prev, ccy)
	currBal := okx.FindAvailable(curr, ccy)

	if !prevBal.Known || !currBal.Known {
		return Inconclusive
	}

	if currBal.Amount.GreaterThanOrEqual(prevBal.Amount.Add(amount)) {
		return DepositConfirmed
	}
	return DepositNotDetected
}
