package reconcile

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func snapshot(availBal string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"data":[{"details":[{"ccy":"USDT","availBal":"%s"}]}]}`, availBal))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		prev     json.RawMessage
		curr     json.RawMessage
		amount   string
		expected Outcome
	}{
		{"deposit arrived exactly", snapshot("100"), snapshot("150"), "50", DepositConfirmed},
		{"deposit overshot", snapshot("100"), snapshot("180.5"), "50", DepositConfirmed},
		{"deposit short", snapshot("100"), snapshot("120"), "50", DepositNotDetected},
		{"no change", snapshot("100"), snapshot("100"), "50", DepositNotDetected},
		{"balance went down", snapshot("100"), snapshot("80"), "50", DepositNotDetected},
		{"previous snapshot missing", nil, snapshot("150"), "50", Inconclusive},
		{"previous snapshot unparseable", json.RawMessage(`{"error":"timeout"}`), snapshot("150"), "50", Inconclusive},
		{"current snapshot missing", snapshot("100"), nil, "50", Inconclusive},
		{"both missing", nil, nil, "50", Inconclusive},
		{"fractional amounts", snapshot("10.005"), snapshot("30.505"), "20.5", DepositConfirmed},
		{"fractional short by dust", snapshot("10.005"), snapshot("30.504"), "20.5", DepositNotDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("bad amount in test: %v", err)
			}
			got := Check(tt.prev, tt.curr, amount, "USDT")
			if got != tt.expected {
				t.Errorf("Check() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCheckWrongAssetIsInconclusive(t *testing.T) {
	prev := json.RawMessage(`{"data":[{"details":[{"ccy":"BTC","availBal":"1"}]}]}`)
	got := Check(prev, snapshot("150"), decimal.NewFromInt(50), "USDT")
	if got != Inconclusive {
		t.Errorf("Check() = %s, want %s when the asset is absent from a snapshot", got, Inconclusive)
	}
}
