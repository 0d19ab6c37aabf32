package okx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestSignDeterministic(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		method    string
		path      string
		body      string
		expected  string
	}{
		{
			name:      "withdrawal body",
			timestamp: "1700000000.123",
			method:    "POST",
			path:      "/api/v5/asset/withdrawal",
			body:      `{"ccy":"USDT","amt":"20","dest":"4","toAddr":"TXYZa1b2c3d4e5f6g7h8i9j0k1l2m3n4o5","chain":"TRC20"}`,
			expected:  "Z1KOXZLf/hcU91O+paTmkYMSaz9iyRO6cXI5vnQqMjk=",
		},
		{
			name:      "empty body balance read",
			timestamp: "1700000000.123",
			method:    "GET",
			path:      "/api/v5/account/balance",
			body:      "",
			expected:  "Frks0BFMOGGL3Z7wv/5WtrT6oxFhuGNAXNOd8NuTmPY=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sign(tt.timestamp, tt.method, tt.path, tt.body, "test-secret")
			if got != tt.expected {
				t.Errorf("Sign() = %q, want %q", got, tt.expected)
			}
			// Same tuple, same signature.
			if again := Sign(tt.timestamp, tt.method, tt.path, tt.body, "test-secret"); again != got {
				t.Errorf("Sign() not deterministic: %q vs %q", again, got)
			}
		})
	}
}

func TestSignUppercasesMethod(t *testing.T) {
	upper := Sign("1", "POST", "/p", "b", "s")
	lower := Sign("1", "post", "/p", "b", "s")
	if upper != lower {
		t.Errorf("lowercase method should sign identically: %q vs %q", lower, upper)
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c := NewClient(url, "test-key", "test-secret", "test-pass", 2*time.Second, 2*time.Second, zap.NewNop())
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return c
}

func TestGetBalancesSignedHeaders(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":"0","data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.GetBalances(context.Background())

	if !res.OK() {
		t.Fatalf("expected OK result, got status=%d err=%v", res.StatusCode, res.TransportErr)
	}
	if gotHeaders.Get("OK-ACCESS-KEY") != "test-key" {
		t.Errorf("OK-ACCESS-KEY = %q", gotHeaders.Get("OK-ACCESS-KEY"))
	}
	if gotHeaders.Get("OK-ACCESS-PASSPHRASE") != "test-pass" {
		t.Errorf("OK-ACCESS-PASSPHRASE = %q", gotHeaders.Get("OK-ACCESS-PASSPHRASE"))
	}
	ts := gotHeaders.Get("OK-ACCESS-TIMESTAMP")
	if ts != "1700000000.123" {
		t.Errorf("OK-ACCESS-TIMESTAMP = %q, want fixed decimal form", ts)
	}
	wantSig := Sign(ts, "GET", "/api/v5/account/balance", "", "test-secret")
	if gotHeaders.Get("OK-ACCESS-SIGN") != wantSig {
		t.Errorf("OK-ACCESS-SIGN = %q, want %q", gotHeaders.Get("OK-ACCESS-SIGN"), wantSig)
	}
}

func TestGetBalancesTransportError(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1") // nothing listens here
	res := c.GetBalances(context.Background())
	if res.TransportErr == nil {
		t.Fatal("expected transport error")
	}
	if res.OK() {
		t.Error("transport error must not be OK")
	}
}

func TestWithdrawSuccess(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":"0","data":[{"wdId":"w1"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	amt, _ := decimal.NewFromString("20.5")
	res := c.Withdraw(context.Background(), "USDT", amt, "TXYZa1b2c3d4e5f6g7h8i9j0k1l2m3n4o5", "TRC20")

	if !res.Succeeded() {
		t.Fatalf("expected success, got %s", res.FailureDetail())
	}
	if res.WithdrawalID != "w1" {
		t.Errorf("WithdrawalID = %q, want w1", res.WithdrawalID)
	}

	var sent map[string]any
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if sent["amt"] != "20.5" {
		t.Errorf("amt sent as %v, want exact decimal string", sent["amt"])
	}
	if sent["dest"] != "4" {
		t.Errorf("dest = %v, want 4", sent["dest"])
	}
}

func TestWithdrawBodyLevelRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 with an exchange-side error code is still a failure.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":"58207","msg":"withdrawal address not allowlisted","data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Withdraw(context.Background(), "USDT", decimal.NewFromInt(20), "TXYZa1b2c3d4e5f6g7h8i9j0k1l2m3n4o5", "TRC20")

	if res.Succeeded() {
		t.Fatal("body-level error code must not be a success")
	}
	if res.TransportErr != nil {
		t.Errorf("rejection is not a transport error: %v", res.TransportErr)
	}
	if res.Code != "58207" {
		t.Errorf("Code = %q, want 58207", res.Code)
	}
}

func TestWithdrawMissingReferenceUsesSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":"0","data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Withdraw(context.Background(), "USDT", decimal.NewFromInt(20), "TXYZa1b2c3d4e5f6g7h8i9j0k1l2m3n4o5", "TRC20")

	if !res.Succeeded() {
		t.Fatalf("expected success, got %s", res.FailureDetail())
	}
	if res.WithdrawalID != ManualReference {
		t.Errorf("WithdrawalID = %q, want sentinel %q", res.WithdrawalID, ManualReference)
	}
}

func TestWithdrawMalformedBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A proxy or gateway answering 200 with HTML instead of the exchange
		// body. No success was observed, so no success may be reported.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Withdraw(context.Background(), "USDT", decimal.NewFromInt(20), "TXYZa1b2c3d4e5f6g7h8i9j0k1l2m3n4o5", "TRC20")

	if res.Succeeded() {
		t.Fatal("unparseable 200 body must not count as success")
	}
	if res.TransportErr == nil {
		t.Fatal("expected a transport error for a malformed body")
	}
	if res.WithdrawalID != "" {
		t.Errorf("WithdrawalID = %q, want empty", res.WithdrawalID)
	}
}

func TestWithdrawMalformedBodyOnHTTPErrorStaysRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res := c.Withdraw(context.Background(), "USDT", decimal.NewFromInt(20), "TXYZa1b2c3d4e5f6g7h8i9j0k1l2m3n4o5", "TRC20")

	if res.Succeeded() {
		t.Fatal("5xx must not count as success")
	}
	if res.TransportErr != nil {
		t.Errorf("status already rejects this response: %v", res.TransportErr)
	}
}

func TestWithdrawTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":"0","data":[{"wdId":"w1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "s", "p", 50*time.Millisecond, 50*time.Millisecond, zap.NewNop())
	res := c.Withdraw(context.Background(), "USDT", decimal.NewFromInt(20), "TXYZa1b2c3d4e5f6g7h8i9j0k1l2m3n4o5", "TRC20")

	if res.TransportErr == nil {
		t.Fatal("expected transport error on timeout")
	}
	if res.Succeeded() {
		t.Error("ambiguous timeout must never count as success")
	}
}
