package okx

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	balancePath  = "/api/v5/account/balance"
	withdrawPath = "/api/v5/asset/withdrawal"

	// Destination code for withdrawals to an external address.
	destExternal = "4"

	// ManualReference is recorded when the exchange accepts a withdrawal but
	// omits its own reference id from the success body.
	ManualReference = "manual"
)

// Client issues signed requests against the OKX v5 REST API. Methods never
// panic and never return a bare error for exchange-side conditions: every call
// yields a result value the caller can branch on.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	passphrase string

	balanceTimeout  time.Duration
	withdrawTimeout time.Duration

	httpClient *http.Client
	log        *zap.Logger
	now        func() time.Time
}

func NewClient(baseURL, apiKey, apiSecret, passphrase string, balanceTimeout, withdrawTimeout time.Duration, log *zap.Logger) *Client {
	if balanceTimeout <= 0 {
		balanceTimeout = 15 * time.Second
	}
	if withdrawTimeout <= 0 {
		withdrawTimeout = 25 * time.Second
	}
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		apiSecret:       apiSecret,
		passphrase:      passphrase,
		balanceTimeout:  balanceTimeout,
		withdrawTimeout: withdrawTimeout,
		httpClient:      &http.Client{},
		log:             log,
		now:             time.Now,
	}
}

// Sign computes the OK-ACCESS-SIGN value: base64(HMAC-SHA256(secret,
// timestamp + METHOD + path + body)). The timestamp string must be byte-for-
// byte the one sent in the OK-ACCESS-TIMESTAMP header.
func Sign(timestamp, method, requestPath, body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + strings.ToUpper(method) + requestPath + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// timestamp renders wall-clock time as unix seconds with millisecond
// precision, the fixed decimal form used in both the header and the signature.
func (c *Client) timestamp() string {
	return strconv.FormatFloat(float64(c.now().UnixMilli())/1000, 'f', 3, 64)
}

func (c *Client) signedRequest(ctx context.Context, method, path, body string) (*http.Request, error) {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}

	ts := c.timestamp()
	req.Header.Set("OK-ACCESS-KEY", c.apiKey)
	req.Header.Set("OK-ACCESS-SIGN", Sign(ts, method, path, body, c.apiSecret))
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.passphrase)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// BalanceResult is the outcome of a balance read. TransportErr is set when no
// HTTP response was observed (network failure, timeout, unreadable body).
type BalanceResult struct {
	StatusCode   int
	Raw          json.RawMessage
	TransportErr error
}

func (r BalanceResult) OK() bool {
	return r.TransportErr == nil && r.StatusCode == http.StatusOK
}

func (c *Client) GetBalances(ctx context.Context) BalanceResult {
	ctx, cancel := context.WithTimeout(ctx, c.balanceTimeout)
	defer cancel()

	req, err := c.signedRequest(ctx, http.MethodGet, balancePath, "")
	if err != nil {
		return BalanceResult{TransportErr: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("okx balance request failed", zap.Error(err))
		return BalanceResult{TransportErr: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return BalanceResult{StatusCode: resp.StatusCode, TransportErr: err}
	}
	return BalanceResult{StatusCode: resp.StatusCode, Raw: raw}
}

// withdrawRequest field order is fixed so the signed body bytes are stable.
type withdrawRequest struct {
	Ccy    string `json:"ccy"`
	Amt    string `json:"amt"`
	Dest   string `json:"dest"`
	ToAddr string `json:"toAddr"`
	Chain  string `json:"chain"`
}

// WithdrawResult is the outcome of a withdrawal request. Succeeded() is the
// only condition under which funds may be assumed to have moved: a 200 with a
// body-level error code is a rejection, and a transport error is ambiguous,
// so the client never retries it on its own.
type WithdrawResult struct {
	StatusCode   int
	Raw          json.RawMessage
	Code         string
	WithdrawalID string
	TransportErr error
}

func (r WithdrawResult) Succeeded() bool {
	if r.TransportErr != nil {
		return false
	}
	if r.StatusCode < 200 || r.StatusCode > 299 {
		return false
	}
	return r.Code == "" || r.Code == "0"
}

func (r WithdrawResult) FailureDetail() string {
	if r.TransportErr != nil {
		return r.TransportErr.Error()
	}
	return fmt.Sprintf("status %d: %s", r.StatusCode, string(r.Raw))
}

func (c *Client) Withdraw(ctx context.Context, ccy string, amount decimal.Decimal, toAddr, chain string) WithdrawResult {
	ctx, cancel := context.WithTimeout(ctx, c.withdrawTimeout)
	defer cancel()

	// Amount travels as its exact decimal string, never a binary float.
	body, err := json.Marshal(withdrawRequest{
		Ccy:    ccy,
		Amt:    amount.String(),
		Dest:   destExternal,
		ToAddr: toAddr,
		Chain:  chain,
	})
	if err != nil {
		return WithdrawResult{TransportErr: err}
	}

	req, err := c.signedRequest(ctx, http.MethodPost, withdrawPath, string(body))
	if err != nil {
		return WithdrawResult{TransportErr: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("okx withdraw request failed", zap.Error(err))
		return WithdrawResult{TransportErr: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return WithdrawResult{StatusCode: resp.StatusCode, TransportErr: err}
	}

	result := WithdrawResult{StatusCode: resp.StatusCode, Raw: raw}

	var parsed struct {
		Code string `json:"code"`
		Data []struct {
			WdID string `json:"wdId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// A 2xx whose body cannot be parsed is not a positively observed
		// success. Funds may or may not have moved, so it is reported the
		// same way as a network failure and left to the caller to retry.
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			result.TransportErr = fmt.Errorf("malformed withdrawal response body: %w", err)
		}
		return result
	}
	result.Code = parsed.Code
	if len(parsed.Data) > 0 && parsed.Data[0].WdID != "" {
		result.WithdrawalID = parsed.Data[0].WdID
	}
	if result.Succeeded() && result.WithdrawalID == "" {
		result.WithdrawalID = ManualReference
	}
	return result
}
