package okx

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Balance is a tagged extraction result: either a known available balance or
// Unknown when no parseable value was found. Unknown is a defined outcome,
// not an error.
type Balance struct {
	Known  bool
	Amount decimal.Decimal
}

func KnownBalance(d decimal.Decimal) Balance {
	return Balance{Known: true, Amount: d}
}

var Unknown = Balance{}

// Account modes expose the available balance under different field names, and
// some omit the per-asset details list entirely. Each strategy inspects one
// account entry; the first parseable value across the ordered list wins.
type extractStrategy func(entry map[string]any, ccy string) (decimal.Decimal, bool)

var extractStrategies = []extractStrategy{
	detailAvailable,
	entryAliases,
	anyAssetField,
}

// FindAvailable walks the balance payload's data[] entries and returns the
// available balance for the given asset, or Unknown if the payload has no
// recognizable value anywhere.
func FindAvailable(raw json.RawMessage, ccy string) Balance {
	if len(raw) == 0 {
		return Unknown
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return Unknown
	}

	data, _ := payload["data"].([]any)
	ccy = strings.ToUpper(ccy)

	for _, s := range extractStrategies {
		for _, item := range data {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if v, ok := s(entry, ccy); ok {
				return KnownBalance(v)
			}
		}
	}
	return Unknown
}

// detailAvailable reads the per-asset detail records nested under an entry.
func detailAvailable(entry map[string]any, ccy string) (decimal.Decimal, bool) {
	details, _ := entry["details"].([]any)
	for _, item := range details {
		d, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if !strings.EqualFold(stringField(d, "ccy"), ccy) {
			continue
		}
		for _, key := range []string{"availBal", "cashBal"} {
			if v, ok := parseDecimal(d[key]); ok {
				return v, true
			}
		}
	}
	return decimal.Decimal{}, false
}

// entryAliases reads entry-level balance fields used by single-asset account
// modes. The entry either names the asset itself or carries no ccy at all.
func entryAliases(entry map[string]any, ccy string) (decimal.Decimal, bool) {
	if c := stringField(entry, "ccy"); c != "" && !strings.EqualFold(c, ccy) {
		return decimal.Decimal{}, false
	}
	for _, key := range []string{"availBal", "cashBal", "availEq", "totalEq"} {
		if v, ok := parseDecimal(entry[key]); ok {
			return v, true
		}
	}
	return decimal.Decimal{}, false
}

// anyAssetField is the last resort: any string field whose key mentions the
// asset symbol and parses as a decimal.
func anyAssetField(entry map[string]any, ccy string) (decimal.Decimal, bool) {
	for key, val := range entry {
		if !strings.Contains(strings.ToUpper(key), ccy) {
			continue
		}
		if s, ok := val.(string); ok {
			if v, ok := parseDecimal(s); ok {
				return v, true
			}
		}
	}
	return decimal.Decimal{}, false
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case json.Number:
		s = val.String()
	default:
		return decimal.Decimal{}, false
	}
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
