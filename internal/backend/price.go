package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a currency-agnostic decimal amount. It travels as a bare JSON number.
type Price struct {
	decimal.Decimal
}

// NewPrice wraps a decimal value.
func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// ParsePrice reads user input such as "149.90" or "149,90".
func ParsePrice(raw string) (Price, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Price{}, fmt.Errorf("backend: empty price")
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("backend: parse price %q: %w", raw, err)
	}
	return Price{Decimal: d}, nil
}

// Positive reports whether the amount is strictly greater than zero.
func (p Price) Positive() bool {
	return p.Decimal.IsPositive()
}

// MarshalJSON encodes the amount without quotes.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		p.Decimal = decimal.Zero
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		trimmed = []byte(s)
	}
	d, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return fmt.Errorf("backend: decode price: %w", err)
	}
	p.Decimal = d
	return nil
}

// String renders the amount the way the backend stores it, without trailing zeros.
func (p Price) String() string {
	return p.Decimal.String()
}
