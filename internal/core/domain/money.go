package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact amount in a currency's minor unit (fen, cents, ...).
// Arithmetic never rounds; any rate conversion happens outside the engine
// and passes already-converted amounts in.
type Money struct {
	Amount       int64  `json:"amount"` // minor units
	CurrencyCode string `json:"currencyCode"`
}

// NewMoney constructs a Money from a minor-unit amount and a 3-letter code.
func NewMoney(amount int64, currencyCode string) (Money, error) {
	if len(currencyCode) != 3 {
		return Money{}, fmt.Errorf("invalid currency code %q", currencyCode)
	}
	return Money{Amount: amount, CurrencyCode: currencyCode}, nil
}

// ZeroMoney returns the zero amount in the given currency.
func ZeroMoney(currencyCode string) Money {
	return Money{Amount: 0, CurrencyCode: currencyCode}
}

// Add returns m + other. Fails on currency mismatch.
func (m Money) Add(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount + other.Amount, CurrencyCode: m.CurrencyCode}, nil
}

// Sub returns m - other. Fails on currency mismatch.
func (m Money) Sub(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount - other.Amount, CurrencyCode: m.CurrencyCode}, nil
}

// Negate returns -m.
func (m Money) Negate() Money {
	return Money{Amount: -m.Amount, CurrencyCode: m.CurrencyCode}
}

// Cmp compares amounts. Fails on currency mismatch.
func (m Money) Cmp(other Money) (int, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return 0, fmt.Errorf("currency mismatch: %s vs %s", m.CurrencyCode, other.CurrencyCode)
	}
	switch {
	case m.Amount < other.Amount:
		return -1, nil
	case m.Amount > other.Amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// Decimal renders the amount in major units for display and reporting.
// The exponent is per-currency minor-unit digits; the engine itself only
// ever computes on the integer minor units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -int32(minorUnitDigits(m.CurrencyCode)))
}

func (m Money) String() string {
	return m.Decimal().StringFixed(int32(minorUnitDigits(m.CurrencyCode))) + " " + m.CurrencyCode
}

// minorUnitDigits returns the ISO 4217 exponent for the few zero- and
// three-digit currencies, defaulting to 2.
func minorUnitDigits(code string) int {
	switch code {
	case "JPY", "KRW", "VND":
		return 0
	case "BHD", "KWD", "OMR":
		return 3
	default:
		return 2
	}
}
