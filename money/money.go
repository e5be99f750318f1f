package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a type that represents a monetary amount in satoshis for Bitcoin.
type Money uint64

var (
	// ErrNegativeAmount is returned when trying to create a Money with a negative amount.
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrSubSatoshi     = errors.New("amount is more precise than one satoshi")
)

func NewFromBtc(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}

	return Money(amount.Mul(decimal.NewFromInt(1e8)).IntPart()), nil // nolint:gosec
}

// ParseBtc reads a decimal BTC amount such as "0.00021". Amounts that do not
// land on a whole satoshi are rejected rather than rounded.
func ParseBtc(amount string) (Money, error) {
	btc, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid btc amount %q: %w", amount, err)
	}
	if !btc.Shift(8).IsInteger() {
		return 0, ErrSubSatoshi
	}

	return NewFromBtc(btc)
}

// NewFromSats converts a signed satoshi amount as reported by the node.
func NewFromSats(sats int64) (Money, error) {
	if sats < 0 {
		return 0, ErrNegativeAmount
	}

	return Money(sats), nil
}

// NewFromMsat truncates a millisatoshi amount to whole satoshis.
func NewFromMsat(msat int64) (Money, error) {
	if msat < 0 {
		return 0, ErrNegativeAmount
	}

	return Money(msat / 1000), nil
}

func (m Money) ToBtc() decimal.Decimal {
	return decimal.NewFromUint64(uint64(m)).Div(decimal.NewFromInt(1e8))
}

// Sats returns the amount as the signed integer the node RPCs expect.
func (m Money) Sats() int64 {
	return int64(m) // nolint:gosec
}

func (m Money) String() string {
	return fmt.Sprintf("%d sats", uint64(m))
}
