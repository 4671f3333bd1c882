package ledger

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RawAmount carries an amount exactly as the client sent it, either a JSON
// number or a JSON string. It is validated by ParseAmount.
type RawAmount string

// UnmarshalJSON accepts 1000, 1000.50, "1000" and "1000.50".
func (r *RawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawAmount(s)
		return nil
	}
	*r = RawAmount(data)
	return nil
}

const (
	// AmountScale is the number of decimal places an amount is stored with
	AmountScale = 2
	// amountIntegerDigits is the integer part a DECIMAL(18,2) column holds
	amountIntegerDigits = 16
)

// maxAmount is the exclusive bound on an amount's absolute value
var maxAmount = decimal.New(1, amountIntegerDigits)

// ParseAmount coerces raw input to a decimal that fits a DECIMAL(18,2)
// column. Empty or non-numeric input, more than two decimal places and
// values of 10^16 or more are validation errors. Amounts are never rounded.
func ParseAmount(raw RawAmount) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, shared.NewValidationError("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, shared.NewValidationError("amount must be numeric")
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}

	// Bound the exponent before Round or Cmp rescale the coefficient.
	exp := d.Exponent()
	if exp > amountIntegerDigits {
		return decimal.Zero, amountOutOfRange()
	}
	if exp < -(AmountScale + amountIntegerDigits) {
		return decimal.Zero, amountTooPrecise()
	}
	if !d.Equal(d.Round(AmountScale)) {
		return decimal.Zero, amountTooPrecise()
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, amountOutOfRange()
	}
	return d, nil
}

func amountTooPrecise() error {
	return shared.NewValidationError("amount must have at most 2 decimal places")
}

func amountOutOfRange() error {
	return shared.NewValidationError("amount must be less than 10^16 in absolute value")
}
