package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of fractional digits carried by every
// $EXTROPY amount and balance. Amounts that need more digits are rejected
// rather than rounded.
const AmountPrecision = 8

// GenerateUUIDWithSuffix generates a UUID prefixed with a module name.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// ValidAmount reports whether amount is strictly positive and representable
// with at most AmountPrecision fractional digits.
func ValidAmount(amount decimal.Decimal) bool {
	if amount.Sign() <= 0 {
		return false
	}
	return amount.Equal(amount.Round(AmountPrecision))
}

// FormatAmount renders an amount with the ledger's fixed precision,
// e.g. 0.1 -> "0.10000000".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountPrecision)
}
