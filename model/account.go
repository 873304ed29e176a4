package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the current $EXTROPY balance of a single creator. Balances
// are mutated only by the transfer and award engines; every mutation is
// mirrored by a ledger entry committed in the same database transaction.
type Account struct {
	ID        int64                  `json:"-"`
	AccountID string                 `json:"account_id"`
	Balance   decimal.Decimal        `json:"balance"`
	CreatedAt time.Time              `json:"created_at"`
	MetaData  map[string]interface{} `json:"meta_data,omitempty"`
}

// AccountStats aggregates an account's ledger activity. All figures are
// computed from the ledger at query time.
type AccountStats struct {
	AccountID         string           `json:"account_id"`
	Balance           decimal.Decimal  `json:"balance"`
	TotalEarned       decimal.Decimal  `json:"total_earned"`
	TotalSpent        decimal.Decimal  `json:"total_spent"`
	NetChange         decimal.Decimal  `json:"net_change"`
	TransactionCounts map[string]int64 `json:"transaction_counts"`
}
