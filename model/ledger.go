package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// KindEarn marks a system-originated credit with no debited counterparty,
	// e.g. a publishing reward.
	KindEarn = "earn"
	// KindTransfer marks a plain user-to-user token movement.
	KindTransfer = "transfer"
	// KindAttribution marks a transfer triggered by a citation, remix or
	// reply between two pieces of content.
	KindAttribution = "attribution"
)

// LedgerEntry is one immutable record of a single balance-affecting event.
// Entries are created exclusively as a side effect of a successful transfer
// or award commit and are never updated or deleted.
type LedgerEntry struct {
	ID                      int64                  `json:"-"`
	EntryID                 string                 `json:"entry_id"`
	Source                  *string                `json:"source,omitempty"`
	Destination             string                 `json:"destination"`
	Amount                  decimal.Decimal        `json:"amount"`
	Kind                    string                 `json:"kind"`
	AttributionRef          *string                `json:"attribution_ref,omitempty"`
	Reason                  string                 `json:"reason"`
	SourceBalanceAfter      *decimal.Decimal       `json:"source_balance_after,omitempty"`
	DestinationBalanceAfter decimal.Decimal        `json:"destination_balance_after"`
	MetaData                map[string]interface{} `json:"meta_data,omitempty"`
	CreatedAt               time.Time              `json:"created_at"`
}

func (entry *LedgerEntry) ToJSON() ([]byte, error) {
	return json.Marshal(entry)
}

// TransferResult reports the outcome of a committed transfer: the ledger
// entry's identifier and both post-transaction balances.
type TransferResult struct {
	TransactionID      string          `json:"transaction_id"`
	SourceBalance      decimal.Decimal `json:"from_balance"`
	DestinationBalance decimal.Decimal `json:"to_balance"`
}
