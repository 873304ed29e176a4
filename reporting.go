/*
Copyright 2025 Extropy Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package extropy

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/extropy-ai/extropy/model"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// GetBalance returns an account's current balance.
func (l *Extropy) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return l.datasource.GetAccountBalance(ctx, accountID)
}

// GetHistory returns an account's ledger entries, newest first. kind narrows
// the result to a single entry kind when non-empty. Pagination is stateless;
// entries committed between pages may shift offsets.
func (l *Extropy) GetHistory(ctx context.Context, accountID, kind string, limit, offset int) ([]model.LedgerEntry, error) {
	ctx, span := tracer.Start(ctx, "Fetching account history")
	defer span.End()

	// Existence check so an unknown account reads as not-found rather than
	// an empty history.
	if _, err := l.datasource.GetAccountBalance(ctx, accountID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := l.datasource.GetLedgerEntries(ctx, accountID, kind, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return entries, nil
}

// GetStats returns aggregate ledger figures for an account.
func (l *Extropy) GetStats(ctx context.Context, accountID string) (*model.AccountStats, error) {
	ctx, span := tracer.Start(ctx, "Fetching account stats")
	defer span.End()

	stats, err := l.datasource.GetAccountStats(ctx, accountID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return stats, nil
}

// GetLedgerEntry returns a single ledger entry by its ID.
func (l *Extropy) GetLedgerEntry(ctx context.Context, entryID string) (*model.LedgerEntry, error) {
	return l.datasource.GetLedgerEntry(ctx, entryID)
}
