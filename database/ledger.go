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

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/extropy-ai/extropy/internal/apierror"
	"github.com/extropy-ai/extropy/model"
)

// statsCacheTTL bounds how stale a cached stats read can be. Writes delete
// the key eagerly, so the TTL only matters when an invalidation is missed.
const statsCacheTTL = 5 * time.Minute

// TransferInput carries a validated debit-credit pair into the storage layer.
// Validation of amount and distinct endpoints happens in the service layer;
// existence and sufficiency are checked here, under the row locks.
type TransferInput struct {
	Source         string
	Destination    string
	Amount         decimal.Decimal
	Kind           string
	AttributionRef *string
	Reason         string
	MetaData       map[string]interface{}
}

// AwardInput carries a validated system credit into the storage layer. Awards
// have no debited counterparty.
type AwardInput struct {
	Destination string
	Amount      decimal.Decimal
	ContentRef  *string
	Reason      string
	MetaData    map[string]interface{}
}

// ApplyTransfer debits the source, credits the destination and appends the
// ledger entry in one database transaction. Both account rows are locked in
// sorted ID order so concurrent transfers over the same pair cannot deadlock.
// Existence and sufficiency are decided under the locks; any failure rolls
// the whole transaction back and no partial state survives.
func (d Datasource) ApplyTransfer(ctx context.Context, transfer *TransferInput) (*model.LedgerEntry, error) {
	metaDataJSON, err := json.Marshal(transfer.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ids := []string{transfer.Source, transfer.Destination}
	sort.Strings(ids)
	rows, err := tx.QueryContext(ctx, `
		SELECT account_id, balance
		FROM extropy.accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to lock account rows", err)
	}

	balances := map[string]decimal.Decimal{}
	for rows.Next() {
		var accountID string
		var balance decimal.Decimal
		if err := rows.Scan(&accountID, &balance); err != nil {
			_ = rows.Close()
			return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to scan locked account row", err)
		}
		balances[accountID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Error iterating locked account rows", err)
	}
	_ = rows.Close()

	sourceBalance, ok := balances[transfer.Source]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrAccountNotFound, fmt.Sprintf("Source account '%s' not found", transfer.Source), nil)
	}
	destinationBalance, ok := balances[transfer.Destination]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrAccountNotFound, fmt.Sprintf("Destination account '%s' not found", transfer.Destination), nil)
	}

	if sourceBalance.LessThan(transfer.Amount) {
		return nil, apierror.NewInsufficientBalance(sourceBalance, transfer.Amount)
	}

	newSourceBalance := sourceBalance.Sub(transfer.Amount)
	newDestinationBalance := destinationBalance.Add(transfer.Amount)

	_, err = tx.ExecContext(ctx, `
		UPDATE extropy.accounts SET balance = $1 WHERE account_id = $2
	`, newSourceBalance, transfer.Source)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to debit source account", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE extropy.accounts SET balance = $1 WHERE account_id = $2
	`, newDestinationBalance, transfer.Destination)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to credit destination account", err)
	}

	entry := &model.LedgerEntry{
		EntryID:                 model.GenerateUUIDWithSuffix("ent"),
		Source:                  &transfer.Source,
		Destination:             transfer.Destination,
		Amount:                  transfer.Amount,
		Kind:                    transfer.Kind,
		AttributionRef:          transfer.AttributionRef,
		Reason:                  transfer.Reason,
		SourceBalanceAfter:      &newSourceBalance,
		DestinationBalanceAfter: newDestinationBalance,
		MetaData:                transfer.MetaData,
		CreatedAt:               time.Now(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO extropy.ledger_entries
			(entry_id, source_id, destination_id, amount, kind, attribution_ref, reason, source_balance_after, destination_balance_after, meta_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, entry.EntryID, entry.Source, entry.Destination, entry.Amount, entry.Kind, entry.AttributionRef, entry.Reason, entry.SourceBalanceAfter, entry.DestinationBalanceAfter, metaDataJSON, entry.CreatedAt)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to record ledger entry", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to commit transfer", err)
	}

	d.invalidateStats(ctx, transfer.Source, transfer.Destination)
	return entry, nil
}

// ApplyAward credits the destination and appends the ledger entry in one
// database transaction. The destination row is locked so a concurrent
// transfer cannot read a balance this award is about to change.
func (d Datasource) ApplyAward(ctx context.Context, award *AwardInput) (*model.LedgerEntry, error) {
	metaDataJSON, err := json.Marshal(award.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT balance FROM extropy.accounts WHERE account_id = $1 FOR UPDATE
	`, award.Destination).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrAccountNotFound, fmt.Sprintf("Account with ID '%s' not found", award.Destination), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to lock account row", err)
	}

	newBalance := balance.Add(award.Amount)
	_, err = tx.ExecContext(ctx, `
		UPDATE extropy.accounts SET balance = $1 WHERE account_id = $2
	`, newBalance, award.Destination)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to credit account", err)
	}

	entry := &model.LedgerEntry{
		EntryID:                 model.GenerateUUIDWithSuffix("ent"),
		Destination:             award.Destination,
		Amount:                  award.Amount,
		Kind:                    model.KindEarn,
		AttributionRef:          award.ContentRef,
		Reason:                  award.Reason,
		DestinationBalanceAfter: newBalance,
		MetaData:                award.MetaData,
		CreatedAt:               time.Now(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO extropy.ledger_entries
			(entry_id, source_id, destination_id, amount, kind, attribution_ref, reason, source_balance_after, destination_balance_after, meta_data, created_at)
		VALUES ($1, NULL, $2, $3, $4, $5, $6, NULL, $7, $8, $9)
	`, entry.EntryID, entry.Destination, entry.Amount, entry.Kind, entry.AttributionRef, entry.Reason, entry.DestinationBalanceAfter, metaDataJSON, entry.CreatedAt)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to record ledger entry", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to commit award", err)
	}

	d.invalidateStats(ctx, award.Destination)
	return entry, nil
}

// GetLedgerEntry retrieves a single ledger entry by its ID.
func (d Datasource) GetLedgerEntry(ctx context.Context, entryID string) (*model.LedgerEntry, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, entry_id, source_id, destination_id, amount, kind, attribution_ref, reason, source_balance_after, destination_balance_after, meta_data, created_at
		FROM extropy.ledger_entries
		WHERE entry_id = $1
	`, entryID)

	entry, err := scanLedgerEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Ledger entry with ID '%s' not found", entryID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve ledger entry", err)
	}
	return entry, nil
}

// GetLedgerEntries retrieves the entries an account participates in, as
// source or destination, newest first. An empty kind returns all kinds.
func (d Datasource) GetLedgerEntries(ctx context.Context, accountID, kind string, limit, offset int) ([]model.LedgerEntry, error) {
	query := `
		SELECT id, entry_id, source_id, destination_id, amount, kind, attribution_ref, reason, source_balance_after, destination_balance_after, meta_data, created_at
		FROM extropy.ledger_entries
		WHERE (source_id = $1 OR destination_id = $1)
	`
	args := []interface{}{accountID}
	if kind != "" {
		query += ` AND kind = $2 ORDER BY created_at DESC, entry_id DESC LIMIT $3 OFFSET $4`
		args = append(args, kind, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC, entry_id DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve ledger entries", err)
	}
	defer rows.Close()

	entries := []model.LedgerEntry{}
	for rows.Next() {
		entry, err := scanLedgerEntry(rows.Scan)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan ledger entry row", err)
		}
		entries = append(entries, *entry)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating ledger entry rows", err)
	}

	return entries, nil
}

func scanLedgerEntry(scan func(dest ...interface{}) error) (*model.LedgerEntry, error) {
	entry := model.LedgerEntry{}
	var source sql.NullString
	var attributionRef sql.NullString
	var sourceBalanceAfter decimal.NullDecimal
	var metaDataJSON []byte

	err := scan(&entry.ID, &entry.EntryID, &source, &entry.Destination, &entry.Amount, &entry.Kind, &attributionRef, &entry.Reason, &sourceBalanceAfter, &entry.DestinationBalanceAfter, &metaDataJSON, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	if source.Valid {
		entry.Source = &source.String
	}
	if attributionRef.Valid {
		entry.AttributionRef = &attributionRef.String
	}
	if sourceBalanceAfter.Valid {
		entry.SourceBalanceAfter = &sourceBalanceAfter.Decimal
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &entry.MetaData); err != nil {
			return nil, err
		}
	}
	return &entry, nil
}

// GetAccountStats computes an account's aggregate figures from the ledger.
// The reads run in a single read-only transaction so the balance and the
// aggregates describe the same ledger state. Results are cached per account;
// every committed write touching the account deletes the cached value.
func (d Datasource) GetAccountStats(ctx context.Context, accountID string) (*model.AccountStats, error) {
	if d.Cache != nil {
		var cached []byte
		if err := d.Cache.Get(ctx, statsCacheKey(accountID), &cached); err == nil && len(cached) > 0 {
			stats := model.AccountStats{}
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to begin stats transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stats := model.AccountStats{
		AccountID:         accountID,
		TransactionCounts: map[string]int64{},
	}

	// Balance lookup doubles as the existence check.
	err = tx.QueryRowContext(ctx, `
		SELECT balance FROM extropy.accounts WHERE account_id = $1
	`, accountID).Scan(&stats.Balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrAccountNotFound, fmt.Sprintf("Account with ID '%s' not found", accountID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve account balance", err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN destination_id = $1 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN source_id = $1 THEN amount ELSE 0 END), 0)
		FROM extropy.ledger_entries
		WHERE source_id = $1 OR destination_id = $1
	`, accountID).Scan(&stats.TotalEarned, &stats.TotalSpent)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to compute account totals", err)
	}
	stats.NetChange = stats.TotalEarned.Sub(stats.TotalSpent)

	rows, err := tx.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM extropy.ledger_entries
		WHERE source_id = $1 OR destination_id = $1
		GROUP BY kind
	`, accountID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to compute transaction counts", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction count row", err)
		}
		stats.TransactionCounts[kind] = count
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating transaction count rows", err)
	}
	_ = rows.Close()

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrStorageFault, "Failed to commit stats transaction", err)
	}

	if d.Cache != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			_ = d.Cache.Set(ctx, statsCacheKey(accountID), encoded, statsCacheTTL)
		}
	}

	return &stats, nil
}

func statsCacheKey(accountID string) string {
	return fmt.Sprintf("stats:%s", accountID)
}

func (d Datasource) invalidateStats(ctx context.Context, accountIDs ...string) {
	if d.Cache == nil {
		return
	}
	for _, id := range accountIDs {
		_ = d.Cache.Delete(ctx, statsCacheKey(id))
	}
}
