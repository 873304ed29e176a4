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

	"github.com/shopspring/decimal"

	"github.com/extropy-ai/extropy/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	account // Interface for account-related operations
	ledger  // Interface for ledger-related operations
}

// account defines methods for handling accounts.
type account interface {
	CreateAccount(ctx context.Context, account model.Account) (model.Account, error)  // Creates a new account
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)            // Retrieves an account by ID
	GetAccountBalance(ctx context.Context, id string) (decimal.Decimal, error)        // Retrieves the current balance of an account
	GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error)   // Retrieves all accounts
}

// ledger defines methods for handling ledger entries and the transactional
// balance mutations that produce them.
type ledger interface {
	ApplyTransfer(ctx context.Context, transfer *TransferInput) (*model.LedgerEntry, error)                       // Applies a debit-credit pair and records the ledger entry atomically
	ApplyAward(ctx context.Context, award *AwardInput) (*model.LedgerEntry, error)                                // Applies a system credit and records the ledger entry atomically
	GetLedgerEntry(ctx context.Context, entryID string) (*model.LedgerEntry, error)                               // Retrieves a ledger entry by ID
	GetLedgerEntries(ctx context.Context, accountID, kind string, limit, offset int) ([]model.LedgerEntry, error) // Retrieves an account's ledger entries, newest first
	GetAccountStats(ctx context.Context, accountID string) (*model.AccountStats, error)                           // Computes aggregate figures from the ledger
}
