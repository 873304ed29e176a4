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
	"database/sql"
	"log"
	"sync"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/extropy-ai/extropy/config"
	"github.com/extropy-ai/extropy/internal/cache"
)

// Singleton connection shared by every consumer in the process.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		statsCache, errCache := cache.NewCache()
		if errCache != nil {
			log.Printf("stats cache unavailable, reads fall through to postgres: %v", errCache)
		}
		instance = &Datasource{Conn: con, Cache: statsCache}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, errors.Wrap(err, "pinging database")
	}
	err = createSchema(db)
	if err != nil {
		return nil, err
	}
	err = createAccountTable(db)
	if err != nil {
		return nil, err
	}
	err = createLedgerEntryTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS extropy`)
	return errors.Wrap(err, "creating extropy schema")
}

// createAccountTable creates the accounts table. The non-negative balance
// check is the database-level backstop behind the sufficiency check done
// under the row lock.
func createAccountTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS extropy.accounts (
			id SERIAL PRIMARY KEY,
			account_id TEXT NOT NULL UNIQUE,
			balance NUMERIC(28,8) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	return errors.Wrap(err, "creating accounts table")
}

// createLedgerEntryTable creates the append-only ledger. source_id is NULL
// for awards; every entry records the post-transaction balances it produced.
func createLedgerEntryTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS extropy.ledger_entries (
			id SERIAL PRIMARY KEY,
			entry_id TEXT NOT NULL UNIQUE,
			source_id TEXT REFERENCES extropy.accounts(account_id),
			destination_id TEXT NOT NULL REFERENCES extropy.accounts(account_id),
			amount NUMERIC(28,8) NOT NULL CHECK (amount > 0),
			kind TEXT NOT NULL,
			attribution_ref TEXT,
			reason TEXT,
			source_balance_after NUMERIC(28,8),
			destination_balance_after NUMERIC(28,8) NOT NULL,
			meta_data JSONB,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return errors.Wrap(err, "creating ledger_entries table")
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_ledger_entries_source ON extropy.ledger_entries (source_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_ledger_entries_destination ON extropy.ledger_entries (destination_id, created_at DESC);
	`)
	return errors.Wrap(err, "creating ledger_entries indexes")
}
