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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/extropy-ai/extropy/internal/apierror"
	"github.com/extropy-ai/extropy/model"
)

func newTestDatasource(t *testing.T) (Datasource, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database Connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return Datasource{Conn: db}, mock
}

func TestCreateAccount(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec("INSERT INTO extropy.accounts").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	account, err := ds.CreateAccount(context.Background(), model.Account{MetaData: map[string]interface{}{"creator": "ada"}})
	assert.NoError(t, err)
	assert.Contains(t, account.AccountID, "acc_")
	assert.True(t, account.Balance.IsZero())
	assert.WithinDuration(t, time.Now(), account.CreatedAt, time.Second)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCreateAccountConflict(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec("INSERT INTO extropy.accounts").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Message: "unique_violation"})

	_, err := ds.CreateAccount(context.Background(), model.Account{})
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}

func TestGetAccountByID(t *testing.T) {
	ds, mock := newTestDatasource(t)

	rows := sqlmock.NewRows([]string{"id", "account_id", "balance", "created_at", "meta_data"}).
		AddRow(1, "acc_123", "42.5", time.Now(), []byte(`{"creator":"ada"}`))
	mock.ExpectQuery("SELECT id, account_id, balance, created_at, meta_data").
		WithArgs("acc_123").
		WillReturnRows(rows)

	account, err := ds.GetAccountByID(context.Background(), "acc_123")
	assert.NoError(t, err)
	assert.Equal(t, "acc_123", account.AccountID)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("42.5")))
	assert.Equal(t, "ada", account.MetaData["creator"])
}

func TestGetAccountByIDNotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT id, account_id, balance, created_at, meta_data").
		WithArgs("acc_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "balance", "created_at", "meta_data"}))

	_, err := ds.GetAccountByID(context.Background(), "acc_missing")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrAccountNotFound, apiErr.Code)
}

func TestGetAccountBalance(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_123").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("10.00000001"))

	balance, err := ds.GetAccountBalance(context.Background(), "acc_123")
	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("10.00000001")))
}

func TestGetAllAccounts(t *testing.T) {
	ds, mock := newTestDatasource(t)

	rows := sqlmock.NewRows([]string{"id", "account_id", "balance", "created_at", "meta_data"}).
		AddRow(2, "acc_2", "5", time.Now(), nil).
		AddRow(1, "acc_1", "0", time.Now(), nil)
	mock.ExpectQuery("SELECT id, account_id, balance, created_at, meta_data").
		WithArgs(20, 0).
		WillReturnRows(rows)

	accounts, err := ds.GetAllAccounts(context.Background(), 20, 0)
	assert.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, "acc_2", accounts[0].AccountID)
}
