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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/extropy-ai/extropy/internal/apierror"
	"github.com/extropy-ai/extropy/model"
)

func TestGetBalance(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("7.25"))

	balance, err := service.GetBalance(context.Background(), "acc_ada")
	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("7.25")))
}

func TestGetBalanceUnknownAccount(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ghost").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))

	_, err := service.GetBalance(context.Background(), "acc_ghost")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrAccountNotFound, apiErr.Code)
}

func TestGetHistory(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("10"))

	rows := sqlmock.NewRows([]string{"id", "entry_id", "source_id", "destination_id", "amount", "kind", "attribution_ref", "reason", "source_balance_after", "destination_balance_after", "meta_data", "created_at"}).
		AddRow(2, "ent_2", "acc_ada", "acc_bob", "1", model.KindTransfer, nil, "tip", "9", "1", nil, time.Now()).
		AddRow(1, "ent_1", nil, "acc_ada", "10", model.KindEarn, nil, "PUBLISH", nil, "10", nil, time.Now())
	mock.ExpectQuery("SELECT id, entry_id, source_id, destination_id").
		WithArgs("acc_ada", defaultHistoryLimit, 0).
		WillReturnRows(rows)

	entries, err := service.GetHistory(context.Background(), "acc_ada", "", 0, 0)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "ent_2", entries[0].EntryID)
	assert.Equal(t, "ent_1", entries[1].EntryID)
}

func TestGetHistoryKindFilter(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("10"))
	mock.ExpectQuery("SELECT id, entry_id, source_id, destination_id").
		WithArgs("acc_ada", model.KindAttribution, defaultHistoryLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_id", "source_id", "destination_id", "amount", "kind", "attribution_ref", "reason", "source_balance_after", "destination_balance_after", "meta_data", "created_at"}))

	entries, err := service.GetHistory(context.Background(), "acc_ada", model.KindAttribution, 0, 0)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGetHistoryUnknownAccount(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ghost").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))

	_, err := service.GetHistory(context.Background(), "acc_ghost", "", 0, 0)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrAccountNotFound, apiErr.Code)
}

func TestGetHistoryLimitCap(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("10"))
	mock.ExpectQuery("SELECT id, entry_id, source_id, destination_id").
		WithArgs("acc_ada", maxHistoryLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_id", "source_id", "destination_id", "amount", "kind", "attribution_ref", "reason", "source_balance_after", "destination_balance_after", "meta_data", "created_at"}))

	_, err := service.GetHistory(context.Background(), "acc_ada", "", 10000, 0)
	assert.NoError(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetStats(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("2.6"))
	mock.ExpectQuery("SELECT(.|\n)*COALESCE").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"earned", "spent"}).AddRow("3", "0.4"))
	mock.ExpectQuery("SELECT kind, COUNT").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "count"}).
			AddRow(model.KindEarn, 1).
			AddRow(model.KindAttribution, 2))
	mock.ExpectCommit()

	stats, err := service.GetStats(context.Background(), "acc_ada")
	assert.NoError(t, err)
	assert.True(t, stats.NetChange.Equal(decimal.RequireFromString("2.6")))
	assert.Equal(t, int64(2), stats.TransactionCounts[model.KindAttribution])
}
