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
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/extropy-ai/extropy/model"
)

func TestCreateAccount(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectExec("INSERT INTO extropy.accounts").
		WillReturnResult(sqlmock.NewResult(1, 1))

	account, err := service.CreateAccount(context.Background(), model.Account{
		MetaData: map[string]interface{}{"creator": gofakeit.Name()},
	})
	assert.NoError(t, err)
	assert.Contains(t, account.AccountID, "acc_")
	assert.True(t, account.Balance.IsZero())
	assert.WithinDuration(t, time.Now(), account.CreatedAt, time.Second)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGetAccountByID(t *testing.T) {
	service, mock := newTestExtropy(t)

	mock.ExpectQuery("SELECT id, account_id, balance, created_at, meta_data").
		WithArgs("acc_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "balance", "created_at", "meta_data"}).
			AddRow(1, "acc_1", "0", time.Now(), nil))

	account, err := service.GetAccountByID(context.Background(), "acc_1")
	assert.NoError(t, err)
	assert.Equal(t, "acc_1", account.AccountID)
}
