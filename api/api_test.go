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

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	extropy "github.com/extropy-ai/extropy"
	"github.com/extropy-ai/extropy/config"
	"github.com/extropy-ai/extropy/database"
)

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
	})

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database Connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	service, err := extropy.NewExtropy(&database.Datasource{Conn: db})
	if err != nil {
		t.Fatalf("Error creating Extropy instance: %s", err)
	}

	return NewAPI(service).Router(), mock
}

func postJSON(t *testing.T, router *gin.Engine, route string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", route, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateAccountEndpoint(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectExec("INSERT INTO extropy.accounts").
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp := postJSON(t, router, "/accounts", map[string]interface{}{
		"meta_data": map[string]interface{}{"creator": "ada"},
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	var account map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &account))
	assert.Contains(t, account["account_id"], "acc_")
}

func TestTransferEndpoint(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT account_id, balance(.|\n)*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "balance"}).
			AddRow("acc_bob", "0").
			AddRow("acc_alice", "10"))
	mock.ExpectExec("UPDATE extropy.accounts SET balance").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE extropy.accounts SET balance").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO extropy.ledger_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	resp := postJSON(t, router, "/transfers", map[string]interface{}{
		"from":   "acc_alice",
		"to":     "acc_bob",
		"amount": "2.5",
		"reason": "tip",
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	var result map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, "7.5", result["from_balance"])
	assert.Equal(t, "2.5", result["to_balance"])
}

func TestTransferEndpointWithAttributionRef(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT account_id, balance(.|\n)*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "balance"}).
			AddRow("acc_bob", "0").
			AddRow("acc_alice", "10"))
	mock.ExpectExec("UPDATE extropy.accounts SET balance").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE extropy.accounts SET balance").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO extropy.ledger_entries").
		WithArgs(sqlmock.AnyArg(), "acc_alice", "acc_bob", decimal.NewFromInt(1), "attribution", "evt_7", "CITATION", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	resp := postJSON(t, router, "/transfers", map[string]interface{}{
		"from":            "acc_alice",
		"to":              "acc_bob",
		"amount":          "1",
		"reason":          "CITATION",
		"attribution_ref": "evt_7",
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestTransferEndpointInvalidAmount(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postJSON(t, router, "/transfers", map[string]interface{}{
		"from":   "acc_alice",
		"to":     "acc_bob",
		"amount": "-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_AMOUNT", body["code"])
}

func TestTransferEndpointInsufficientBalance(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT account_id, balance(.|\n)*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "balance"}).
			AddRow("acc_bob", "0").
			AddRow("acc_alice", "1"))
	mock.ExpectRollback()

	resp := postJSON(t, router, "/transfers", map[string]interface{}{
		"from":   "acc_alice",
		"to":     "acc_bob",
		"amount": "2",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "INSUFFICIENT_BALANCE", body["code"])
	details := body["details"].(map[string]interface{})
	assert.Equal(t, "1", details["available"])
	assert.Equal(t, "2", details["required"])
}

func TestTransferEndpointUnknownAccount(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT account_id, balance(.|\n)*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "balance"}).
			AddRow("acc_alice", "10"))
	mock.ExpectRollback()

	resp := postJSON(t, router, "/transfers", map[string]interface{}{
		"from":   "acc_alice",
		"to":     "acc_ghost",
		"amount": "1",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTransferEndpointMissingFields(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postJSON(t, router, "/transfers", map[string]interface{}{
		"amount": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAwardEndpoint(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM extropy.accounts(.|\n)*FOR UPDATE").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("0"))
	mock.ExpectExec("UPDATE extropy.accounts SET balance").
		WithArgs(decimal.RequireFromString("10"), "acc_ada").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO extropy.ledger_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	resp := postJSON(t, router, "/awards", map[string]interface{}{
		"to":     "acc_ada",
		"amount": "10",
		"reason": "PUBLISH",
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	var entry map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entry))
	assert.Equal(t, "earn", entry["kind"])
	assert.Equal(t, "10", entry["destination_balance_after"])
}

func TestAttributionEndpointUnknownKind(t *testing.T) {
	router, _ := setupRouter(t)

	resp := postJSON(t, router, "/attributions", map[string]interface{}{
		"event_id":     "evt_1",
		"kind":         "quote",
		"source_owner": "acc_original",
		"target_owner": "acc_citer",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "UNKNOWN_ATTRIBUTION_KIND", body["code"])
}

func TestHistoryEndpoint(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ada").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("10"))
	mock.ExpectQuery("SELECT id, entry_id, source_id, destination_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "entry_id", "source_id", "destination_id", "amount", "kind", "attribution_ref", "reason", "source_balance_after", "destination_balance_after", "meta_data", "created_at"}).
			AddRow(1, "ent_1", nil, "acc_ada", "10", "earn", nil, "PUBLISH", nil, "10", nil, time.Now()))

	req := httptest.NewRequest("GET", "/accounts/acc_ada/history", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)

	var entries []map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
	assert.Equal(t, "ent_1", entries[0]["entry_id"])
}

func TestBalanceEndpointUnknownAccount(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT balance FROM extropy.accounts").
		WithArgs("acc_ghost").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))

	req := httptest.NewRequest("GET", "/accounts/acc_ghost/balance", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
