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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	model2 "github.com/extropy-ai/extropy/api/model"
)

// RecordTransfer applies a user-to-user token transfer.
//
// Responses:
// - 400 Bad Request: Malformed body, invalid amount or self transfer.
// - 404 Not Found: Unknown source or destination account.
// - 422 Unprocessable Entity: Insufficient balance.
// - 201 Created: The transfer committed; body carries both new balances.
func (a Api) RecordTransfer(c *gin.Context) {
	var newTransfer model2.RecordTransfer
	if err := c.ShouldBindJSON(&newTransfer); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := newTransfer.ValidateRecordTransfer(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.extropy.Transfer(c.Request.Context(), newTransfer.From, newTransfer.To, newTransfer.Amount, newTransfer.Reason, newTransfer.AttributionRef, newTransfer.MetaData)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RecordAward applies a system credit to an account.
func (a Api) RecordAward(c *gin.Context) {
	var newAward model2.RecordAward
	if err := c.ShouldBindJSON(&newAward); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := newAward.ValidateRecordAward(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.extropy.Award(c.Request.Context(), newAward.To, newAward.Amount, newAward.Reason, newAward.ContentRef, newAward.MetaData)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RecordAttribution resolves an attribution event into a reward transfer
// from the citing creator to the original creator.
func (a Api) RecordAttribution(c *gin.Context) {
	var newAttribution model2.RecordAttribution
	if err := c.ShouldBindJSON(&newAttribution); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := newAttribution.ValidateRecordAttribution(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.extropy.ResolveAttribution(c.Request.Context(), newAttribution.ToAttributionEvent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetLedgerEntry retrieves a single ledger entry by its ID.
func (a Api) GetLedgerEntry(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /transactions/:id"})
		return
	}

	entry, err := a.extropy.GetLedgerEntry(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
