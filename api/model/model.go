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
package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/extropy-ai/extropy/model"
)

// CreateAccount is the request body for opening a new account.
type CreateAccount struct {
	MetaData map[string]interface{} `json:"meta_data"`
}

func (a *CreateAccount) ToAccount() model.Account {
	return model.Account{MetaData: a.MetaData}
}

// RecordTransfer is the request body for a user-to-user token transfer.
// Amount range and precision are enforced by the transfer engine so the
// error taxonomy stays in one place. Setting attribution_ref records the
// transfer with kind attribution.
type RecordTransfer struct {
	From           string                 `json:"from"`
	To             string                 `json:"to"`
	Amount         decimal.Decimal        `json:"amount"`
	Reason         string                 `json:"reason"`
	AttributionRef *string                `json:"attribution_ref,omitempty"`
	MetaData       map[string]interface{} `json:"meta_data"`
}

func (t *RecordTransfer) ValidateRecordTransfer() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.From, validation.Required),
		validation.Field(&t.To, validation.Required),
	)
}

// RecordAward is the request body for a system-originated credit.
type RecordAward struct {
	To         string                 `json:"to"`
	Amount     decimal.Decimal        `json:"amount"`
	Reason     string                 `json:"reason"`
	ContentRef *string                `json:"content_ref,omitempty"`
	MetaData   map[string]interface{} `json:"meta_data"`
}

func (a *RecordAward) ValidateRecordAward() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.To, validation.Required),
	)
}

// RecordAttribution is the request body for resolving an attribution event
// into a reward transfer. Kind is validated against the reward table by the
// resolver so unknown kinds report UNKNOWN_ATTRIBUTION_KIND.
type RecordAttribution struct {
	EventID         string `json:"event_id"`
	SourceContentID string `json:"source_content_id"`
	TargetContentID string `json:"target_content_id"`
	Kind            string `json:"kind"`
	SourceOwner     string `json:"source_owner"`
	TargetOwner     string `json:"target_owner"`
}

func (r *RecordAttribution) ValidateRecordAttribution() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EventID, validation.Required),
		validation.Field(&r.Kind, validation.Required),
		validation.Field(&r.SourceOwner, validation.Required),
		validation.Field(&r.TargetOwner, validation.Required),
	)
}

func (r *RecordAttribution) ToAttributionEvent() *model.AttributionEvent {
	return &model.AttributionEvent{
		EventID:         r.EventID,
		SourceContentID: r.SourceContentID,
		TargetContentID: r.TargetContentID,
		Kind:            r.Kind,
		SourceOwner:     r.SourceOwner,
		TargetOwner:     r.TargetOwner,
	}
}
