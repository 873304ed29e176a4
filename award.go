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
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/extropy-ai/extropy/database"
	"github.com/extropy-ai/extropy/internal/apierror"
	"github.com/extropy-ai/extropy/internal/notification"
	"github.com/extropy-ai/extropy/model"
)

// Award mints tokens into an account with no debited counterparty, e.g. a
// publishing reward. The resulting ledger entry has a NULL source.
func (l *Extropy) Award(ctx context.Context, destination string, amount decimal.Decimal, reason string, contentRef *string, metaData map[string]interface{}) (*model.LedgerEntry, error) {
	ctx, span := tracer.Start(ctx, "Recording award")
	defer span.End()

	if !model.ValidAmount(amount) {
		err := apierror.NewAPIError(apierror.ErrInvalidAmount, fmt.Sprintf("Amount '%s' must be positive with at most %d decimal places", amount.String(), model.AmountPrecision), nil)
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("applying award")
	entry, err := l.datasource.ApplyAward(ctx, &database.AwardInput{
		Destination: destination,
		Amount:      amount,
		ContentRef:  contentRef,
		Reason:      reason,
		MetaData:    metaData,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	l.postAwardActions(ctx, entry)
	return entry, nil
}

func (l *Extropy) postAwardActions(_ context.Context, entry *model.LedgerEntry) {
	go func() {
		err := SendWebhook(NewWebhook{
			Event:   "reward.applied",
			Payload: entry,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}
