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
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/extropy-ai/extropy/database"
	"github.com/extropy-ai/extropy/internal/apierror"
	redlock "github.com/extropy-ai/extropy/internal/lock"
	"github.com/extropy-ai/extropy/internal/notification"
	"github.com/extropy-ai/extropy/model"
)

var tracer = otel.Tracer("extropy.ledger")

const (
	accountLockTTL  = 30 * time.Second
	accountLockWait = 5 * time.Second
)

func logAndRecordError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	notification.NotifyError(fmt.Errorf("%s: %w", msg, err))
	return err
}

// Transfer moves tokens between two accounts. The amount is validated before
// any storage work; existence and sufficiency are decided by the datasource
// under row locks, so a failed transfer leaves no partial state. A transfer
// carrying an attribution reference is recorded with kind attribution.
func (l *Extropy) Transfer(ctx context.Context, source, destination string, amount decimal.Decimal, reason string, attributionRef *string, metaData map[string]interface{}) (*model.TransferResult, error) {
	ctx, span := tracer.Start(ctx, "Recording transfer")
	defer span.End()

	kind := model.KindTransfer
	if attributionRef != nil {
		kind = model.KindAttribution
	}

	return l.applyTransfer(ctx, span, &database.TransferInput{
		Source:         source,
		Destination:    destination,
		Amount:         amount,
		Kind:           kind,
		AttributionRef: attributionRef,
		Reason:         reason,
		MetaData:       metaData,
	})
}

// applyTransfer runs the shared transfer pipeline for plain transfers and
// attribution rewards. A Redis lock on the source account serializes writers
// ahead of the database row locks to keep lock contention out of postgres.
func (l *Extropy) applyTransfer(ctx context.Context, span trace.Span, input *database.TransferInput) (*model.TransferResult, error) {
	if !model.ValidAmount(input.Amount) {
		err := apierror.NewAPIError(apierror.ErrInvalidAmount, fmt.Sprintf("Amount '%s' must be positive with at most %d decimal places", input.Amount.String(), model.AmountPrecision), nil)
		span.RecordError(err)
		return nil, err
	}
	if input.Source == input.Destination {
		err := apierror.NewAPIError(apierror.ErrSelfTransfer, "Source and destination accounts must differ", nil)
		span.RecordError(err)
		return nil, err
	}

	locker := redlock.NewLocker(l.redis, fmt.Sprintf("account:%s", input.Source), model.GenerateUUIDWithSuffix("loc"))
	if err := locker.WaitLock(ctx, accountLockTTL, accountLockWait); err != nil {
		return nil, logAndRecordError(span, "acquiring account lock", apierror.NewAPIError(apierror.ErrConflict, "Account is busy, retry the transfer", err))
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			notification.NotifyError(err)
		}
	}()

	span.AddEvent("applying transfer")
	entry, err := l.datasource.ApplyTransfer(ctx, input)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	l.postTransactionActions(ctx, entry)

	return &model.TransferResult{
		TransactionID:      entry.EntryID,
		SourceBalance:      *entry.SourceBalanceAfter,
		DestinationBalance: entry.DestinationBalanceAfter,
	}, nil
}

func (l *Extropy) postTransactionActions(_ context.Context, entry *model.LedgerEntry) {
	go func() {
		err := SendWebhook(NewWebhook{
			Event:   "transaction.applied",
			Payload: entry,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}
