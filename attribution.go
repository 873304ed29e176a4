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
	"strings"

	"github.com/extropy-ai/extropy/database"
	"github.com/extropy-ai/extropy/model"
)

// ResolveAttribution converts an attribution event into a ledger transfer.
// The citing creator pays the original creator the fixed reward for the
// event's kind. Ownership fields on the event are trusted as resolved at
// event time. A creator citing their own content fails the self-transfer
// check and no reward moves.
func (l *Extropy) ResolveAttribution(ctx context.Context, event *model.AttributionEvent) (*model.TransferResult, error) {
	ctx, span := tracer.Start(ctx, "Resolving attribution reward")
	defer span.End()

	reward, err := model.RewardForKind(event.Kind)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("applying attribution reward")
	return l.applyTransfer(ctx, span, &database.TransferInput{
		Source:         event.TargetOwner,
		Destination:    event.SourceOwner,
		Amount:         reward,
		Kind:           model.KindAttribution,
		AttributionRef: &event.EventID,
		Reason:         strings.ToUpper(event.Kind),
		MetaData: map[string]interface{}{
			"source_content_id": event.SourceContentID,
			"target_content_id": event.TargetContentID,
		},
	})
}
