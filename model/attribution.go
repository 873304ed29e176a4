package model

import (
	"github.com/extropy-ai/extropy/internal/apierror"
	"github.com/shopspring/decimal"
)

const (
	AttributionCitation = "citation"
	AttributionRemix    = "remix"
	AttributionReply    = "reply"
)

// AttributionEvent describes a citation, remix or reply relationship between
// two pieces of content. The ledger consumes these events as transfer inputs;
// it does not own their lifecycle. SourceOwner is the original creator (who
// earns the reward), TargetOwner the citing creator (who pays it). Ownership
// is resolved by the caller and trusted as fixed at resolution time.
type AttributionEvent struct {
	EventID         string `json:"event_id"`
	SourceContentID string `json:"source_content_id"`
	TargetContentID string `json:"target_content_id"`
	Kind            string `json:"kind"`
	SourceOwner     string `json:"source_owner"`
	TargetOwner     string `json:"target_owner"`
}

// rewardTable fixes the $EXTROPY amount paid per attribution kind. The table
// is part of the public contract, not configuration.
var rewardTable = map[string]decimal.Decimal{
	AttributionCitation: decimal.RequireFromString("0.1"),
	AttributionRemix:    decimal.RequireFromString("0.5"),
	AttributionReply:    decimal.RequireFromString("0.05"),
}

// RewardForKind maps an attribution kind to its fixed reward amount. Unknown
// kinds fail closed; the reward is never silently defaulted or skipped.
func RewardForKind(kind string) (decimal.Decimal, error) {
	reward, ok := rewardTable[kind]
	if !ok {
		return decimal.Zero, apierror.NewAPIError(apierror.ErrUnknownAttributionKind, "Unknown attribution kind '"+kind+"'", kind)
	}
	return reward, nil
}
