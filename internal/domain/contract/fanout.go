package contract

import (
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
)

// AssetTransition is a status change a contract operation requires of one
// of its assets.
type AssetTransition struct {
	AssetID uuid.UUID
	ItemID  uuid.UUID
	To      asset.Status
	Reason  string
}

// PlanAssetTransitions computes the asset status changes implied by moving c
// to newStatus. Only active items participate; each asset appears once.
//
// ACTIVE rents the assets; TERMINATED and CANCELLED release them. Other
// statuses leave assets untouched.
func PlanAssetTransitions(c *Contract, items []ContractItem, newStatus Status) []AssetTransition {
	var target asset.Status
	switch newStatus {
	case StatusActive:
		target = asset.StatusRented
	case StatusTerminated, StatusCancelled:
		target = asset.StatusAvailable
	case StatusDraft, StatusSuspended:
		return nil
	default:
		return nil
	}

	reason := "Contract " + c.ContractNumber + " " + string(newStatus)
	seen := make(map[uuid.UUID]struct{}, len(items))
	transitions := make([]AssetTransition, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		if _, dup := seen[item.AssetID]; dup {
			continue
		}
		seen[item.AssetID] = struct{}{}
		transitions = append(transitions, AssetTransition{
			AssetID: item.AssetID,
			ItemID:  item.ID,
			To:      target,
			Reason:  reason,
		})
	}
	return transitions
}
