package asset

import (
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeAssetCreated       = "AssetCreated"
	EventTypeAssetStatusChanged = "AssetStatusChanged"

	AggregateTypeAsset = "Asset"
)

// AssetCreatedEvent is raised when a new asset is registered
type AssetCreatedEvent struct {
	shared.BaseDomainEvent
	AssetID   uuid.UUID       `json:"asset_id"`
	Code      string          `json:"code"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}

// NewAssetCreatedEvent creates a new AssetCreatedEvent
func NewAssetCreatedEvent(a *Asset) *AssetCreatedEvent {
	return &AssetCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetCreated, AggregateTypeAsset, a.ID, a.TenantID),
		AssetID:         a.ID,
		Code:            a.Code,
		DailyRate:       a.DailyRate,
	}
}

// AssetStatusChangedEvent is raised on every status transition
type AssetStatusChangedEvent struct {
	shared.BaseDomainEvent
	AssetID    uuid.UUID `json:"asset_id"`
	Code       string    `json:"code"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Reason     string    `json:"reason,omitempty"`
}

// NewAssetStatusChangedEvent creates a new AssetStatusChangedEvent
func NewAssetStatusChangedEvent(a *Asset, from Status, reason string) *AssetStatusChangedEvent {
	return &AssetStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetStatusChanged, AggregateTypeAsset, a.ID, a.TenantID),
		AssetID:         a.ID,
		Code:            a.Code,
		FromStatus:      from,
		ToStatus:        a.Status,
		Reason:          reason,
	}
}
