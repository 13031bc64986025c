package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

const (
	EventTypeContractCreated       = "ContractCreated"
	EventTypeContractStatusChanged = "ContractStatusChanged"
	EventTypeContractItemAdded     = "ContractItemAdded"
	EventTypeContractItemRemoved   = "ContractItemRemoved"
	EventTypeContractItemDates     = "ContractItemDatesRecorded"

	AggregateTypeContract = "Contract"
)

// ContractCreatedEvent is raised when a contract is drafted
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string    `json:"contract_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	Type           Type      `json:"type"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeContract, c.ID, c.TenantID),
		ContractNumber:  c.ContractNumber,
		CustomerID:      c.CustomerID,
		Type:            c.Type,
	}
}

// ContractStatusChangedEvent is raised on every contract status transition
type ContractStatusChangedEvent struct {
	shared.BaseDomainEvent
	ContractNumber string `json:"contract_number"`
	FromStatus     Status `json:"from_status"`
	ToStatus       Status `json:"to_status"`
	Reason         string `json:"reason,omitempty"`
	AssetsAffected int    `json:"assets_affected"`
}

// NewContractStatusChangedEvent creates a new ContractStatusChangedEvent
func NewContractStatusChangedEvent(c *Contract, from Status, assetsAffected int) *ContractStatusChangedEvent {
	return &ContractStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractStatusChanged, AggregateTypeContract, c.ID, c.TenantID),
		ContractNumber:  c.ContractNumber,
		FromStatus:      from,
		ToStatus:        c.Status,
		Reason:          c.StatusReason,
		AssetsAffected:  assetsAffected,
	}
}

// ContractItemAddedEvent is raised when an asset joins a contract
type ContractItemAddedEvent struct {
	shared.BaseDomainEvent
	ItemID  uuid.UUID `json:"item_id"`
	AssetID uuid.UUID `json:"asset_id"`
}

// NewContractItemAddedEvent creates a new ContractItemAddedEvent
func NewContractItemAddedEvent(c *Contract, item *ContractItem) *ContractItemAddedEvent {
	return &ContractItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractItemAdded, AggregateTypeContract, c.ID, c.TenantID),
		ItemID:          item.ID,
		AssetID:         item.AssetID,
	}
}

// ContractItemRemovedEvent is raised when an item is deactivated
type ContractItemRemovedEvent struct {
	shared.BaseDomainEvent
	ItemID  uuid.UUID `json:"item_id"`
	AssetID uuid.UUID `json:"asset_id"`
}

// NewContractItemRemovedEvent creates a new ContractItemRemovedEvent
func NewContractItemRemovedEvent(c *Contract, item *ContractItem) *ContractItemRemovedEvent {
	return &ContractItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractItemRemoved, AggregateTypeContract, c.ID, c.TenantID),
		ItemID:          item.ID,
		AssetID:         item.AssetID,
	}
}

// ContractItemDatesRecordedEvent is raised when an item's departure or return
// date is stamped
type ContractItemDatesRecordedEvent struct {
	shared.BaseDomainEvent
	ItemID        uuid.UUID  `json:"item_id"`
	AssetID       uuid.UUID  `json:"asset_id"`
	DepartureDate *time.Time `json:"departure_date,omitempty"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
}

// NewContractItemDatesRecordedEvent creates a new ContractItemDatesRecordedEvent
func NewContractItemDatesRecordedEvent(c *Contract, item *ContractItem) *ContractItemDatesRecordedEvent {
	return &ContractItemDatesRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractItemDates, AggregateTypeContract, c.ID, c.TenantID),
		ItemID:          item.ID,
		AssetID:         item.AssetID,
		DepartureDate:   item.DepartureDate,
		ReturnDate:      item.ReturnDate,
	}
}
