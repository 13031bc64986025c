package contract

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the status of a rental contract
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusActive     Status = "ACTIVE"
	StatusSuspended  Status = "SUSPENDED"
	StatusTerminated Status = "TERMINATED"
	StatusCancelled  Status = "CANCELLED" // Soft-deleted, terminal
)

// IsValid checks if the status is a known contract status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusSuspended, StatusTerminated, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the contract accepts no further transition
func (s Status) IsTerminal() bool {
	return s == StatusCancelled
}

// AcceptsItems reports whether items may still be added in this status
func (s Status) AcceptsItems() bool {
	return s == StatusDraft || s == StatusActive || s == StatusSuspended
}

// CanTransitionTo validates a move from s to target.
func (s Status) CanTransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown contract status %q", target).WithField("status")
	}
	if s == target {
		return shared.NewDomainErrorf(shared.CodeSameStatus, "Contract is already %s", s)
	}
	switch s {
	case StatusCancelled:
		return shared.NewDomainError(shared.CodeInvalidTransition, "Contract is cancelled and cannot change status")
	case StatusDraft, StatusActive, StatusSuspended, StatusTerminated:
		return nil
	}
	return shared.NewDomainErrorf(shared.CodeInvalidState, "Contract has unknown status %q", s)
}

// Type is the billing mode of a contract
type Type string

const (
	TypeAntecipado Type = "ANTECIPADO" // Billed in advance
	TypeMedicao    Type = "MEDICAO"    // Billed from approved measurements
	TypeAutomatico Type = "AUTOMATICO" // Billed periodically from active items
)

// IsValid checks if the type is a known contract type
func (t Type) IsValid() bool {
	switch t {
	case TypeAntecipado, TypeMedicao, TypeAutomatico:
		return true
	}
	return false
}

// Contract is a rental agreement between a tenant and a customer.
// It owns its items.
type Contract struct {
	shared.TenantAggregateRoot
	ContractNumber string
	CustomerID     uuid.UUID
	CustomerName   string
	Status         Status
	Type           Type
	StartDate      time.Time
	EndDate        *time.Time
	Notes          string
	StatusReason   string
	DeletedAt      *time.Time
	Items          []ContractItem
}

// NewContract creates a DRAFT contract
func NewContract(tenantID uuid.UUID, number string, customerID uuid.UUID, customerName string, typ Type, startDate time.Time, endDate *time.Time) (*Contract, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Contract number is required").WithField("contractNumber")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer is required").WithField("customerId")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown contract type %q", typ).WithField("type")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Start date is required").WithField("startDate")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "End date cannot be before start date").WithField("endDate")
	}

	c := &Contract{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContractNumber:      number,
		CustomerID:          customerID,
		CustomerName:        strings.TrimSpace(customerName),
		Status:              StatusDraft,
		Type:                typ,
		StartDate:           startDate,
		EndDate:             endDate,
		Items:               make([]ContractItem, 0),
	}
	c.AddDomainEvent(NewContractCreatedEvent(c))
	return c, nil
}

// NewItemInput carries the attributes of an item being added to a contract
type NewItemInput struct {
	AssetID       uuid.UUID
	AssetCode     string
	DailyRate     decimal.Decimal
	MonthlyRate   *decimal.Decimal
	StartDate     time.Time
	EndDate       *time.Time
	DepartureDate *time.Time
	Notes         string
}

// AddItem places an asset on the contract. When the contract is ACTIVE the
// returned transitions rent the asset.
func (c *Contract) AddItem(in NewItemInput) (*ContractItem, []AssetTransition, error) {
	if !c.Status.AcceptsItems() {
		return nil, nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot add items to a %s contract", c.Status)
	}
	if in.AssetID == uuid.Nil {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "Asset is required").WithField("assetId")
	}
	if in.DailyRate.IsNegative() {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidAmount, "Daily rate cannot be negative").WithField("dailyRate")
	}
	if in.MonthlyRate != nil && in.MonthlyRate.IsNegative() {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidAmount, "Monthly rate cannot be negative").WithField("monthlyRate")
	}
	if in.StartDate.IsZero() {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "Start date is required").WithField("startDate")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "End date cannot be before start date").WithField("endDate")
	}
	for _, existing := range c.Items {
		if existing.IsActive && existing.AssetID == in.AssetID {
			return nil, nil, shared.NewDomainErrorf(shared.CodeAlreadyExists, "Asset %s is already on this contract", in.AssetCode)
		}
	}

	item := newContractItem(c, in)
	c.Items = append(c.Items, *item)
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractItemAddedEvent(c, item))

	var transitions []AssetTransition
	if c.Status == StatusActive {
		transitions = []AssetTransition{{
			AssetID: item.AssetID,
			ItemID:  item.ID,
			To:      asset.StatusRented,
			Reason:  "Added to active contract " + c.ContractNumber,
		}}
	}
	return item, transitions, nil
}

// RemoveItem deactivates an item, stamps its end date and releases its asset
// regardless of the contract status.
func (c *Contract) RemoveItem(itemID uuid.UUID) (*ContractItem, AssetTransition, error) {
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, AssetTransition{}, shared.NewDomainError(shared.CodeContractItemNotFound, "Contract item not found").WithField("itemId")
	}
	item := &c.Items[idx]
	if !item.IsActive {
		return nil, AssetTransition{}, shared.NewDomainError(shared.CodeInvalidState, "Contract item was already removed")
	}

	now := time.Now()
	item.IsActive = false
	item.EndDate = &now
	item.UpdatedAt = now

	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractItemRemovedEvent(c, item))

	return item, AssetTransition{
		AssetID: item.AssetID,
		ItemID:  item.ID,
		To:      asset.StatusAvailable,
		Reason:  "Removed from contract " + c.ContractNumber,
	}, nil
}

// ItemDates carries movement dates recorded against an item after it was
// placed. Nil fields keep the stored value.
type ItemDates struct {
	DepartureDate *time.Time
	ReturnDate    *time.Time
}

// RecordItemDates stamps when an item's asset left the yard and when it came
// back. The return date caps billing and cannot fall before the item's floor.
func (c *Contract) RecordItemDates(itemID uuid.UUID, dates ItemDates) (*ContractItem, error) {
	if c.IsDeleted() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Contract is cancelled")
	}
	if dates.DepartureDate == nil && dates.ReturnDate == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "A departure or return date is required")
	}
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, shared.NewDomainError(shared.CodeContractItemNotFound, "Contract item not found").WithField("itemId")
	}
	item := &c.Items[idx]
	if !item.IsActive {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Contract item was removed")
	}

	departure, ret := item.DepartureDate, item.ReturnDate
	if dates.DepartureDate != nil {
		departure = dates.DepartureDate
	}
	if dates.ReturnDate != nil {
		ret = dates.ReturnDate
	}
	floor := item.StartDate
	if departure != nil {
		floor = *departure
	}
	if ret != nil && billing.DateOf(*ret).Before(billing.DateOf(floor)) {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput,
			"Return date %s is before the billing start %s", ret.Format(time.DateOnly), floor.Format(time.DateOnly)).WithField("returnDate")
	}

	item.DepartureDate = departure
	item.ReturnDate = ret
	item.UpdatedAt = time.Now()

	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractItemDatesRecordedEvent(c, item))
	return item, nil
}

// ChangeStatus moves the contract to newStatus and returns the asset
// transitions the move implies. Entering CANCELLED stamps DeletedAt.
func (c *Contract) ChangeStatus(newStatus Status, reason string) ([]AssetTransition, error) {
	if err := c.Status.CanTransitionTo(newStatus); err != nil {
		return nil, err
	}

	transitions := PlanAssetTransitions(c, c.Items, newStatus)

	from := c.Status
	c.Status = newStatus
	c.StatusReason = strings.TrimSpace(reason)
	if newStatus == StatusCancelled {
		now := time.Now()
		c.DeletedAt = &now
	}
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractStatusChangedEvent(c, from, len(transitions)))

	return transitions, nil
}

// Cancel soft-deletes the contract
func (c *Contract) Cancel(reason string) ([]AssetTransition, error) {
	return c.ChangeStatus(StatusCancelled, reason)
}

// FindItem returns the item with itemID, active or not
func (c *Contract) FindItem(itemID uuid.UUID) (*ContractItem, bool) {
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, false
	}
	return &c.Items[idx], true
}

// ActiveItem returns the active item with itemID
func (c *Contract) ActiveItem(itemID uuid.UUID) (*ContractItem, bool) {
	item, ok := c.FindItem(itemID)
	if !ok || !item.IsActive {
		return nil, false
	}
	return item, true
}

// ActiveItems returns items that still participate in billing
func (c *Contract) ActiveItems() []ContractItem {
	active := make([]ContractItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.IsActive {
			active = append(active, item)
		}
	}
	return active
}

// IsDeleted reports whether the contract was cancelled
func (c *Contract) IsDeleted() bool {
	return c.DeletedAt != nil
}

func (c *Contract) itemIndex(itemID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
