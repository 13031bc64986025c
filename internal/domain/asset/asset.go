package asset

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of a rentable asset
type Status string

const (
	StatusAvailable      Status = "AVAILABLE"
	StatusRented         Status = "RENTED"
	StatusInMaintenance  Status = "IN_MAINTENANCE"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusDecommissioned Status = "DECOMMISSIONED" // Terminal
)

// AllStatuses lists every asset status in display order.
var AllStatuses = []Status{
	StatusAvailable,
	StatusRented,
	StatusInMaintenance,
	StatusInTransit,
	StatusDecommissioned,
}

// IsValid checks if the status is a known asset status
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusInMaintenance, StatusInTransit, StatusDecommissioned:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once no further transition is accepted
func (s Status) IsTerminal() bool {
	return s == StatusDecommissioned
}

// CanTransitionTo validates a move from s to target.
// A self-transition is rejected with SAME_STATUS; leaving DECOMMISSIONED is
// rejected with INVALID_TRANSITION.
func (s Status) CanTransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown asset status %q", target).WithField("newStatus")
	}
	if s == target {
		return shared.NewDomainErrorf(shared.CodeSameStatus, "Asset is already %s", s)
	}
	switch s {
	case StatusDecommissioned:
		return shared.NewDomainErrorf(shared.CodeInvalidTransition, "Asset is decommissioned and cannot move to %s", target)
	case StatusAvailable, StatusRented, StatusInMaintenance, StatusInTransit:
		return nil
	}
	return shared.NewDomainErrorf(shared.CodeInvalidState, "Asset has unknown status %q", s)
}

// Asset is a rentable unit owned by a tenant
type Asset struct {
	shared.TenantAggregateRoot
	Code      string
	Name      string
	Status    Status
	DailyRate decimal.Decimal
	IsDeleted bool
	DeletedAt *time.Time
}

// NewAsset creates an AVAILABLE asset
func NewAsset(tenantID uuid.UUID, code, name string, dailyRate decimal.Decimal) (*Asset, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Asset code is required").WithField("code")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Asset code cannot exceed 50 characters").WithField("code")
	}
	if dailyRate.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Daily rate cannot be negative").WithField("dailyRate")
	}

	a := &Asset{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                strings.TrimSpace(name),
		Status:              StatusAvailable,
		DailyRate:           dailyRate,
	}
	a.AddDomainEvent(NewAssetCreatedEvent(a))
	return a, nil
}

// ChangeStatus moves the asset to newStatus and returns the history row
// recording the transition. The caller persists both in one unit.
func (a *Asset) ChangeStatus(newStatus Status, reason string, changedBy *uuid.UUID) (*StatusHistory, error) {
	if err := a.Status.CanTransitionTo(newStatus); err != nil {
		return nil, err
	}

	from := a.Status
	a.Status = newStatus
	a.Touch()
	a.IncrementVersion()

	h := NewStatusHistory(a, from, newStatus, reason, changedBy)
	a.AddDomainEvent(NewAssetStatusChangedEvent(a, from, reason))
	return h, nil
}

// Decommission moves the asset to the terminal DECOMMISSIONED status and
// sets the soft-delete flag.
func (a *Asset) Decommission(reason string, changedBy *uuid.UUID) (*StatusHistory, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Decommission reason is required").WithField("reason")
	}
	h, err := a.ChangeStatus(StatusDecommissioned, reason, changedBy)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	a.IsDeleted = true
	a.DeletedAt = &now
	return h, nil
}

// UpdateRate changes the default daily rate
func (a *Asset) UpdateRate(dailyRate decimal.Decimal) error {
	if dailyRate.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Daily rate cannot be negative").WithField("dailyRate")
	}
	a.DailyRate = dailyRate
	a.Touch()
	a.IncrementVersion()
	return nil
}

// IsRentable reports whether the asset can be placed on a contract
func (a *Asset) IsRentable() bool {
	return !a.IsDeleted && a.Status != StatusDecommissioned
}
