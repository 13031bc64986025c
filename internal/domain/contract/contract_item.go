package contract

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// ContractItem is one asset's participation in a contract
type ContractItem struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ContractID    uuid.UUID
	AssetID       uuid.UUID
	AssetCode     string
	DailyRate     decimal.Decimal
	MonthlyRate   *decimal.Decimal
	StartDate     time.Time
	EndDate       *time.Time
	DepartureDate *time.Time // Billing floor when set
	ReturnDate    *time.Time // Billing ceiling when set
	IsActive      bool
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func newContractItem(c *Contract, in NewItemInput) *ContractItem {
	now := time.Now()
	return &ContractItem{
		ID:            uuid.New(),
		TenantID:      c.TenantID,
		ContractID:    c.ID,
		AssetID:       in.AssetID,
		AssetCode:     strings.TrimSpace(in.AssetCode),
		DailyRate:     in.DailyRate,
		MonthlyRate:   in.MonthlyRate,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		DepartureDate: in.DepartureDate,
		IsActive:      true,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Window returns the item's active window for proration
func (i *ContractItem) Window() billing.ItemWindow {
	return billing.ItemWindow{
		StartDate:     i.StartDate,
		EndDate:       i.EndDate,
		DepartureDate: i.DepartureDate,
		ReturnDate:    i.ReturnDate,
	}
}

// Prorate prices the item over period
func (i *ContractItem) Prorate(period billing.Period, excludedDays int) billing.Proration {
	return billing.Prorate(period, i.Window(), i.DailyRate, excludedDays)
}
