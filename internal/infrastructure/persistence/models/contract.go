package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate root.
type ContractModel struct {
	TenantAggregateModel
	ContractNumber string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_contracts_tenant_number,priority:2"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerName   string     `gorm:"type:varchar(200)"`
	Status         string     `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Type           string     `gorm:"type:varchar(20);not null"`
	StartDate      time.Time  `gorm:"type:date;not null"`
	EndDate        *time.Time `gorm:"type:date"`
	Notes          string     `gorm:"type:text"`
	StatusReason   string     `gorm:"type:text"`
	DeletedAt      *time.Time
	Items          []ContractItemModel `gorm:"foreignKey:ContractID;references:ID"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract.
func (m *ContractModel) ToDomain() *contract.Contract {
	c := &contract.Contract{
		ContractNumber: m.ContractNumber,
		CustomerID:     m.CustomerID,
		CustomerName:   m.CustomerName,
		Status:         contract.Status(m.Status),
		Type:           contract.Type(m.Type),
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Notes:          m.Notes,
		StatusReason:   m.StatusReason,
		DeletedAt:      m.DeletedAt,
		Items:          make([]contract.ContractItem, len(m.Items)),
	}
	m.toRoot(&c.TenantAggregateRoot)
	for i := range m.Items {
		c.Items[i] = m.Items[i].ToDomain()
	}
	return c
}

// FromDomain populates the model, items included.
func (m *ContractModel) FromDomain(c *contract.Contract) {
	m.fromRoot(c.TenantAggregateRoot)
	m.ContractNumber = c.ContractNumber
	m.CustomerID = c.CustomerID
	m.CustomerName = c.CustomerName
	m.Status = string(c.Status)
	m.Type = string(c.Type)
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.Notes = c.Notes
	m.StatusReason = c.StatusReason
	m.DeletedAt = c.DeletedAt
	m.Items = make([]ContractItemModel, len(c.Items))
	for i := range c.Items {
		m.Items[i] = *ContractItemModelFromDomain(&c.Items[i])
	}
}

func ContractModelFromDomain(c *contract.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// ContractItemModel is one asset line on a contract.
type ContractItemModel struct {
	BaseModel
	TenantID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	ContractID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	AssetID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	AssetCode     string           `gorm:"type:varchar(50)"`
	DailyRate     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	MonthlyRate   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	StartDate     time.Time        `gorm:"type:date;not null"`
	EndDate       *time.Time       `gorm:"type:date"`
	DepartureDate *time.Time       `gorm:"type:date"`
	ReturnDate    *time.Time       `gorm:"type:date"`
	IsActive      bool             `gorm:"not null;default:true"`
	Notes         string           `gorm:"type:text"`
}

func (ContractItemModel) TableName() string {
	return "contract_items"
}

func (m *ContractItemModel) ToDomain() contract.ContractItem {
	return contract.ContractItem{
		ID:            m.ID,
		TenantID:      m.TenantID,
		ContractID:    m.ContractID,
		AssetID:       m.AssetID,
		AssetCode:     m.AssetCode,
		DailyRate:     m.DailyRate,
		MonthlyRate:   m.MonthlyRate,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		DepartureDate: m.DepartureDate,
		ReturnDate:    m.ReturnDate,
		IsActive:      m.IsActive,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ContractItemModelFromDomain(i *contract.ContractItem) *ContractItemModel {
	return &ContractItemModel{
		BaseModel: BaseModel{
			ID:        i.ID,
			CreatedAt: i.CreatedAt,
			UpdatedAt: i.UpdatedAt,
		},
		TenantID:      i.TenantID,
		ContractID:    i.ContractID,
		AssetID:       i.AssetID,
		AssetCode:     i.AssetCode,
		DailyRate:     i.DailyRate,
		MonthlyRate:   i.MonthlyRate,
		StartDate:     i.StartDate,
		EndDate:       i.EndDate,
		DepartureDate: i.DepartureDate,
		ReturnDate:    i.ReturnDate,
		IsActive:      i.IsActive,
		Notes:         i.Notes,
	}
}
