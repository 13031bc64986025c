package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/shopspring/decimal"
)

// MeasurementModel is the persistence model for the Measurement aggregate root.
type MeasurementModel struct {
	TenantAggregateModel
	MeasurementNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_measurements_tenant_number,priority:2"`
	ContractID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null"`
	CustomerName      string          `gorm:"type:varchar(200)"`
	PeriodStart       time.Time       `gorm:"type:date;not null"`
	PeriodEnd         time.Time       `gorm:"type:date;not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	TotalValue        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes             string          `gorm:"type:text"`
	ApprovedAt        *time.Time
	ApprovedBy        *uuid.UUID `gorm:"type:uuid"`
	InvoiceID         *uuid.UUID `gorm:"type:uuid;index"`
	InvoicedAt        *time.Time
	Items             []MeasurementItemModel `gorm:"foreignKey:MeasurementID;references:ID"`
}

// TableName returns the table name for GORM
func (MeasurementModel) TableName() string {
	return "measurements"
}

// ToDomain converts the persistence model to a domain Measurement.
func (m *MeasurementModel) ToDomain() *measurement.Measurement {
	out := &measurement.Measurement{
		MeasurementNumber: m.MeasurementNumber,
		ContractID:        m.ContractID,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		PeriodStart:       m.PeriodStart,
		PeriodEnd:         m.PeriodEnd,
		Status:            measurement.Status(m.Status),
		TotalValue:        m.TotalValue,
		Notes:             m.Notes,
		ApprovedAt:        m.ApprovedAt,
		ApprovedBy:        m.ApprovedBy,
		InvoiceID:         m.InvoiceID,
		InvoicedAt:        m.InvoicedAt,
		Items:             make([]measurement.MeasurementItem, len(m.Items)),
	}
	if s, ok := measurement.ParseStatus(m.Status); ok {
		out.Status = s
	}
	m.toRoot(&out.TenantAggregateRoot)
	for i := range m.Items {
		out.Items[i] = m.Items[i].ToDomain()
	}
	return out
}

func (m *MeasurementModel) FromDomain(d *measurement.Measurement) {
	m.fromRoot(d.TenantAggregateRoot)
	m.MeasurementNumber = d.MeasurementNumber
	m.ContractID = d.ContractID
	m.CustomerID = d.CustomerID
	m.CustomerName = d.CustomerName
	m.PeriodStart = d.PeriodStart
	m.PeriodEnd = d.PeriodEnd
	m.Status = string(d.Status)
	m.TotalValue = d.TotalValue
	m.Notes = d.Notes
	m.ApprovedAt = d.ApprovedAt
	m.ApprovedBy = d.ApprovedBy
	m.InvoiceID = d.InvoiceID
	m.InvoicedAt = d.InvoicedAt
	m.Items = make([]MeasurementItemModel, len(d.Items))
	for i, it := range d.Items {
		m.Items[i] = MeasurementItemModel{
			ID:             it.ID,
			TenantID:       it.TenantID,
			MeasurementID:  it.MeasurementID,
			ContractItemID: it.ContractItemID,
			AssetID:        it.AssetID,
			AssetCode:      it.AssetCode,
			PeriodStart:    it.PeriodStart,
			PeriodEnd:      it.PeriodEnd,
			TotalDays:      it.TotalDays,
			ExcludedDays:   it.ExcludedDays,
			ExcludedReason: it.ExcludedReason,
			BilledDays:     it.BilledDays,
			DailyRate:      it.DailyRate,
			TotalValue:     it.TotalValue,
		}
	}
}

func MeasurementModelFromDomain(d *measurement.Measurement) *MeasurementModel {
	m := &MeasurementModel{}
	m.FromDomain(d)
	return m
}

// MeasurementItemModel is one prorated line of a measurement.
type MeasurementItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	MeasurementID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContractItemID uuid.UUID       `gorm:"type:uuid"`
	AssetID        uuid.UUID       `gorm:"type:uuid"`
	AssetCode      string          `gorm:"type:varchar(50)"`
	PeriodStart    time.Time       `gorm:"type:date;not null"`
	PeriodEnd      time.Time       `gorm:"type:date;not null"`
	TotalDays      int             `gorm:"not null;default:0"`
	ExcludedDays   int             `gorm:"not null;default:0"`
	ExcludedReason string          `gorm:"type:text"`
	BilledDays     int             `gorm:"not null;default:0"`
	DailyRate      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalValue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

func (MeasurementItemModel) TableName() string {
	return "measurement_items"
}

func (m *MeasurementItemModel) ToDomain() measurement.MeasurementItem {
	return measurement.MeasurementItem{
		ID:             m.ID,
		TenantID:       m.TenantID,
		MeasurementID:  m.MeasurementID,
		ContractItemID: m.ContractItemID,
		AssetID:        m.AssetID,
		AssetCode:      m.AssetCode,
		PeriodStart:    m.PeriodStart,
		PeriodEnd:      m.PeriodEnd,
		TotalDays:      m.TotalDays,
		ExcludedDays:   m.ExcludedDays,
		ExcludedReason: m.ExcludedReason,
		BilledDays:     m.BilledDays,
		DailyRate:      m.DailyRate,
		TotalValue:     m.TotalValue,
	}
}

// AllModels lists every rental model in dependency order for AutoMigrate.
func AllModels() []any {
	return []any{
		&AssetModel{},
		&AssetStatusHistoryModel{},
		&ContractModel{},
		&ContractItemModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&InvoicePaymentModel{},
		&MeasurementModel{},
		&MeasurementItemModel{},
	}
}
