package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Billing period columns carry a gist exclusion constraint per contract (see migrations).
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName       string          `gorm:"type:varchar(200)"`
	ContractID         *uuid.UUID      `gorm:"type:uuid;index"`
	MeasurementID      *uuid.UUID      `gorm:"type:uuid;index"`
	IssueDate          time.Time       `gorm:"type:date;not null"`
	DueDate            time.Time       `gorm:"type:date;not null;index"`
	BillingPeriodStart *time.Time      `gorm:"type:date"`
	BillingPeriodEnd   *time.Time      `gorm:"type:date"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status             string          `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	StatusReason       string          `gorm:"type:text"`
	Notes              string          `gorm:"type:text"`
	PaidAt             *time.Time
	Items              []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments           []InvoicePaymentModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		InvoiceNumber:      m.InvoiceNumber,
		CustomerID:         m.CustomerID,
		CustomerName:       m.CustomerName,
		ContractID:         m.ContractID,
		MeasurementID:      m.MeasurementID,
		IssueDate:          m.IssueDate,
		DueDate:            m.DueDate,
		BillingPeriodStart: m.BillingPeriodStart,
		BillingPeriodEnd:   m.BillingPeriodEnd,
		Amount:             m.Amount,
		PaidAmount:         m.PaidAmount,
		Status:             invoice.Status(m.Status),
		StatusReason:       m.StatusReason,
		Notes:              m.Notes,
		PaidAt:             m.PaidAt,
		Items:              make([]invoice.InvoiceItem, len(m.Items)),
		Payments:           make([]invoice.InvoicePayment, len(m.Payments)),
	}
	m.toRoot(&inv.TenantAggregateRoot)
	for i := range m.Items {
		inv.Items[i] = m.Items[i].ToDomain()
	}
	for i := range m.Payments {
		inv.Payments[i] = m.Payments[i].ToDomain()
	}
	return inv
}

// FromDomain populates the header and items. Payments are written separately.
func (m *InvoiceModel) FromDomain(inv *invoice.Invoice) {
	m.fromRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.ContractID = inv.ContractID
	m.MeasurementID = inv.MeasurementID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.BillingPeriodStart = inv.BillingPeriodStart
	m.BillingPeriodEnd = inv.BillingPeriodEnd
	m.Amount = inv.Amount
	m.PaidAmount = inv.PaidAmount
	m.Status = string(inv.Status)
	m.StatusReason = inv.StatusReason
	m.Notes = inv.Notes
	m.PaidAt = inv.PaidAt
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&inv.Items[i])
	}
}

func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is one prorated line of an invoice.
type InvoiceItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContractItemID uuid.UUID       `gorm:"type:uuid;index"`
	AssetID        uuid.UUID       `gorm:"type:uuid;index"`
	AssetCode      string          `gorm:"type:varchar(50)"`
	PeriodStart    time.Time       `gorm:"type:date;not null"`
	PeriodEnd      time.Time       `gorm:"type:date;not null"`
	TotalDays      int             `gorm:"not null;default:0"`
	ExcludedDays   int             `gorm:"not null;default:0"`
	ExcludedReason string          `gorm:"type:text"`
	BilledDays     int             `gorm:"not null;default:0"`
	DailyRate      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalValue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null"`
}

func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

func (m *InvoiceItemModel) ToDomain() invoice.InvoiceItem {
	return invoice.InvoiceItem{
		ID:             m.ID,
		TenantID:       m.TenantID,
		InvoiceID:      m.InvoiceID,
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
		CreatedAt:      m.CreatedAt,
	}
}

func InvoiceItemModelFromDomain(i *invoice.InvoiceItem) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:             i.ID,
		TenantID:       i.TenantID,
		InvoiceID:      i.InvoiceID,
		ContractItemID: i.ContractItemID,
		AssetID:        i.AssetID,
		AssetCode:      i.AssetCode,
		PeriodStart:    i.PeriodStart,
		PeriodEnd:      i.PeriodEnd,
		TotalDays:      i.TotalDays,
		ExcludedDays:   i.ExcludedDays,
		ExcludedReason: i.ExcludedReason,
		BilledDays:     i.BilledDays,
		DailyRate:      i.DailyRate,
		TotalValue:     i.TotalValue,
		CreatedAt:      i.CreatedAt,
	}
}

// InvoicePaymentModel is an append-only payment row.
type InvoicePaymentModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentDate time.Time       `gorm:"type:date;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method      string          `gorm:"type:varchar(30)"`
	Reference   string          `gorm:"type:varchar(100)"`
	Notes       string          `gorm:"type:text"`
	RecordedBy  *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time       `gorm:"not null"`
}

func (InvoicePaymentModel) TableName() string {
	return "invoice_payments"
}

func (m *InvoicePaymentModel) ToDomain() invoice.InvoicePayment {
	return invoice.InvoicePayment{
		ID:          m.ID,
		TenantID:    m.TenantID,
		InvoiceID:   m.InvoiceID,
		PaymentDate: m.PaymentDate,
		Amount:      m.Amount,
		Method:      m.Method,
		Reference:   m.Reference,
		Notes:       m.Notes,
		RecordedBy:  m.RecordedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func InvoicePaymentModelFromDomain(p *invoice.InvoicePayment) *InvoicePaymentModel {
	return &InvoicePaymentModel{
		ID:          p.ID,
		TenantID:    p.TenantID,
		InvoiceID:   p.InvoiceID,
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Method:      p.Method,
		Reference:   p.Reference,
		Notes:       p.Notes,
		RecordedBy:  p.RecordedBy,
		CreatedAt:   p.CreatedAt,
	}
}
