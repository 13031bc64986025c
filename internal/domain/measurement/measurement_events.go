package measurement

import (
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeMeasurementApproved = "MeasurementApproved"
	EventTypeMeasurementInvoiced = "MeasurementInvoiced"

	AggregateTypeMeasurement = "Measurement"
)

// MeasurementApprovedEvent is raised when a measurement is approved for billing
type MeasurementApprovedEvent struct {
	shared.BaseDomainEvent
	MeasurementNumber string          `json:"measurement_number"`
	ContractID        uuid.UUID       `json:"contract_id"`
	TotalValue        decimal.Decimal `json:"total_value"`
}

// NewMeasurementApprovedEvent creates a new MeasurementApprovedEvent
func NewMeasurementApprovedEvent(m *Measurement) *MeasurementApprovedEvent {
	return &MeasurementApprovedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeMeasurementApproved, AggregateTypeMeasurement, m.ID, m.TenantID),
		MeasurementNumber: m.MeasurementNumber,
		ContractID:        m.ContractID,
		TotalValue:        m.TotalValue,
	}
}

// MeasurementInvoicedEvent is raised when an invoice is generated from a measurement
type MeasurementInvoicedEvent struct {
	shared.BaseDomainEvent
	MeasurementNumber string    `json:"measurement_number"`
	InvoiceID         uuid.UUID `json:"invoice_id"`
}

// NewMeasurementInvoicedEvent creates a new MeasurementInvoicedEvent
func NewMeasurementInvoicedEvent(m *Measurement) *MeasurementInvoicedEvent {
	return &MeasurementInvoicedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeMeasurementInvoiced, AggregateTypeMeasurement, m.ID, m.TenantID),
		MeasurementNumber: m.MeasurementNumber,
		InvoiceID:         *m.InvoiceID,
	}
}
