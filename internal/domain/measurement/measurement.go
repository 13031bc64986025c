package measurement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the status of a measurement
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusApproved Status = "APPROVED"
	StatusInvoiced Status = "INVOICED"
)

// ParseStatus accepts the canonical names plus PENDING as an alias of DRAFT
func ParseStatus(s string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DRAFT", "PENDING":
		return StatusDraft, true
	case "APPROVED":
		return StatusApproved, true
	case "INVOICED":
		return StatusInvoiced, true
	}
	return "", false
}

// CanTransitionTo validates DRAFT -> APPROVED -> INVOICED
func (s Status) CanTransitionTo(target Status) error {
	if s == target {
		return shared.NewDomainErrorf(shared.CodeSameStatus, "Measurement is already %s", s)
	}
	switch {
	case s == StatusDraft && target == StatusApproved:
		return nil
	case s == StatusApproved && target == StatusInvoiced:
		return nil
	}
	return shared.NewDomainErrorf(shared.CodeInvalidTransition, "Measurement cannot move from %s to %s", s, target)
}

// Measurement records billable usage of a contract over a period before it
// is turned into an invoice.
type Measurement struct {
	shared.TenantAggregateRoot
	MeasurementNumber string
	ContractID        uuid.UUID
	CustomerID        uuid.UUID
	CustomerName      string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Status            Status
	TotalValue        decimal.Decimal
	Notes             string
	ApprovedAt        *time.Time
	ApprovedBy        *uuid.UUID
	InvoiceID         *uuid.UUID
	InvoicedAt        *time.Time
	Items             []MeasurementItem
}

// Header carries the identifying attributes of a new measurement
type Header struct {
	TenantID          uuid.UUID
	MeasurementNumber string
	ContractID        uuid.UUID
	CustomerID        uuid.UUID
	CustomerName      string
	Notes             string
}

// NewMeasurement creates a DRAFT measurement from prorated lines
func NewMeasurement(h Header, period billing.Period, lines []billing.Line) (*Measurement, error) {
	if strings.TrimSpace(h.MeasurementNumber) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Measurement number is required").WithField("measurementNumber")
	}
	if h.ContractID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Contract is required").WithField("contractId")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one item is required").WithField("items")
	}

	m := &Measurement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(h.TenantID),
		MeasurementNumber:   strings.TrimSpace(h.MeasurementNumber),
		ContractID:          h.ContractID,
		CustomerID:          h.CustomerID,
		CustomerName:        h.CustomerName,
		PeriodStart:         period.Start,
		PeriodEnd:           period.End,
		Status:              StatusDraft,
		TotalValue:          decimal.Zero,
		Notes:               h.Notes,
		Items:               make([]MeasurementItem, 0, len(lines)),
	}
	for _, line := range lines {
		if err := billing.ValidateExclusion(line.Proration.ExcludedDays, line.ExcludedReason); err != nil {
			return nil, err
		}
		item := newMeasurementItem(m, line)
		m.Items = append(m.Items, item)
		m.TotalValue = m.TotalValue.Add(item.TotalValue)
	}
	return m, nil
}

// Period returns the measured period
func (m *Measurement) Period() billing.Period {
	return billing.Period{Start: m.PeriodStart, End: m.PeriodEnd}
}

// Approve moves a DRAFT measurement to APPROVED
func (m *Measurement) Approve(by *uuid.UUID) error {
	if err := m.Status.CanTransitionTo(StatusApproved); err != nil {
		return err
	}
	now := time.Now()
	m.Status = StatusApproved
	m.ApprovedAt = &now
	m.ApprovedBy = by
	m.Touch()
	m.IncrementVersion()
	m.AddDomainEvent(NewMeasurementApprovedEvent(m))
	return nil
}

// MarkInvoiced links the generated invoice and closes the measurement
func (m *Measurement) MarkInvoiced(invoiceID uuid.UUID) error {
	if err := m.Status.CanTransitionTo(StatusInvoiced); err != nil {
		return err
	}
	now := time.Now()
	m.Status = StatusInvoiced
	m.InvoiceID = &invoiceID
	m.InvoicedAt = &now
	m.Touch()
	m.IncrementVersion()
	m.AddDomainEvent(NewMeasurementInvoicedEvent(m))
	return nil
}

// Lines rebuilds billing lines from the measured items
func (m *Measurement) Lines() []billing.Line {
	lines := make([]billing.Line, 0, len(m.Items))
	for _, item := range m.Items {
		lines = append(lines, billing.Line{
			ContractItemID: item.ContractItemID,
			AssetID:        item.AssetID,
			AssetCode:      item.AssetCode,
			ExcludedReason: item.ExcludedReason,
			Proration: billing.Proration{
				BillingStart: item.PeriodStart,
				BillingEnd:   item.PeriodEnd,
				TotalDays:    item.TotalDays,
				ExcludedDays: item.ExcludedDays,
				BilledDays:   item.BilledDays,
				DailyRate:    item.DailyRate,
				Value:        item.TotalValue,
			},
		})
	}
	return lines
}

// MeasurementItem has the same proration shape as an invoice item
type MeasurementItem struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	MeasurementID  uuid.UUID
	ContractItemID uuid.UUID
	AssetID        uuid.UUID
	AssetCode      string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	TotalDays      int
	ExcludedDays   int
	ExcludedReason string
	BilledDays     int
	DailyRate      decimal.Decimal
	TotalValue     decimal.Decimal
}

func newMeasurementItem(m *Measurement, line billing.Line) MeasurementItem {
	p := line.Proration
	return MeasurementItem{
		ID:             uuid.New(),
		TenantID:       m.TenantID,
		MeasurementID:  m.ID,
		ContractItemID: line.ContractItemID,
		AssetID:        line.AssetID,
		AssetCode:      line.AssetCode,
		PeriodStart:    p.BillingStart,
		PeriodEnd:      p.BillingEnd,
		TotalDays:      p.TotalDays,
		ExcludedDays:   p.ExcludedDays,
		ExcludedReason: strings.TrimSpace(line.ExcludedReason),
		BilledDays:     p.BilledDays,
		DailyRate:      p.DailyRate,
		TotalValue:     p.Value,
	}
}
