package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice is a bill issued to a customer, optionally derived from a contract
// or an approved measurement. Amount is fixed at creation; PaidAmount only grows.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber      string
	CustomerID         uuid.UUID
	CustomerName       string
	ContractID         *uuid.UUID
	MeasurementID      *uuid.UUID
	IssueDate          time.Time
	DueDate            time.Time
	BillingPeriodStart *time.Time
	BillingPeriodEnd   *time.Time
	Amount             decimal.Decimal
	PaidAmount         decimal.Decimal
	Status             Status
	StatusReason       string
	Notes              string
	PaidAt             *time.Time
	Items              []InvoiceItem
	Payments           []InvoicePayment
}

// Header carries the attributes shared by every invoice creation flow
type Header struct {
	TenantID      uuid.UUID
	InvoiceNumber string
	CustomerID    uuid.UUID
	CustomerName  string
	IssueDate     time.Time
	DueDate       time.Time
	Notes         string
}

func (h Header) validate() error {
	if strings.TrimSpace(h.InvoiceNumber) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invoice number is required").WithField("invoiceNumber")
	}
	if h.CustomerID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Customer is required").WithField("customerId")
	}
	if h.IssueDate.IsZero() || h.DueDate.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Issue and due dates are required").WithField("dueDate")
	}
	if h.DueDate.Before(h.IssueDate) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Due date cannot be before issue date").WithField("dueDate")
	}
	return nil
}

func newInvoice(h Header, amount decimal.Decimal) *Invoice {
	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(h.TenantID),
		InvoiceNumber:       strings.TrimSpace(h.InvoiceNumber),
		CustomerID:          h.CustomerID,
		CustomerName:        strings.TrimSpace(h.CustomerName),
		IssueDate:           h.IssueDate,
		DueDate:             h.DueDate,
		Amount:              amount,
		PaidAmount:          decimal.Zero,
		Status:              StatusOpen,
		Notes:               h.Notes,
		Items:               make([]InvoiceItem, 0),
		Payments:            make([]InvoicePayment, 0),
	}
}

// NewDirectInvoice creates an invoice whose amount is supplied by the caller
func NewDirectInvoice(h Header, amount decimal.Decimal) (*Invoice, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Invoice amount must be positive").WithField("amount")
	}
	inv := newInvoice(h, amount)
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// NewBilledInvoice creates an invoice for a contract period from prorated
// lines. The amount is the sum of line values.
func NewBilledInvoice(h Header, contractID uuid.UUID, period billing.Period, lines []billing.Line) (*Invoice, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Contract is required").WithField("contractId")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one item is required").WithField("items")
	}

	inv := newInvoice(h, decimal.Zero)
	inv.ContractID = &contractID
	start, end := period.Start, period.End
	inv.BillingPeriodStart = &start
	inv.BillingPeriodEnd = &end

	total := decimal.Zero
	for _, line := range lines {
		if err := billing.ValidateExclusion(line.Proration.ExcludedDays, line.ExcludedReason); err != nil {
			return nil, err
		}
		item := newInvoiceItem(inv, line)
		inv.Items = append(inv.Items, item)
		total = total.Add(item.TotalValue)
	}
	inv.Amount = total

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// LinkMeasurement records the measurement this invoice was generated from
func (inv *Invoice) LinkMeasurement(measurementID uuid.UUID) {
	inv.MeasurementID = &measurementID
}

// Period returns the billing period, if the invoice has one
func (inv *Invoice) Period() (billing.Period, bool) {
	if inv.BillingPeriodStart == nil || inv.BillingPeriodEnd == nil {
		return billing.Period{}, false
	}
	return billing.Period{Start: *inv.BillingPeriodStart, End: *inv.BillingPeriodEnd}, true
}

// Outstanding returns the amount still owed
func (inv *Invoice) Outstanding() decimal.Decimal {
	return inv.Amount.Sub(inv.PaidAmount)
}

// PaymentInput carries one payment event
type PaymentInput struct {
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Reference   string
	Notes       string
	RecordedBy  *uuid.UUID
}

// AddPayment appends a payment and recomputes the status from the new paid
// total. Overpayment is rejected, never clamped.
func (inv *Invoice) AddPayment(in PaymentInput) (*InvoicePayment, error) {
	if !in.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount must be positive").WithField("amount")
	}
	if in.PaymentDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment date is required").WithField("paymentDate")
	}
	if !inv.Status.CanReceivePayment() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot record a payment on a %s invoice", inv.Status)
	}

	newPaid := inv.PaidAmount.Add(in.Amount)
	if newPaid.GreaterThan(inv.Amount) {
		return nil, shared.NewDomainErrorf(shared.CodeOverpayment,
			"Payment of %s exceeds the outstanding balance of %s by %s",
			in.Amount.StringFixed(2), inv.Outstanding().StringFixed(2), newPaid.Sub(inv.Amount).StringFixed(2)).WithField("amount")
	}

	payment := newInvoicePayment(inv, in)
	inv.Payments = append(inv.Payments, *payment)
	inv.PaidAmount = newPaid

	from := inv.Status
	inv.Status = DeriveStatus(inv.PaidAmount, inv.Amount)
	if inv.Status == StatusPaid {
		now := time.Now()
		inv.PaidAt = &now
	}
	inv.Touch()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, payment, from))

	return payment, nil
}

// IsPastDue reports whether the due date is before the calendar day of now
func (inv *Invoice) IsPastDue(now time.Time) bool {
	return inv.DueDate.Before(StartOfDay(now))
}

// MarkOverdue flips an OPEN invoice past its due date to OVERDUE.
// It returns false when nothing changed.
func (inv *Invoice) MarkOverdue(now time.Time) bool {
	if inv.Status != StatusOpen || !inv.IsPastDue(now) {
		return false
	}
	inv.Status = StatusOverdue
	inv.Touch()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))
	return true
}

// ChangeStatus applies an operator-driven status (CANCELLED, IN_AGREEMENT,
// WRITTEN_OFF). A cancelled invoice must not carry payments.
func (inv *Invoice) ChangeStatus(target Status, reason string) error {
	if err := inv.Status.CanTransitionTo(target); err != nil {
		return err
	}
	if target == StatusCancelled && inv.PaidAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot cancel an invoice that has payments")
	}
	if (target == StatusCancelled || target == StatusWrittenOff) && strings.TrimSpace(reason) == "" {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "A reason is required to set %s", target).WithField("reason")
	}

	from := inv.Status
	inv.Status = target
	inv.StatusReason = strings.TrimSpace(reason)
	inv.Touch()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, from))
	return nil
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
