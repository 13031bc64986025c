package invoice

import (
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the collection status of an invoice
type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusOverdue       Status = "OVERDUE"
	StatusCancelled     Status = "CANCELLED"
	StatusInAgreement   Status = "IN_AGREEMENT" // Renegotiated with the customer
	StatusWrittenOff    Status = "WRITTEN_OFF"
)

// IsValid checks if the status is a known invoice status
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusPartiallyPaid, StatusPaid, StatusOverdue,
		StatusCancelled, StatusInAgreement, StatusWrittenOff:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is closed
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusWrittenOff
}

// CanReceivePayment returns true if payments can be applied in this status.
// A settled invoice is closed, so it takes no further payments.
func (s Status) CanReceivePayment() bool {
	switch s {
	case StatusOpen, StatusPartiallyPaid, StatusOverdue, StatusInAgreement:
		return true
	case StatusPaid, StatusCancelled, StatusWrittenOff:
		return false
	}
	return false
}

// IsManual reports whether the status is set by an operator rather than
// derived from payments or due dates.
func (s Status) IsManual() bool {
	return s == StatusCancelled || s == StatusInAgreement || s == StatusWrittenOff
}

// CanTransitionTo validates an operator-driven status change.
// Payment-derived statuses cannot be set directly.
func (s Status) CanTransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown invoice status %q", target).WithField("status")
	}
	if s == target {
		return shared.NewDomainErrorf(shared.CodeSameStatus, "Invoice is already %s", s)
	}
	if !target.IsManual() {
		return shared.NewDomainErrorf(shared.CodeInvalidTransition, "Status %s is derived from payments and cannot be set directly", target)
	}
	if s.IsTerminal() {
		return shared.NewDomainErrorf(shared.CodeInvalidTransition, "Invoice is %s and cannot change status", s)
	}
	return nil
}

// DeriveStatus maps accumulated payments to a status:
// paid >= amount is PAID, 0 < paid < amount is PARTIALLY_PAID, otherwise OPEN.
func DeriveStatus(paid, amount decimal.Decimal) Status {
	switch {
	case paid.GreaterThanOrEqual(amount) && paid.IsPositive():
		return StatusPaid
	case paid.IsPositive():
		return StatusPartiallyPaid
	default:
		return StatusOpen
	}
}
