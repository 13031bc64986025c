package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one contract item's billed slice on an invoice.
// Immutable once the invoice is created.
type InvoiceItem struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	InvoiceID      uuid.UUID
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
	CreatedAt      time.Time
}

func newInvoiceItem(inv *Invoice, line billing.Line) InvoiceItem {
	p := line.Proration
	return InvoiceItem{
		ID:             uuid.New(),
		TenantID:       inv.TenantID,
		InvoiceID:      inv.ID,
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
		CreatedAt:      inv.CreatedAt,
	}
}

// InvoicePayment is one append-only payment event
type InvoicePayment struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	InvoiceID   uuid.UUID
	PaymentDate time.Time
	Amount      decimal.Decimal
	Method      string
	Reference   string
	Notes       string
	RecordedBy  *uuid.UUID
	CreatedAt   time.Time
}

func newInvoicePayment(inv *Invoice, in PaymentInput) *InvoicePayment {
	return &InvoicePayment{
		ID:          uuid.New(),
		TenantID:    inv.TenantID,
		InvoiceID:   inv.ID,
		PaymentDate: in.PaymentDate,
		Amount:      in.Amount,
		Method:      strings.TrimSpace(in.Method),
		Reference:   strings.TrimSpace(in.Reference),
		Notes:       in.Notes,
		RecordedBy:  in.RecordedBy,
		CreatedAt:   time.Now(),
	}
}

// SumPayments totals the amounts of payments
func SumPayments(payments []InvoicePayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
