package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// Repository persists invoices, their items and payments
type Repository interface {
	PeriodReader

	// FindByID loads the invoice with items and payments
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Invoice, int64, error)
	// Create inserts the header and all items
	Create(ctx context.Context, inv *Invoice) error
	// Update persists header changes guarded by the aggregate version
	Update(ctx context.Context, inv *Invoice) error
	// AddPayment appends one payment row
	AddPayment(ctx context.Context, p *InvoicePayment) error
	// MarkOverdue flips every OPEN invoice due before asOf to OVERDUE and
	// returns the affected invoices.
	MarkOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Invoice, error)
}

// Filter narrows invoice listings
type Filter struct {
	shared.Filter
	Status     *Status
	CustomerID *uuid.UUID
	ContractID *uuid.UUID
}
