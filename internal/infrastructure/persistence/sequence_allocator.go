package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"gorm.io/gorm"
)

type sequenceSource struct {
	table  string
	column string
}

var sequenceSources = map[billing.DocumentKind]sequenceSource{
	billing.DocumentInvoice:     {table: "invoices", column: "invoice_number"},
	billing.DocumentContract:    {table: "contracts", column: "contract_number"},
	billing.DocumentMeasurement: {table: "measurements", column: "measurement_number"},
}

// GormSequenceAllocator derives document numbers from the numbers already
// stored for the tenant and year. On PostgreSQL it takes a transaction-scoped
// advisory lock per tenant and prefix, so it must run inside the transaction
// that inserts the document.
type GormSequenceAllocator struct {
	db    *gorm.DB
	width int
}

// NewGormSequenceAllocator creates a GormSequenceAllocator. A non-positive
// width falls back to billing.DefaultSequenceWidth.
func NewGormSequenceAllocator(db *gorm.DB, width int) *GormSequenceAllocator {
	if width <= 0 {
		width = billing.DefaultSequenceWidth
	}
	return &GormSequenceAllocator{db: db, width: width}
}

// Next returns the number after the highest existing suffix for the prefix.
// The whole set is scanned rather than ordered by text, since "INV-2026-1000000"
// sorts before "INV-2026-999999" lexically.
func (a *GormSequenceAllocator) Next(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, year int) (string, error) {
	src, ok := sequenceSources[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	prefix := kind.Prefix(year)
	db := a.db.WithContext(ctx)

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", tenantID.String()+":"+prefix).Error; err != nil {
			return "", fmt.Errorf("lock sequence %s: %w", prefix, err)
		}
	}

	var existing []string
	if err := db.Table(src.table).
		Scopes(TenantScope(tenantID)).
		Where(src.column+" LIKE ?", prefix+"%").
		Pluck(src.column, &existing).Error; err != nil {
		return "", translateError(err)
	}
	return billing.NextSequence(prefix, existing, a.width), nil
}

var _ billing.SequenceAllocator = (*GormSequenceAllocator)(nil)
