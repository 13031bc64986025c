package measurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// Repository persists measurements with their items
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Measurement, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Measurement, int64, error)
	// Create inserts the header and all items
	Create(ctx context.Context, m *Measurement) error
	// Update persists header changes guarded by the aggregate version
	Update(ctx context.Context, m *Measurement) error
}

// Filter narrows measurement listings
type Filter struct {
	shared.Filter
	Status     *Status
	ContractID *uuid.UUID
}
