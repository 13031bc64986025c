package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// Repository persists contracts together with their items
type Repository interface {
	// FindByID loads the contract and all its items
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Contract, int64, error)
	// Create inserts a new contract with its items
	Create(ctx context.Context, c *Contract) error
	// Save writes the header under a version guard, then upserts every item.
	// A stale header returns CONCURRENT_MODIFICATION and writes nothing.
	Save(ctx context.Context, c *Contract) error
}

// Filter narrows contract listings
type Filter struct {
	shared.Filter
	Status         *Status
	CustomerID     *uuid.UUID
	IncludeDeleted bool
}
