package asset

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// Repository persists assets and their status history
type Repository interface {
	// FindByID returns the asset or a NOT_FOUND domain error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Asset, error)
	// FindByIDs returns the assets found among ids, keyed by ID
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Asset, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Asset, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	// Create inserts a new asset
	Create(ctx context.Context, a *Asset) error
	// Save writes a changed asset. The stored version must be a.Version-1,
	// otherwise CONCURRENT_MODIFICATION is returned.
	Save(ctx context.Context, a *Asset) error
	// SaveHistory appends one status history row
	SaveHistory(ctx context.Context, h *StatusHistory) error
	FindHistory(ctx context.Context, tenantID, assetID uuid.UUID) ([]StatusHistory, error)
}

// Filter narrows asset listings
type Filter struct {
	shared.Filter
	Status         *Status
	IncludeDeleted bool
}
