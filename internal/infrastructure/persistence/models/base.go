package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
)

// BaseModel holds the id and timestamp columns. Contract items embed it
// directly; they have no version of their own and are written through their
// contract.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TenantAggregateModel is the header row of an asset, contract, invoice or
// measurement. Updates match on the previous Version and bump it by one.
type TenantAggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null;default:1"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

func (m *TenantAggregateModel) fromRoot(r shared.TenantAggregateRoot) {
	m.ID = r.ID
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
	m.Version = r.Version
	m.TenantID = r.TenantID
	m.CreatedBy = r.CreatedBy
}

func (m *TenantAggregateModel) toRoot(r *shared.TenantAggregateRoot) {
	r.ID = m.ID
	r.CreatedAt = m.CreatedAt
	r.UpdatedAt = m.UpdatedAt
	r.Version = m.Version
	r.TenantID = m.TenantID
	r.CreatedBy = m.CreatedBy
}
