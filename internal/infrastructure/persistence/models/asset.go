package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/shopspring/decimal"
)

// AssetModel is the persistence model for the Asset aggregate root.
type AssetModel struct {
	TenantAggregateModel
	Code      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_assets_tenant_code,priority:2"`
	Name      string          `gorm:"type:varchar(200)"`
	Status    string          `gorm:"type:varchar(30);not null;default:'AVAILABLE';index"`
	DailyRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsDeleted bool            `gorm:"not null;default:false"`
	DeletedAt *time.Time
}

// TableName returns the table name for GORM
func (AssetModel) TableName() string {
	return "assets"
}

// ToDomain converts the persistence model to a domain Asset.
func (m *AssetModel) ToDomain() *asset.Asset {
	a := &asset.Asset{
		Code:      m.Code,
		Name:      m.Name,
		Status:    asset.Status(m.Status),
		DailyRate: m.DailyRate,
		IsDeleted: m.IsDeleted,
		DeletedAt: m.DeletedAt,
	}
	m.toRoot(&a.TenantAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Asset.
func (m *AssetModel) FromDomain(a *asset.Asset) {
	m.fromRoot(a.TenantAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Status = string(a.Status)
	m.DailyRate = a.DailyRate
	m.IsDeleted = a.IsDeleted
	m.DeletedAt = a.DeletedAt
}

// AssetModelFromDomain creates a new persistence model from a domain Asset.
func AssetModelFromDomain(a *asset.Asset) *AssetModel {
	m := &AssetModel{}
	m.FromDomain(a)
	return m
}

// AssetStatusHistoryModel is one append-only row per asset status change.
type AssetStatusHistoryModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssetID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_asset_history_asset_changed,priority:1"`
	FromStatus string     `gorm:"type:varchar(30);not null"`
	ToStatus   string     `gorm:"type:varchar(30);not null"`
	Reason     string     `gorm:"type:text"`
	ChangedBy  *uuid.UUID `gorm:"type:uuid"`
	ChangedAt  time.Time  `gorm:"not null;index:idx_asset_history_asset_changed,priority:2"`
}

func (AssetStatusHistoryModel) TableName() string {
	return "asset_status_history"
}

func (m *AssetStatusHistoryModel) ToDomain() asset.StatusHistory {
	return asset.StatusHistory{
		ID:         m.ID,
		TenantID:   m.TenantID,
		AssetID:    m.AssetID,
		FromStatus: asset.Status(m.FromStatus),
		ToStatus:   asset.Status(m.ToStatus),
		Reason:     m.Reason,
		ChangedBy:  m.ChangedBy,
		ChangedAt:  m.ChangedAt,
	}
}

func AssetStatusHistoryModelFromDomain(h *asset.StatusHistory) *AssetStatusHistoryModel {
	return &AssetStatusHistoryModel{
		ID:         h.ID,
		TenantID:   h.TenantID,
		AssetID:    h.AssetID,
		FromStatus: string(h.FromStatus),
		ToStatus:   string(h.ToStatus),
		Reason:     h.Reason,
		ChangedBy:  h.ChangedBy,
		ChangedAt:  h.ChangedAt,
	}
}
