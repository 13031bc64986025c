package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAssetRepository implements asset.Repository using GORM
type GormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository creates a new GormAssetRepository
func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// FindByID finds an asset by ID within a tenant
func (r *GormAssetRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*asset.Asset, error) {
	var model models.AssetModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several assets at once, keyed by ID. Missing IDs are simply absent.
func (r *GormAssetRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*asset.Asset, error) {
	result := make(map[uuid.UUID]*asset.Asset, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.AssetModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	for i := range rows {
		a := rows[i].ToDomain()
		result[a.ID] = a
	}
	return result, nil
}

// FindAll returns a page of assets and the total count
func (r *GormAssetRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter asset.Filter) ([]asset.Asset, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetModel{}).Scopes(TenantScope(tenantID))

	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.AssetModel
	if err := query.Scopes(Paginate(filter.Filter, AssetSortFields, "code")).Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}

	out := make([]asset.Asset, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// ExistsByCode reports whether a tenant already has an asset with the code
func (r *GormAssetRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AssetModel{}).
		Scopes(TenantScope(tenantID)).
		Where("code = ?", strings.TrimSpace(code)).
		Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// Create inserts a new asset
func (r *GormAssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	return translateError(r.db.WithContext(ctx).Create(models.AssetModelFromDomain(a)).Error)
}

// Save writes the mutable columns under a version guard
func (r *GormAssetRepository) Save(ctx context.Context, a *asset.Asset) error {
	return updateVersioned(r.db.WithContext(ctx).Model(&models.AssetModel{}), a.TenantID, a.ID, a.Version, map[string]any{
		"name":       a.Name,
		"status":     string(a.Status),
		"daily_rate": a.DailyRate,
		"is_deleted": a.IsDeleted,
		"deleted_at": a.DeletedAt,
		"updated_at": a.UpdatedAt,
	})
}

// SaveHistory appends a status history row
func (r *GormAssetRepository) SaveHistory(ctx context.Context, h *asset.StatusHistory) error {
	return translateError(r.db.WithContext(ctx).Create(models.AssetStatusHistoryModelFromDomain(h)).Error)
}

// FindHistory lists status changes for an asset, newest first
func (r *GormAssetRepository) FindHistory(ctx context.Context, tenantID, assetID uuid.UUID) ([]asset.StatusHistory, error) {
	var rows []models.AssetStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("asset_id = ?", assetID).
		Order("changed_at DESC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]asset.StatusHistory, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ asset.Repository = (*GormAssetRepository)(nil)
