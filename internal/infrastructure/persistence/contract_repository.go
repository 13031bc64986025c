package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository implements contract.Repository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

func preloadContractItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// FindByID loads a contract with all of its items, removed ones included
func (r *GormContractRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Preload("Items", preloadContractItems).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of contracts and the total count
func (r *GormContractRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter contract.Filter) ([]contract.Contract, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContractModel{}).Scopes(TenantScope(tenantID))

	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(contract_number) LIKE ? OR LOWER(customer_name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.ContractModel
	if err := query.
		Preload("Items", preloadContractItems).
		Scopes(Paginate(filter.Filter, ContractSortFields, "created_at")).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}

	out := make([]contract.Contract, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts the contract header and its items
func (r *GormContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	return translateError(r.db.WithContext(ctx).Create(models.ContractModelFromDomain(c)).Error)
}

// Save writes the header under a version guard and upserts every item it owns
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	model := models.ContractModelFromDomain(c)
	items := model.Items

	db := r.db.WithContext(ctx)
	err := updateVersioned(db.Model(&models.ContractModel{}), c.TenantID, c.ID, c.Version, map[string]any{
		"customer_name": c.CustomerName,
		"status":        string(c.Status),
		"end_date":      c.EndDate,
		"notes":         c.Notes,
		"status_reason": c.StatusReason,
		"deleted_at":    c.DeletedAt,
		"updated_at":    c.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"end_date", "departure_date", "return_date", "is_active", "notes", "updated_at"}),
	}).Create(&items).Error
	return translateError(err)
}

var _ contract.Repository = (*GormContractRepository)(nil)
