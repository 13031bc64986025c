package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMeasurementRepository implements measurement.Repository using GORM
type GormMeasurementRepository struct {
	db *gorm.DB
}

// NewGormMeasurementRepository creates a new GormMeasurementRepository
func NewGormMeasurementRepository(db *gorm.DB) *GormMeasurementRepository {
	return &GormMeasurementRepository{db: db}
}

func (r *GormMeasurementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*measurement.Measurement, error) {
	var model models.MeasurementModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("asset_code ASC") }).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormMeasurementRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter measurement.Filter) ([]measurement.Measurement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MeasurementModel{}).Scopes(TenantScope(tenantID))
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.MeasurementModel
	if err := query.Scopes(Paginate(filter.Filter, MeasurementSortFields, "period_start")).Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}
	out := make([]measurement.Measurement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts the measurement and its items
func (r *GormMeasurementRepository) Create(ctx context.Context, m *measurement.Measurement) error {
	return translateError(r.db.WithContext(ctx).Create(models.MeasurementModelFromDomain(m)).Error)
}

// Update writes the workflow columns under a version guard
func (r *GormMeasurementRepository) Update(ctx context.Context, m *measurement.Measurement) error {
	return updateVersioned(r.db.WithContext(ctx).Model(&models.MeasurementModel{}), m.TenantID, m.ID, m.Version, map[string]any{
		"status":      string(m.Status),
		"approved_at": m.ApprovedAt,
		"approved_by": m.ApprovedBy,
		"invoice_id":  m.InvoiceID,
		"invoiced_at": m.InvoicedAt,
		"notes":       m.Notes,
		"updated_at":  m.UpdatedAt,
	})
}

var _ measurement.Repository = (*GormMeasurementRepository)(nil)
