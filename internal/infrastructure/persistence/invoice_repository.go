package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindBillingPeriods lists the periods of non-cancelled invoices for a contract
func (r *GormInvoiceRepository) FindBillingPeriods(ctx context.Context, tenantID, contractID uuid.UUID) ([]billing.Period, error) {
	var rows []struct {
		BillingPeriodStart time.Time
		BillingPeriodEnd   time.Time
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(TenantScope(tenantID)).
		Select("billing_period_start, billing_period_end").
		Where("contract_id = ? AND status <> ?", contractID, string(invoice.StatusCancelled)).
		Where("billing_period_start IS NOT NULL AND billing_period_end IS NOT NULL").
		Order("billing_period_start ASC").
		Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	periods := make([]billing.Period, len(rows))
	for i, row := range rows {
		periods[i] = billing.Period{Start: row.BillingPeriodStart, End: row.BillingPeriodEnd}
	}
	return periods, nil
}

// FindByID loads an invoice with its items and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("asset_code ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payment_date ASC, created_at ASC") }).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of invoice headers and the total count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter invoice.Filter) ([]invoice.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(TenantScope(tenantID))

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(customer_name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.InvoiceModel
	if err := query.Scopes(Paginate(filter.Filter, InvoiceSortFields, "issue_date")).Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}

	out := make([]invoice.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts the invoice header and its items
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	return translateError(r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error)
}

// Update writes the mutable header columns. The row must still carry the
// version the aggregate was loaded with.
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	return updateVersioned(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), inv.TenantID, inv.ID, inv.Version, map[string]any{
		"paid_amount":    inv.PaidAmount,
		"status":         string(inv.Status),
		"status_reason":  inv.StatusReason,
		"paid_at":        inv.PaidAt,
		"measurement_id": inv.MeasurementID,
		"notes":          inv.Notes,
		"updated_at":     inv.UpdatedAt,
	})
}

// AddPayment appends a payment row
func (r *GormInvoiceRepository) AddPayment(ctx context.Context, p *invoice.InvoicePayment) error {
	return translateError(r.db.WithContext(ctx).Create(models.InvoicePaymentModelFromDomain(p)).Error)
}

// MarkOverdue flips every OPEN invoice due before the calendar day of asOf to
// OVERDUE and returns the invoices that changed.
func (r *GormInvoiceRepository) MarkOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]invoice.Invoice, error) {
	db := r.db.WithContext(ctx)

	var rows []models.InvoiceModel
	if err := db.Scopes(TenantScope(tenantID)).
		Where("status = ? AND due_date < ?", string(invoice.StatusOpen), invoice.StartOfDay(asOf)).
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	changed := make([]invoice.Invoice, 0, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		inv := rows[i].ToDomain()
		if inv.MarkOverdue(asOf) {
			changed = append(changed, *inv)
			ids = append(ids, inv.ID)
		}
	}
	if len(ids) == 0 {
		return changed, nil
	}

	if err := db.Model(&models.InvoiceModel{}).
		Scopes(TenantScope(tenantID)).
		Where("id IN ? AND status = ?", ids, string(invoice.StatusOpen)).
		Updates(map[string]any{
			"status":     string(invoice.StatusOverdue),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return nil, translateError(err)
	}
	return changed, nil
}

var _ invoice.Repository = (*GormInvoiceRepository)(nil)
