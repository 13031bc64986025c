package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice statuses that still expect money from the customer
var openInvoiceStatuses = []string{"OPEN", "PARTIALLY_PAID", "OVERDUE", "IN_AGREEMENT"}

// GormSnapshotProvider aggregates rental tables directly for the gauges
type GormSnapshotProvider struct {
	db *gorm.DB
}

// NewGormSnapshotProvider creates a GormSnapshotProvider
func NewGormSnapshotProvider(db *gorm.DB) *GormSnapshotProvider {
	return &GormSnapshotProvider{db: db}
}

// ActiveTenantIDs returns every tenant that owns at least one asset or invoice
func (p *GormSnapshotProvider) ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Raw("SELECT tenant_id FROM assets UNION SELECT tenant_id FROM invoices").
		Scan(&ids).Error
	return ids, err
}

// AssetCountsByStatus counts non-deleted assets per status
func (p *GormSnapshotProvider) AssetCountsByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := p.db.WithContext(ctx).
		Table("assets").
		Select("status, COUNT(*) AS total").
		Where("tenant_id = ? AND is_deleted = ?", tenantID, false).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// OpenInvoices counts open invoices per status and sums what is still owed
func (p *GormSnapshotProvider) OpenInvoices(ctx context.Context, tenantID uuid.UUID) (OpenInvoiceSummary, error) {
	type row struct {
		Status      string
		Total       int64
		Outstanding decimal.Decimal
	}
	var rows []row
	err := p.db.WithContext(ctx).
		Table("invoices").
		Select("status, COUNT(*) AS total, COALESCE(SUM(amount - paid_amount), 0) AS outstanding").
		Where("tenant_id = ? AND status IN ?", tenantID, openInvoiceStatuses).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return OpenInvoiceSummary{}, err
	}

	summary := OpenInvoiceSummary{
		CountByStatus: make(map[string]int64, len(rows)),
		Outstanding:   decimal.Zero,
	}
	for _, r := range rows {
		summary.CountByStatus[r.Status] = r.Total
		summary.Outstanding = summary.Outstanding.Add(r.Outstanding)
	}
	return summary, nil
}
