package persistence

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// TenantScope restricts a query to one tenant. Every repository query goes through it.
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// Paginate applies ORDER BY, OFFSET and LIMIT from filter. The order column
// must appear in allowed, otherwise defaultField is used.
func Paginate(filter shared.Filter, allowed map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowed, defaultField)
		return db.Order(field + " " + ValidateSortOrder(filter.OrderDir)).
			Offset(filter.Offset()).
			Limit(filter.Limit())
	}
}

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var AssetSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"status":     true,
	"daily_rate": true,
}

var ContractSortFields = map[string]bool{
	"created_at":      true,
	"contract_number": true,
	"customer_name":   true,
	"status":          true,
	"start_date":      true,
}

var InvoiceSortFields = map[string]bool{
	"created_at":     true,
	"invoice_number": true,
	"customer_name":  true,
	"issue_date":     true,
	"due_date":       true,
	"amount":         true,
	"status":         true,
}

var MeasurementSortFields = map[string]bool{
	"created_at":         true,
	"measurement_number": true,
	"period_start":       true,
	"status":             true,
	"total_value":        true,
}

// updateVersioned applies columns to the row (tenantID, id) only when its
// stored version is version-1, and bumps it to version. A lost race shows up
// as zero affected rows.
func updateVersioned(db *gorm.DB, tenantID, id uuid.UUID, version int, columns map[string]any) error {
	columns["version"] = version
	result := db.Scopes(TenantScope(tenantID)).
		Where("id = ? AND version = ?", id, version-1).
		Updates(columns)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}
