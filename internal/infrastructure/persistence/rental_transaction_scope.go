package persistence

import (
	"context"

	"github.com/rentflow/backend/internal/application/rental"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/measurement"
	"gorm.io/gorm"
)

// GormTransactionScope implements rental.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db          *gorm.DB
	numberWidth int
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, numberWidth int) *GormTransactionScope {
	return &GormTransactionScope{db: db, numberWidth: numberWidth}
}

// Execute runs fn inside one database transaction. An error or panic in fn
// rolls the transaction back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos rental.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, numberWidth: s.numberWidth})
	})
}

type gormTransactionalRepositories struct {
	tx          *gorm.DB
	numberWidth int
}

func (r *gormTransactionalRepositories) Assets() asset.Repository {
	return NewGormAssetRepository(r.tx)
}

func (r *gormTransactionalRepositories) Contracts() contract.Repository {
	return NewGormContractRepository(r.tx)
}

func (r *gormTransactionalRepositories) Invoices() invoice.Repository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Measurements() measurement.Repository {
	return NewGormMeasurementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sequences() billing.SequenceAllocator {
	return NewGormSequenceAllocator(r.tx, r.numberWidth)
}

var (
	_ rental.TransactionScope          = (*GormTransactionScope)(nil)
	_ rental.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
