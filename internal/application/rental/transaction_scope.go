package rental

import (
	"context"

	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/measurement"
)

// TransactionScope runs a unit of work against repositories that share one
// database transaction. An error from fn rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the rental repositories bound to the
// current transaction.
//
// Contract status changes and item add/remove touch both Contracts and Assets,
// so both must come from the same scope. Sequences allocates document numbers
// inside the transaction that inserts the document.
type TransactionalRepositories interface {
	Assets() asset.Repository
	Contracts() contract.Repository
	Invoices() invoice.Repository
	Measurements() measurement.Repository
	Sequences() billing.SequenceAllocator
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Used by unit tests.
type NoOpTransactionScope struct {
	assets       asset.Repository
	contracts    contract.Repository
	invoices     invoice.Repository
	measurements measurement.Repository
	sequences    billing.SequenceAllocator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope.
func NewNoOpTransactionScope(
	assets asset.Repository,
	contracts contract.Repository,
	invoices invoice.Repository,
	measurements measurement.Repository,
	sequences billing.SequenceAllocator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		assets:       assets,
		contracts:    contracts,
		invoices:     invoices,
		measurements: measurements,
		sequences:    sequences,
	}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Assets() asset.Repository             { return s.assets }
func (s *NoOpTransactionScope) Contracts() contract.Repository       { return s.contracts }
func (s *NoOpTransactionScope) Invoices() invoice.Repository         { return s.invoices }
func (s *NoOpTransactionScope) Measurements() measurement.Repository { return s.measurements }
func (s *NoOpTransactionScope) Sequences() billing.SequenceAllocator { return s.sequences }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
