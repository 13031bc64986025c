package invoice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
)

// PeriodReader lists the billing periods already invoiced for a contract
type PeriodReader interface {
	FindBillingPeriods(ctx context.Context, tenantID, contractID uuid.UUID) ([]billing.Period, error)
}

// OverlapGuard rejects a billing period that intersects any period already
// invoiced for the same contract. It is a fast-fail check; the exclusion
// constraint on the invoices table is the actual guarantee.
type OverlapGuard struct {
	periods PeriodReader
}

// NewOverlapGuard creates an OverlapGuard
func NewOverlapGuard(periods PeriodReader) *OverlapGuard {
	return &OverlapGuard{periods: periods}
}

// Check returns a PERIOD_OVERLAP domain error on collision
func (g *OverlapGuard) Check(ctx context.Context, tenantID, contractID uuid.UUID, proposed billing.Period) error {
	existing, err := g.periods.FindBillingPeriods(ctx, tenantID, contractID)
	if err != nil {
		return fmt.Errorf("load billed periods: %w", err)
	}
	if hit, ok := billing.FindOverlap(proposed, existing); ok {
		return shared.NewDomainErrorf(shared.CodePeriodOverlap,
			"Billing period %s overlaps already invoiced period %s", proposed, hit).WithField("billingPeriodStart")
	}
	return nil
}
