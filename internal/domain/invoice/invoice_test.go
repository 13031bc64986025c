package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testHeader() Header {
	return Header{
		TenantID:      uuid.New(),
		InvoiceNumber: "INV-2026-000001",
		CustomerID:    uuid.New(),
		CustomerName:  "Acme",
		IssueDate:     day(2026, 4, 1),
		DueDate:       day(2026, 4, 15),
	}
}

func createTestInvoice(t *testing.T, amount int64) *Invoice {
	inv, err := NewDirectInvoice(testHeader(), decimal.NewFromInt(amount))
	require.NoError(t, err)
	return inv
}

func pay(amount int64) PaymentInput {
	return PaymentInput{Amount: decimal.NewFromInt(amount), PaymentDate: day(2026, 4, 10), Method: "PIX"}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

// ============================================
// Status Tests
// ============================================

func TestDeriveStatus(t *testing.T) {
	amount := decimal.NewFromInt(1000)
	tests := []struct {
		paid int64
		want Status
	}{
		{0, StatusOpen},
		{1, StatusPartiallyPaid},
		{999, StatusPartiallyPaid},
		{1000, StatusPaid},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveStatus(decimal.NewFromInt(tt.paid), amount), "paid=%d", tt.paid)
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	requireCode(t, StatusOpen.CanTransitionTo(StatusOpen), shared.CodeSameStatus)
	requireCode(t, StatusOpen.CanTransitionTo(StatusPaid), shared.CodeInvalidTransition)
	requireCode(t, StatusPaid.CanTransitionTo(StatusWrittenOff), shared.CodeInvalidTransition)
	requireCode(t, StatusCancelled.CanTransitionTo(StatusInAgreement), shared.CodeInvalidTransition)
	requireCode(t, StatusOpen.CanTransitionTo("VOID"), shared.CodeInvalidInput)

	assert.NoError(t, StatusOverdue.CanTransitionTo(StatusInAgreement))
	assert.NoError(t, StatusInAgreement.CanTransitionTo(StatusWrittenOff))
	assert.NoError(t, StatusOpen.CanTransitionTo(StatusCancelled))
}

// ============================================
// Creation Tests
// ============================================

func TestNewDirectInvoice(t *testing.T) {
	t.Run("creates open invoice", func(t *testing.T) {
		inv := createTestInvoice(t, 1000)

		assert.Equal(t, StatusOpen, inv.Status)
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Nil(t, inv.ContractID)
		require.Len(t, inv.GetDomainEvents(), 1)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewDirectInvoice(testHeader(), decimal.Zero)
		requireCode(t, err, shared.CodeInvalidAmount)
	})

	t.Run("rejects due date before issue date", func(t *testing.T) {
		h := testHeader()
		h.DueDate = day(2026, 3, 1)
		_, err := NewDirectInvoice(h, decimal.NewFromInt(10))
		requireCode(t, err, shared.CodeInvalidInput)
	})
}

func TestNewBilledInvoice(t *testing.T) {
	period, err := billing.NewPeriod(day(2026, 3, 1), day(2026, 3, 31))
	require.NoError(t, err)
	rate := decimal.NewFromInt(150)
	contractID := uuid.New()

	t.Run("sums prorated lines", func(t *testing.T) {
		lines := []billing.Line{
			{ContractItemID: uuid.New(), AssetCode: "GEN-1", Proration: billing.Prorate(period, billing.ItemWindow{StartDate: day(2026, 3, 1)}, rate, 0)},
			{ContractItemID: uuid.New(), AssetCode: "GEN-2", Proration: billing.Prorate(period, billing.ItemWindow{StartDate: day(2026, 3, 1)}, rate, 5), ExcludedReason: "downtime"},
		}

		inv, err := NewBilledInvoice(testHeader(), contractID, period, lines)

		require.NoError(t, err)
		assert.True(t, inv.Amount.Equal(decimal.NewFromInt(4500+3750)), inv.Amount.String())
		assert.Equal(t, contractID, *inv.ContractID)
		require.Len(t, inv.Items, 2)
		assert.Equal(t, 25, inv.Items[1].BilledDays)
		assert.Equal(t, "downtime", inv.Items[1].ExcludedReason)
		assert.Equal(t, inv.ID, inv.Items[0].InvoiceID)

		got, ok := inv.Period()
		require.True(t, ok)
		assert.Equal(t, period, got)
	})

	t.Run("rejects missing exclusion reason", func(t *testing.T) {
		lines := []billing.Line{{ContractItemID: uuid.New(), Proration: billing.Prorate(period, billing.ItemWindow{StartDate: day(2026, 3, 1)}, rate, 5)}}

		_, err := NewBilledInvoice(testHeader(), contractID, period, lines)
		requireCode(t, err, shared.CodeExclusionReasonRequired)
	})

	t.Run("rejects empty selection", func(t *testing.T) {
		_, err := NewBilledInvoice(testHeader(), contractID, period, nil)
		requireCode(t, err, shared.CodeInvalidInput)
	})
}

// ============================================
// Payment Tests
// ============================================

func TestStatus_CanReceivePayment(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusPartiallyPaid, StatusOverdue, StatusInAgreement} {
		assert.True(t, s.CanReceivePayment(), s)
	}
	for _, s := range []Status{StatusPaid, StatusCancelled, StatusWrittenOff} {
		assert.False(t, s.CanReceivePayment(), s)
	}
}

func TestInvoice_AddPayment(t *testing.T) {
	t.Run("partial then overpay then settle", func(t *testing.T) {
		inv := createTestInvoice(t, 1000)

		_, err := inv.AddPayment(pay(600))
		require.NoError(t, err)
		assert.Equal(t, StatusPartiallyPaid, inv.Status)

		_, err = inv.AddPayment(pay(500))
		requireCode(t, err, shared.CodeOverpayment)
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(600)))
		assert.Len(t, inv.Payments, 1)

		_, err = inv.AddPayment(pay(400))
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, inv.Status)
		assert.NotNil(t, inv.PaidAt)
		assert.True(t, SumPayments(inv.Payments).Equal(inv.PaidAmount))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		inv := createTestInvoice(t, 100)
		_, err := inv.AddPayment(pay(0))
		requireCode(t, err, shared.CodeInvalidAmount)
		_, err = inv.AddPayment(pay(-5))
		requireCode(t, err, shared.CodeInvalidAmount)
	})

	t.Run("rejects any payment on a paid invoice", func(t *testing.T) {
		inv := createTestInvoice(t, 100)
		_, err := inv.AddPayment(pay(100))
		require.NoError(t, err)
		_, err = inv.AddPayment(PaymentInput{Amount: decimal.RequireFromString("0.01"), PaymentDate: day(2026, 4, 11)})
		requireCode(t, err, shared.CodeInvalidState)
		assert.Len(t, inv.Payments, 1)
		assert.Equal(t, StatusPaid, inv.Status)
	})

	t.Run("overdue invoice accepts payments and status is re-derived", func(t *testing.T) {
		inv := createTestInvoice(t, 100)
		require.True(t, inv.MarkOverdue(day(2026, 5, 1)))

		_, err := inv.AddPayment(pay(30))
		require.NoError(t, err)
		assert.Equal(t, StatusPartiallyPaid, inv.Status)
	})

	t.Run("cancelled invoice rejects payments", func(t *testing.T) {
		inv := createTestInvoice(t, 100)
		require.NoError(t, inv.ChangeStatus(StatusCancelled, "issued by mistake"))
		_, err := inv.AddPayment(pay(10))
		requireCode(t, err, shared.CodeInvalidState)
	})

	t.Run("paid amount is monotonic and bounded", func(t *testing.T) {
		inv := createTestInvoice(t, 1000)
		prev := inv.PaidAmount
		for _, amt := range []int64{100, 2000, 250, 700, 650, 1} {
			_, _ = inv.AddPayment(pay(amt))
			assert.True(t, inv.PaidAmount.GreaterThanOrEqual(prev))
			assert.True(t, inv.PaidAmount.LessThanOrEqual(inv.Amount))
			assert.Equal(t, DeriveStatus(inv.PaidAmount, inv.Amount), inv.Status)
			prev = inv.PaidAmount
		}
	})
}

// ============================================
// Overdue and manual status Tests
// ============================================

func TestInvoice_MarkOverdue(t *testing.T) {
	inv := createTestInvoice(t, 100) // due 2026-04-15

	assert.False(t, inv.MarkOverdue(day(2026, 4, 15).Add(20*time.Hour)))
	assert.True(t, inv.MarkOverdue(day(2026, 4, 16)))
	assert.Equal(t, StatusOverdue, inv.Status)
	assert.False(t, inv.MarkOverdue(day(2026, 4, 17)), "idempotent")

	partial := createTestInvoice(t, 100)
	_, err := partial.AddPayment(pay(10))
	require.NoError(t, err)
	assert.False(t, partial.MarkOverdue(day(2026, 6, 1)), "only OPEN invoices flip")
}

func TestInvoice_ChangeStatus(t *testing.T) {
	t.Run("cannot cancel with payments", func(t *testing.T) {
		inv := createTestInvoice(t, 100)
		_, err := inv.AddPayment(pay(10))
		require.NoError(t, err)
		requireCode(t, inv.ChangeStatus(StatusCancelled, "oops"), shared.CodeInvalidState)
	})

	t.Run("write-off requires reason", func(t *testing.T) {
		inv := createTestInvoice(t, 100)
		requireCode(t, inv.ChangeStatus(StatusWrittenOff, ""), shared.CodeInvalidInput)
		require.NoError(t, inv.ChangeStatus(StatusWrittenOff, "customer insolvent"))
		assert.Equal(t, "customer insolvent", inv.StatusReason)
	})

	t.Run("agreement needs no reason", func(t *testing.T) {
		inv := createTestInvoice(t, 100)
		require.NoError(t, inv.ChangeStatus(StatusInAgreement, ""))
		assert.Equal(t, StatusInAgreement, inv.Status)
	})
}

// ============================================
// Overlap Guard Tests
// ============================================

type stubPeriods struct {
	periods []billing.Period
	err     error
}

func (s stubPeriods) FindBillingPeriods(context.Context, uuid.UUID, uuid.UUID) ([]billing.Period, error) {
	return s.periods, s.err
}

func TestOverlapGuard_Check(t *testing.T) {
	march := billing.Period{Start: day(2026, 3, 1), End: day(2026, 3, 31)}
	guard := NewOverlapGuard(stubPeriods{periods: []billing.Period{march}})
	ctx := context.Background()

	err := guard.Check(ctx, uuid.New(), uuid.New(), billing.Period{Start: day(2026, 3, 15), End: day(2026, 4, 15)})
	requireCode(t, err, shared.CodePeriodOverlap)

	assert.NoError(t, guard.Check(ctx, uuid.New(), uuid.New(), billing.Period{Start: day(2026, 4, 1), End: day(2026, 4, 30)}))

	failing := NewOverlapGuard(stubPeriods{err: errors.New("db down")})
	err = failing.Check(ctx, uuid.New(), uuid.New(), march)
	require.Error(t, err)
	var de *shared.DomainError
	assert.False(t, errors.As(err, &de))
}
