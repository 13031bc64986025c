package measurement

import (
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

func createTestMeasurement(t *testing.T, excluded int, reason string) *Measurement {
	period, err := billing.NewPeriod(day(2026, 3, 1), day(2026, 3, 31))
	require.NoError(t, err)
	lines := []billing.Line{{
		ContractItemID: uuid.New(),
		AssetID:        uuid.New(),
		AssetCode:      "CRANE-7",
		Proration:      billing.Prorate(period, billing.ItemWindow{StartDate: day(2026, 3, 11)}, decimal.NewFromInt(200), excluded),
		ExcludedReason: reason,
	}}
	m, err := NewMeasurement(Header{
		TenantID:          uuid.New(),
		MeasurementNumber: "MED-2026-000001",
		ContractID:        uuid.New(),
		CustomerID:        uuid.New(),
	}, period, lines)
	require.NoError(t, err)
	return m
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("pending")
	assert.True(t, ok)
	assert.Equal(t, StatusDraft, s)

	_, ok = ParseStatus("closed")
	assert.False(t, ok)
}

func TestNewMeasurement(t *testing.T) {
	m := createTestMeasurement(t, 2, "rain")

	assert.Equal(t, StatusDraft, m.Status)
	require.Len(t, m.Items, 1)
	assert.Equal(t, 20, m.Items[0].TotalDays)
	assert.Equal(t, 18, m.Items[0].BilledDays)
	assert.True(t, m.TotalValue.Equal(decimal.NewFromInt(3600)))
	assert.Equal(t, m.ID, m.Items[0].MeasurementID)
}

func TestNewMeasurement_RequiresExclusionReason(t *testing.T) {
	period, _ := billing.NewPeriod(day(2026, 3, 1), day(2026, 3, 31))
	_, err := NewMeasurement(Header{MeasurementNumber: "M1", ContractID: uuid.New()}, period, []billing.Line{{
		Proration: billing.Prorate(period, billing.ItemWindow{StartDate: day(2026, 3, 1)}, decimal.NewFromInt(1), 3),
	}})
	requireCode(t, err, shared.CodeExclusionReasonRequired)
}

func TestMeasurement_Lifecycle(t *testing.T) {
	m := createTestMeasurement(t, 0, "")

	requireCode(t, m.MarkInvoiced(uuid.New()), shared.CodeInvalidTransition)

	approver := uuid.New()
	require.NoError(t, m.Approve(&approver))
	assert.Equal(t, StatusApproved, m.Status)
	assert.Equal(t, &approver, m.ApprovedBy)
	requireCode(t, m.Approve(nil), shared.CodeSameStatus)

	invoiceID := uuid.New()
	require.NoError(t, m.MarkInvoiced(invoiceID))
	assert.Equal(t, StatusInvoiced, m.Status)
	assert.Equal(t, invoiceID, *m.InvoiceID)
	requireCode(t, m.Approve(nil), shared.CodeInvalidTransition)
	assert.Len(t, m.GetDomainEvents(), 2)
}

func TestMeasurement_Lines(t *testing.T) {
	m := createTestMeasurement(t, 4, "maintenance")

	lines := m.Lines()

	require.Len(t, lines, 1)
	assert.Equal(t, m.Items[0].ContractItemID, lines[0].ContractItemID)
	assert.Equal(t, 16, lines[0].Proration.BilledDays)
	assert.True(t, lines[0].Proration.Value.Equal(m.Items[0].TotalValue))
	assert.Equal(t, "maintenance", lines[0].ExcludedReason)
}
