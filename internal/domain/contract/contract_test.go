package contract

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestContract(t *testing.T) *Contract {
	c, err := NewContract(uuid.New(), "CTR-2026-000001", uuid.New(), "Acme Construções", TypeAntecipado, day(2026, 3, 1), nil)
	require.NoError(t, err)
	return c
}

func addTestItem(t *testing.T, c *Contract) *ContractItem {
	item, _, err := c.AddItem(NewItemInput{
		AssetID:   uuid.New(),
		AssetCode: "GEN-" + uuid.NewString()[:4],
		DailyRate: decimal.NewFromInt(150),
		StartDate: day(2026, 3, 1),
	})
	require.NoError(t, err)
	return item
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestNewContract(t *testing.T) {
	t.Run("creates draft", func(t *testing.T) {
		c := createTestContract(t)
		assert.Equal(t, StatusDraft, c.Status)
		assert.Empty(t, c.Items)
		assert.Nil(t, c.DeletedAt)
	})

	t.Run("validates input", func(t *testing.T) {
		end := day(2026, 2, 1)
		_, err := NewContract(uuid.New(), "C1", uuid.New(), "x", TypeMedicao, day(2026, 3, 1), &end)
		requireCode(t, err, shared.CodeInvalidInput)

		_, err = NewContract(uuid.New(), "C1", uuid.New(), "x", Type("MONTHLY"), day(2026, 3, 1), nil)
		requireCode(t, err, shared.CodeInvalidInput)

		_, err = NewContract(uuid.New(), "C1", uuid.Nil, "x", TypeMedicao, day(2026, 3, 1), nil)
		requireCode(t, err, shared.CodeInvalidInput)
	})
}

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusDraft, StatusActive, StatusSuspended, StatusTerminated, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			err := from.CanTransitionTo(to)
			switch {
			case from == to:
				requireCode(t, err, shared.CodeSameStatus)
			case from == StatusCancelled:
				requireCode(t, err, shared.CodeInvalidTransition)
			default:
				assert.NoError(t, err, "%s -> %s", from, to)
			}
		}
	}
}

func TestContract_AddItem(t *testing.T) {
	t.Run("draft contract does not rent the asset", func(t *testing.T) {
		c := createTestContract(t)

		item, transitions, err := c.AddItem(NewItemInput{
			AssetID:   uuid.New(),
			AssetCode: "GEN-001",
			DailyRate: decimal.NewFromInt(150),
			StartDate: day(2026, 3, 1),
		})

		require.NoError(t, err)
		assert.True(t, item.IsActive)
		assert.Equal(t, c.ID, item.ContractID)
		assert.Equal(t, c.TenantID, item.TenantID)
		assert.Empty(t, transitions)
		assert.Len(t, c.Items, 1)
	})

	t.Run("active contract rents the asset", func(t *testing.T) {
		c := createTestContract(t)
		_, err := c.ChangeStatus(StatusActive, "")
		require.NoError(t, err)

		item, transitions, err := c.AddItem(NewItemInput{
			AssetID:   uuid.New(),
			DailyRate: decimal.NewFromInt(80),
			StartDate: day(2026, 3, 5),
		})

		require.NoError(t, err)
		require.Len(t, transitions, 1)
		assert.Equal(t, item.AssetID, transitions[0].AssetID)
		assert.Equal(t, asset.StatusRented, transitions[0].To)
	})

	t.Run("rejects the same asset twice", func(t *testing.T) {
		c := createTestContract(t)
		item := addTestItem(t, c)

		_, _, err := c.AddItem(NewItemInput{AssetID: item.AssetID, DailyRate: decimal.NewFromInt(1), StartDate: day(2026, 3, 1)})
		requireCode(t, err, shared.CodeAlreadyExists)
	})

	t.Run("rejects items on terminated contract", func(t *testing.T) {
		c := createTestContract(t)
		_, err := c.ChangeStatus(StatusTerminated, "")
		require.NoError(t, err)

		_, _, err = c.AddItem(NewItemInput{AssetID: uuid.New(), DailyRate: decimal.NewFromInt(1), StartDate: day(2026, 3, 1)})
		requireCode(t, err, shared.CodeInvalidState)
	})
}

func TestContract_RemoveItem(t *testing.T) {
	c := createTestContract(t)
	item := addTestItem(t, c)

	removed, transition, err := c.RemoveItem(item.ID)

	require.NoError(t, err)
	assert.False(t, removed.IsActive)
	require.NotNil(t, removed.EndDate)
	assert.Equal(t, asset.StatusAvailable, transition.To)
	assert.Equal(t, item.AssetID, transition.AssetID)
	assert.Empty(t, c.ActiveItems())

	_, _, err = c.RemoveItem(item.ID)
	requireCode(t, err, shared.CodeInvalidState)

	_, _, err = c.RemoveItem(uuid.New())
	requireCode(t, err, shared.CodeContractItemNotFound)
}

func TestContract_RecordItemDates(t *testing.T) {
	ptr := func(t time.Time) *time.Time { return &t }

	t.Run("return date caps proration", func(t *testing.T) {
		c := createTestContract(t)
		item := addTestItem(t, c)
		version := c.Version
		c.ClearDomainEvents()

		updated, err := c.RecordItemDates(item.ID, ItemDates{ReturnDate: ptr(day(2026, 3, 21))})

		require.NoError(t, err)
		require.NotNil(t, updated.ReturnDate)
		assert.Equal(t, version+1, c.Version)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeContractItemDates, c.GetDomainEvents()[0].EventType())

		got := updated.Prorate(mustPeriod(t), 0)
		assert.Equal(t, 20, got.TotalDays)
		assert.True(t, got.Value.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("departure and return can be recorded separately", func(t *testing.T) {
		c := createTestContract(t)
		item := addTestItem(t, c)

		_, err := c.RecordItemDates(item.ID, ItemDates{DepartureDate: ptr(day(2026, 3, 5))})
		require.NoError(t, err)
		updated, err := c.RecordItemDates(item.ID, ItemDates{ReturnDate: ptr(day(2026, 3, 15))})
		require.NoError(t, err)

		assert.Equal(t, day(2026, 3, 5), *updated.DepartureDate)
		assert.Equal(t, 10, updated.Prorate(mustPeriod(t), 0).TotalDays)
	})

	t.Run("return before the floor is rejected", func(t *testing.T) {
		c := createTestContract(t)
		item := addTestItem(t, c)
		_, err := c.RecordItemDates(item.ID, ItemDates{DepartureDate: ptr(day(2026, 3, 10))})
		require.NoError(t, err)

		_, err = c.RecordItemDates(item.ID, ItemDates{ReturnDate: ptr(day(2026, 3, 9))})

		requireCode(t, err, shared.CodeInvalidInput)
		stored, ok := c.FindItem(item.ID)
		require.True(t, ok)
		assert.Nil(t, stored.ReturnDate)
	})

	t.Run("rejects empty input, unknown and removed items", func(t *testing.T) {
		c := createTestContract(t)
		item := addTestItem(t, c)

		_, err := c.RecordItemDates(item.ID, ItemDates{})
		requireCode(t, err, shared.CodeInvalidInput)

		_, err = c.RecordItemDates(uuid.New(), ItemDates{ReturnDate: ptr(day(2026, 3, 9))})
		requireCode(t, err, shared.CodeContractItemNotFound)

		_, _, err = c.RemoveItem(item.ID)
		require.NoError(t, err)
		_, err = c.RecordItemDates(item.ID, ItemDates{ReturnDate: ptr(day(2026, 3, 9))})
		requireCode(t, err, shared.CodeInvalidState)
	})
}

func TestContract_ChangeStatus_FanOut(t *testing.T) {
	c := createTestContract(t)
	first := addTestItem(t, c)
	second := addTestItem(t, c)
	removed := addTestItem(t, c)
	_, _, err := c.RemoveItem(removed.ID)
	require.NoError(t, err)

	transitions, err := c.ChangeStatus(StatusActive, "signed")
	require.NoError(t, err)
	require.Len(t, transitions, 2)
	assert.ElementsMatch(t, []uuid.UUID{first.AssetID, second.AssetID},
		[]uuid.UUID{transitions[0].AssetID, transitions[1].AssetID})
	for _, tr := range transitions {
		assert.Equal(t, asset.StatusRented, tr.To)
	}

	_, err = c.ChangeStatus(StatusActive, "")
	requireCode(t, err, shared.CodeSameStatus)

	transitions, err = c.Cancel("customer withdrew")
	require.NoError(t, err)
	require.Len(t, transitions, 2)
	for _, tr := range transitions {
		assert.Equal(t, asset.StatusAvailable, tr.To)
	}
	assert.Equal(t, StatusCancelled, c.Status)
	assert.NotNil(t, c.DeletedAt)
	assert.True(t, c.IsDeleted())
	assert.Equal(t, "customer withdrew", c.StatusReason)

	_, err = c.ChangeStatus(StatusActive, "")
	requireCode(t, err, shared.CodeInvalidTransition)
}

func TestPlanAssetTransitions(t *testing.T) {
	c := createTestContract(t)
	sharedAsset := uuid.New()
	items := []ContractItem{
		{ID: uuid.New(), AssetID: uuid.New(), IsActive: true},
		{ID: uuid.New(), AssetID: uuid.New(), IsActive: false},
		{ID: uuid.New(), AssetID: sharedAsset, IsActive: true},
		{ID: uuid.New(), AssetID: sharedAsset, IsActive: true},
	}

	tests := []struct {
		status Status
		want   int
		to     asset.Status
	}{
		{StatusActive, 2, asset.StatusRented},
		{StatusTerminated, 2, asset.StatusAvailable},
		{StatusCancelled, 2, asset.StatusAvailable},
		{StatusSuspended, 0, ""},
		{StatusDraft, 0, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := PlanAssetTransitions(c, items, tt.status)
			require.Len(t, got, tt.want)
			for _, tr := range got {
				assert.Equal(t, tt.to, tr.To)
				assert.NotEqual(t, items[1].AssetID, tr.AssetID)
			}
		})
	}
}

func TestContractItem_Prorate(t *testing.T) {
	c := createTestContract(t)
	item := addTestItem(t, c)

	p := item.Prorate(mustPeriod(t), 0)

	assert.Equal(t, 30, p.TotalDays)
	assert.True(t, p.Value.Equal(decimal.NewFromInt(4500)))
}
