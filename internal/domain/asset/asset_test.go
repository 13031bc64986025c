package asset

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAsset(t *testing.T) *Asset {
	a, err := NewAsset(uuid.New(), "GEN-001", "Generator 150kVA", decimal.NewFromInt(150))
	require.NoError(t, err)
	return a
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

func TestStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("LOST").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			err := from.CanTransitionTo(to)
			switch {
			case from == to:
				requireCode(t, err, shared.CodeSameStatus)
			case from == StatusDecommissioned:
				requireCode(t, err, shared.CodeInvalidTransition)
			default:
				assert.NoError(t, err, "%s -> %s", from, to)
			}
		}
	}

	requireCode(t, StatusAvailable.CanTransitionTo("BROKEN"), shared.CodeInvalidInput)
}

// ============================================
// Asset Tests
// ============================================

func TestNewAsset(t *testing.T) {
	t.Run("creates available asset", func(t *testing.T) {
		a := createTestAsset(t)

		assert.Equal(t, StatusAvailable, a.Status)
		assert.Equal(t, "GEN-001", a.Code)
		assert.False(t, a.IsDeleted)
		require.Len(t, a.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeAssetCreated, a.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewAsset(uuid.New(), "  ", "x", decimal.Zero)
		requireCode(t, err, shared.CodeInvalidInput)
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := NewAsset(uuid.New(), "A-1", "x", decimal.NewFromInt(-1))
		requireCode(t, err, shared.CodeInvalidAmount)
	})
}

func TestAsset_ChangeStatus(t *testing.T) {
	t.Run("records history", func(t *testing.T) {
		a := createTestAsset(t)
		actor := uuid.New()
		a.ClearDomainEvents()

		h, err := a.ChangeStatus(StatusInMaintenance, "oil change", &actor)

		require.NoError(t, err)
		assert.Equal(t, StatusInMaintenance, a.Status)
		assert.Equal(t, StatusAvailable, h.FromStatus)
		assert.Equal(t, StatusInMaintenance, h.ToStatus)
		assert.Equal(t, a.ID, h.AssetID)
		assert.Equal(t, a.TenantID, h.TenantID)
		assert.Equal(t, &actor, h.ChangedBy)
		assert.Equal(t, "oil change", h.Reason)
		assert.Equal(t, 2, a.Version)

		events := a.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*AssetStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, StatusAvailable, ev.FromStatus)
		assert.Equal(t, StatusInMaintenance, ev.ToStatus)
	})

	t.Run("rejects no-op", func(t *testing.T) {
		a := createTestAsset(t)

		h, err := a.ChangeStatus(StatusAvailable, "", nil)

		requireCode(t, err, shared.CodeSameStatus)
		assert.Nil(t, h)
		assert.Equal(t, 1, a.Version)
	})
}

func TestAsset_Decommission(t *testing.T) {
	t.Run("sets terminal status and soft-delete flag", func(t *testing.T) {
		a := createTestAsset(t)

		h, err := a.Decommission("engine failure", nil)

		require.NoError(t, err)
		assert.Equal(t, StatusDecommissioned, a.Status)
		assert.Equal(t, StatusDecommissioned, h.ToStatus)
		assert.True(t, a.IsDeleted)
		assert.NotNil(t, a.DeletedAt)
		assert.False(t, a.IsRentable())
	})

	t.Run("requires reason", func(t *testing.T) {
		a := createTestAsset(t)
		_, err := a.Decommission("", nil)
		requireCode(t, err, shared.CodeInvalidInput)
		assert.Equal(t, StatusAvailable, a.Status)
	})

	t.Run("no change accepted afterwards", func(t *testing.T) {
		a := createTestAsset(t)
		_, err := a.Decommission("scrapped", nil)
		require.NoError(t, err)

		for _, s := range []Status{StatusAvailable, StatusRented, StatusInMaintenance, StatusInTransit} {
			_, err := a.ChangeStatus(s, "undo", nil)
			requireCode(t, err, shared.CodeInvalidTransition)
		}
		_, err = a.Decommission("again", nil)
		requireCode(t, err, shared.CodeSameStatus)
	})
}
