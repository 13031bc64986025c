package rental

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAsset(t *testing.T, code string) *asset.Asset {
	t.Helper()
	a, err := asset.NewAsset(testTenantID, code, "Scaffold tower "+code, decimal.NewFromInt(150))
	require.NoError(t, err)
	a.ClearDomainEvents()
	return a
}

func newAssetService(r *testRepos) *AssetService {
	svc := NewAssetService(r.assets, r.scope, nil)
	svc.SetEventPublisher(r.publisher)
	return svc
}

func TestAssetService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("registers an available asset", func(t *testing.T) {
		r := newTestRepos()
		svc := newAssetService(r)

		r.assets.On("ExistsByCode", ctx, testTenantID, "AST-001").Return(false, nil)
		r.assets.On("Create", ctx, mock.AnythingOfType("*asset.Asset")).Return(nil)

		resp, err := svc.Create(ctx, testTenantID, CreateAssetRequest{
			Code:      " AST-001 ",
			Name:      "Generator",
			DailyRate: decimal.NewFromInt(80),
		})

		require.NoError(t, err)
		assert.Equal(t, "AST-001", resp.Code)
		assert.Equal(t, string(asset.StatusAvailable), resp.Status)
		assert.True(t, resp.DailyRate.Equal(decimal.NewFromInt(80)))
		assert.Len(t, r.publisher.GetEventsByType(asset.EventTypeAssetCreated), 1)
		r.assertExpectations(t)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		r := newTestRepos()
		svc := newAssetService(r)

		r.assets.On("ExistsByCode", ctx, testTenantID, "AST-001").Return(true, nil)

		resp, err := svc.Create(ctx, testTenantID, CreateAssetRequest{Code: "AST-001"})

		assert.Nil(t, resp)
		requireDomainCode(t, err, shared.CodeAlreadyExists)
		r.assets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, r.publisher.GetEvents())
	})

	t.Run("rejects a negative rate before touching storage", func(t *testing.T) {
		r := newTestRepos()
		svc := newAssetService(r)

		_, err := svc.Create(ctx, testTenantID, CreateAssetRequest{Code: "AST-002", DailyRate: decimal.NewFromInt(-1)})

		requireDomainCode(t, err, shared.CodeInvalidAmount)
		r.assertExpectations(t)
	})
}

func TestAssetService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("persists the asset and one history row", func(t *testing.T) {
		r := newTestRepos()
		svc := newAssetService(r)
		a := newTestAsset(t, "AST-010")

		r.assets.On("FindByID", ctx, testTenantID, a.ID).Return(a, nil)
		r.assets.On("Save", ctx, a).Return(nil)
		r.assets.On("SaveHistory", ctx, mock.MatchedBy(func(h *asset.StatusHistory) bool {
			return h.AssetID == a.ID &&
				h.FromStatus == asset.StatusAvailable &&
				h.ToStatus == asset.StatusInMaintenance &&
				h.Reason == "Hydraulic leak" &&
				h.ChangedBy != nil && *h.ChangedBy == actor
		})).Return(nil).Once()

		resp, err := svc.ChangeStatus(ctx, testTenantID, a.ID, ChangeAssetStatusRequest{
			NewStatus: string(asset.StatusInMaintenance),
			Reason:    "Hydraulic leak",
			ChangedBy: &actor,
		})

		require.NoError(t, err)
		assert.Equal(t, string(asset.StatusInMaintenance), resp.Status)
		assert.Len(t, r.publisher.GetEventsByType(asset.EventTypeAssetStatusChanged), 1)
		r.assertExpectations(t)
	})

	t.Run("rejects a self-transition", func(t *testing.T) {
		r := newTestRepos()
		svc := newAssetService(r)
		a := newTestAsset(t, "AST-011")

		r.assets.On("FindByID", ctx, testTenantID, a.ID).Return(a, nil)

		_, err := svc.ChangeStatus(ctx, testTenantID, a.ID, ChangeAssetStatusRequest{NewStatus: string(asset.StatusAvailable)})

		requireDomainCode(t, err, shared.CodeSameStatus)
		r.assets.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		r.assets.AssertNotCalled(t, "SaveHistory", mock.Anything, mock.Anything)
	})

	t.Run("rejects leaving decommissioned", func(t *testing.T) {
		r := newTestRepos()
		svc := newAssetService(r)
		a := newTestAsset(t, "AST-012")
		_, err := a.Decommission("Scrapped", nil)
		require.NoError(t, err)

		r.assets.On("FindByID", ctx, testTenantID, a.ID).Return(a, nil)

		_, err = svc.ChangeStatus(ctx, testTenantID, a.ID, ChangeAssetStatusRequest{NewStatus: string(asset.StatusAvailable)})

		requireDomainCode(t, err, shared.CodeInvalidTransition)
		r.assets.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("propagates not found", func(t *testing.T) {
		r := newTestRepos()
		svc := newAssetService(r)
		id := uuid.New()

		r.assets.On("FindByID", ctx, testTenantID, id).Return(nil, shared.ErrNotFound)

		_, err := svc.ChangeStatus(ctx, testTenantID, id, ChangeAssetStatusRequest{NewStatus: string(asset.StatusRented)})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAssetService_Decommission(t *testing.T) {
	ctx := context.Background()
	r := newTestRepos()
	svc := newAssetService(r)
	a := newTestAsset(t, "AST-020")

	r.assets.On("FindByID", ctx, testTenantID, a.ID).Return(a, nil)
	r.assets.On("Save", ctx, a).Return(nil)
	r.assets.On("SaveHistory", ctx, mock.MatchedBy(func(h *asset.StatusHistory) bool {
		return h.ToStatus == asset.StatusDecommissioned
	})).Return(nil)

	resp, err := svc.Decommission(ctx, testTenantID, a.ID, DecommissionAssetRequest{Reason: "End of life"})

	require.NoError(t, err)
	assert.Equal(t, string(asset.StatusDecommissioned), resp.Status)
	assert.True(t, resp.IsDeleted)
	assert.NotNil(t, resp.DeletedAt)
	r.assertExpectations(t)
}

func TestAssetService_History(t *testing.T) {
	ctx := context.Background()
	r := newTestRepos()
	svc := newAssetService(r)
	a := newTestAsset(t, "AST-030")

	rows := []asset.StatusHistory{
		{ID: uuid.New(), AssetID: a.ID, FromStatus: asset.StatusRented, ToStatus: asset.StatusAvailable},
		{ID: uuid.New(), AssetID: a.ID, FromStatus: asset.StatusAvailable, ToStatus: asset.StatusRented},
	}
	r.assets.On("FindByID", ctx, testTenantID, a.ID).Return(a, nil)
	r.assets.On("FindHistory", ctx, testTenantID, a.ID).Return(rows, nil)

	history, err := svc.History(ctx, testTenantID, a.ID)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "AVAILABLE", history[0].ToStatus)
	r.assertExpectations(t)
}

func TestAssetService_List_RejectsUnknownStatus(t *testing.T) {
	r := newTestRepos()
	svc := newAssetService(r)

	_, _, err := svc.List(context.Background(), testTenantID, AssetListFilter{Status: "LOST"})

	requireDomainCode(t, err, shared.CodeInvalidInput)
}
