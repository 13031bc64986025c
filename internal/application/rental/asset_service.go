package rental

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AssetService handles asset registration and the asset status tracker
type AssetService struct {
	assetRepo      asset.Repository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAssetService creates a new AssetService
func NewAssetService(assetRepo asset.Repository, txScope TransactionScope, logger *zap.Logger) *AssetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetService{
		assetRepo: assetRepo,
		txScope:   txScope,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AssetService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a new AVAILABLE asset. The code must be unique per tenant.
func (s *AssetService) Create(ctx context.Context, tenantID uuid.UUID, req CreateAssetRequest) (*AssetResponse, error) {
	a, err := asset.NewAsset(tenantID, req.Code, req.Name, req.DailyRate)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.Assets().ExistsByCode(ctx, tenantID, a.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainErrorf(shared.CodeAlreadyExists, "Asset code %s already exists", a.Code).WithField("code")
		}
		return repos.Assets().Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, a)
	resp := ToAssetResponse(a)
	return &resp, nil
}

// GetByID retrieves an asset
func (s *AssetService) GetByID(ctx context.Context, tenantID, assetID uuid.UUID) (*AssetResponse, error) {
	a, err := s.assetRepo.FindByID(ctx, tenantID, assetID)
	if err != nil {
		return nil, err
	}
	resp := ToAssetResponse(a)
	return &resp, nil
}

// List retrieves assets with filtering and pagination
func (s *AssetService) List(ctx context.Context, tenantID uuid.UUID, filter AssetListFilter) ([]AssetResponse, int64, error) {
	domainFilter := asset.Filter{
		Filter:         filter.toDomain(),
		IncludeDeleted: filter.IncludeDeleted,
	}
	if filter.Status != "" {
		st := asset.Status(filter.Status)
		if !st.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown asset status %q", filter.Status).WithField("status")
		}
		domainFilter.Status = &st
	}

	assets, total, err := s.assetRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToAssetResponses(assets), total, nil
}

// History lists the status transitions of an asset, newest first
func (s *AssetService) History(ctx context.Context, tenantID, assetID uuid.UUID) ([]AssetStatusHistoryResponse, error) {
	if _, err := s.assetRepo.FindByID(ctx, tenantID, assetID); err != nil {
		return nil, err
	}
	history, err := s.assetRepo.FindHistory(ctx, tenantID, assetID)
	if err != nil {
		return nil, err
	}
	out := make([]AssetStatusHistoryResponse, len(history))
	for i := range history {
		out[i] = ToAssetStatusHistoryResponse(&history[i])
	}
	return out, nil
}

// ChangeStatus moves an asset to a new status and appends the history row
// in the same transaction. A self-transition and leaving DECOMMISSIONED are
// rejected.
func (s *AssetService) ChangeStatus(ctx context.Context, tenantID, assetID uuid.UUID, req ChangeAssetStatusRequest) (*AssetResponse, error) {
	var a *asset.Asset
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		a, err = repos.Assets().FindByID(ctx, tenantID, assetID)
		if err != nil {
			return err
		}
		h, err := a.ChangeStatus(asset.Status(req.NewStatus), req.Reason, req.ChangedBy)
		if err != nil {
			return err
		}
		return saveAssetTransition(ctx, repos, a, h)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, a)
	resp := ToAssetResponse(a)
	return &resp, nil
}

// Decommission retires an asset permanently and soft-deletes it
func (s *AssetService) Decommission(ctx context.Context, tenantID, assetID uuid.UUID, req DecommissionAssetRequest) (*AssetResponse, error) {
	var a *asset.Asset
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		a, err = repos.Assets().FindByID(ctx, tenantID, assetID)
		if err != nil {
			return err
		}
		h, err := a.Decommission(req.Reason, req.ChangedBy)
		if err != nil {
			return err
		}
		return saveAssetTransition(ctx, repos, a, h)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Asset decommissioned",
		zap.String("tenant_id", tenantID.String()),
		zap.String("asset_id", a.ID.String()),
		zap.String("code", a.Code))

	publishDomainEvents(ctx, s.eventPublisher, a)
	resp := ToAssetResponse(a)
	return &resp, nil
}

func saveAssetTransition(ctx context.Context, repos TransactionalRepositories, a *asset.Asset, h *asset.StatusHistory) error {
	if err := repos.Assets().Save(ctx, a); err != nil {
		return err
	}
	return repos.Assets().SaveHistory(ctx, h)
}
