package rental

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ContractService is the contract lifecycle manager. Every status change and
// item add/remove runs in one transaction together with the asset status
// changes it implies.
type ContractService struct {
	contractRepo   contract.Repository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewContractService creates a new ContractService
func NewContractService(contractRepo contract.Repository, txScope TransactionScope, logger *zap.Logger) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		contractRepo: contractRepo,
		txScope:      txScope,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ContractService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a DRAFT contract, allocating a number when none is given
func (s *ContractService) Create(ctx context.Context, tenantID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	var c *contract.Contract
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		number := req.ContractNumber
		if number == "" {
			var err error
			number, err = repos.Sequences().Next(ctx, tenantID, billing.DocumentContract, s.now().Year())
			if err != nil {
				return err
			}
		}

		var err error
		c, err = contract.NewContract(tenantID, number, req.CustomerID, req.CustomerName,
			contract.Type(req.Type), req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		c.Notes = req.Notes
		return repos.Contracts().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, c)
	resp := ToContractResponse(c)
	return &resp, nil
}

// GetByID retrieves a contract with all its items
func (s *ContractService) GetByID(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByID(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	resp := ToContractResponse(c)
	return &resp, nil
}

// List retrieves contracts with filtering and pagination
func (s *ContractService) List(ctx context.Context, tenantID uuid.UUID, filter ContractListFilter) ([]ContractResponse, int64, error) {
	domainFilter := contract.Filter{
		Filter:         filter.toDomain(),
		CustomerID:     filter.CustomerID,
		IncludeDeleted: filter.IncludeDeleted,
	}
	if filter.Status != "" {
		st := contract.Status(filter.Status)
		if !st.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown contract status %q", filter.Status).WithField("status")
		}
		domainFilter.Status = &st
		if st == contract.StatusCancelled {
			domainFilter.IncludeDeleted = true
		}
	}

	contracts, total, err := s.contractRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToContractResponses(contracts), total, nil
}

// AddItem places an asset on a contract. On an ACTIVE contract the asset is
// rented in the same transaction.
func (s *ContractService) AddItem(ctx context.Context, tenantID, contractID uuid.UUID, req AddContractItemRequest, actor *uuid.UUID) (*ContractItemResult, error) {
	var (
		c       *contract.Contract
		item    *contract.ContractItem
		changed []*asset.Asset
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.Contracts().FindByID(ctx, tenantID, contractID)
		if err != nil {
			return err
		}
		a, err := repos.Assets().FindByID(ctx, tenantID, req.AssetID)
		if err != nil {
			return err
		}
		if !a.IsRentable() {
			return shared.NewDomainErrorf(shared.CodeInvalidState, "Asset %s is %s and cannot be rented", a.Code, a.Status).WithField("assetId")
		}

		rate := a.DailyRate
		if req.DailyRate != nil {
			rate = *req.DailyRate
		}
		var transitions []contract.AssetTransition
		item, transitions, err = c.AddItem(contract.NewItemInput{
			AssetID:       a.ID,
			AssetCode:     a.Code,
			DailyRate:     rate,
			MonthlyRate:   req.MonthlyRate,
			StartDate:     req.StartDate,
			EndDate:       req.EndDate,
			DepartureDate: req.DepartureDate,
			Notes:         req.Notes,
		})
		if err != nil {
			return err
		}
		if err := repos.Contracts().Save(ctx, c); err != nil {
			return err
		}
		changed, err = applyAssetTransitions(ctx, repos, tenantID, transitions, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, c, changed)
	return &ContractItemResult{
		Item:          ToContractItemResponse(item),
		AssetStatuses: assetResponses(changed),
	}, nil
}

// RemoveItem deactivates a contract item and releases its asset regardless
// of the contract status
func (s *ContractService) RemoveItem(ctx context.Context, tenantID, contractID, itemID uuid.UUID, actor *uuid.UUID) (*ContractItemResult, error) {
	var (
		c       *contract.Contract
		item    *contract.ContractItem
		changed []*asset.Asset
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.Contracts().FindByID(ctx, tenantID, contractID)
		if err != nil {
			return err
		}
		var release contract.AssetTransition
		item, release, err = c.RemoveItem(itemID)
		if err != nil {
			return err
		}
		if err := repos.Contracts().Save(ctx, c); err != nil {
			return err
		}
		changed, err = applyAssetTransitions(ctx, repos, tenantID, []contract.AssetTransition{release}, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, c, changed)
	return &ContractItemResult{
		Item:          ToContractItemResponse(item),
		AssetStatuses: assetResponses(changed),
	}, nil
}

// RecordItemDates stamps the departure or return of a contract item's asset.
// Invoices created afterwards bill from the departure and up to the return.
func (s *ContractService) RecordItemDates(ctx context.Context, tenantID, contractID, itemID uuid.UUID, req RecordItemDatesRequest) (*ContractItemResponse, error) {
	var (
		c    *contract.Contract
		item *contract.ContractItem
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.Contracts().FindByID(ctx, tenantID, contractID)
		if err != nil {
			return err
		}
		item, err = c.RecordItemDates(itemID, contract.ItemDates{
			DepartureDate: req.DepartureDate,
			ReturnDate:    req.ReturnDate,
		})
		if err != nil {
			return err
		}
		return repos.Contracts().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, c)
	resp := ToContractItemResponse(item)
	return &resp, nil
}

// ChangeStatus moves a contract to a new status and fans the implied asset
// status changes out in the same transaction. A self-transition is rejected.
func (s *ContractService) ChangeStatus(ctx context.Context, tenantID, contractID uuid.UUID, req ChangeContractStatusRequest) (_ *ContractStatusResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "change_status",
		telemetry.WithAttribute("tenant_id", tenantID.String()),
		telemetry.WithAttribute("contract_id", contractID.String()),
		telemetry.WithAttribute("status", req.Status))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		c       *contract.Contract
		changed []*asset.Asset
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		c, err = repos.Contracts().FindByID(ctx, tenantID, contractID)
		if err != nil {
			return err
		}
		transitions, err := c.ChangeStatus(contract.Status(req.Status), req.Reason)
		if err != nil {
			return err
		}
		if err := repos.Contracts().Save(ctx, c); err != nil {
			return err
		}
		changed, err = applyAssetTransitions(ctx, repos, tenantID, transitions, req.ChangedBy)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Contract status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("contract_id", c.ID.String()),
		zap.String("status", string(c.Status)),
		zap.Int("assets_changed", len(changed)))

	s.publish(ctx, c, changed)
	return &ContractStatusResult{
		Contract:      ToContractResponse(c),
		AssetStatuses: assetResponses(changed),
	}, nil
}

// Cancel soft-deletes a contract and releases its assets
func (s *ContractService) Cancel(ctx context.Context, tenantID, contractID uuid.UUID, reason string, actor *uuid.UUID) (*ContractStatusResult, error) {
	return s.ChangeStatus(ctx, tenantID, contractID, ChangeContractStatusRequest{
		Status:    string(contract.StatusCancelled),
		Reason:    reason,
		ChangedBy: actor,
	})
}

// NextNumber returns the next contract number. It is advisory; the unique
// index on contract_number rejects a concurrent duplicate.
func (s *ContractService) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextNumber(ctx, s.txScope, tenantID, billing.DocumentContract, s.now().Year())
}

func (s *ContractService) publish(ctx context.Context, c *contract.Contract, changed []*asset.Asset) {
	publishDomainEvents(ctx, s.eventPublisher, c)
	for _, a := range changed {
		publishDomainEvents(ctx, s.eventPublisher, a)
	}
}

// applyAssetTransitions applies a planned fan-out through the asset status
// tracker. Assets already in the target status are left alone; a released
// asset that was decommissioned meanwhile stays decommissioned. Any other
// rejected transition aborts the enclosing transaction.
func applyAssetTransitions(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, transitions []contract.AssetTransition, actor *uuid.UUID) ([]*asset.Asset, error) {
	if len(transitions) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(transitions))
	for i, t := range transitions {
		ids[i] = t.AssetID
	}
	assets, err := repos.Assets().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	changed := make([]*asset.Asset, 0, len(transitions))
	for _, t := range transitions {
		a, ok := assets[t.AssetID]
		if !ok {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Asset %s not found", t.AssetID)
		}
		if a.Status == t.To {
			continue
		}
		if a.Status.IsTerminal() && t.To == asset.StatusAvailable {
			continue
		}
		h, err := a.ChangeStatus(t.To, t.Reason, actor)
		if err != nil {
			return nil, err
		}
		if err := saveAssetTransition(ctx, repos, a, h); err != nil {
			return nil, err
		}
		changed = append(changed, a)
	}
	return changed, nil
}

func assetResponses(assets []*asset.Asset) []AssetResponse {
	out := make([]AssetResponse, len(assets))
	for i, a := range assets {
		out[i] = ToAssetResponse(a)
	}
	return out
}

func nextNumber(ctx context.Context, txScope TransactionScope, tenantID uuid.UUID, kind billing.DocumentKind, year int) (string, error) {
	var number string
	err := txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		number, err = repos.Sequences().Next(ctx, tenantID, kind, year)
		return err
	})
	return number, err
}
