package rental

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockAssetRepository is a mock implementation of asset.Repository
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*asset.Asset, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*asset.Asset, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*asset.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter asset.Filter) ([]asset.Asset, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]asset.Asset), args.Get(1).(int64), args.Error(2)
}

func (m *MockAssetRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepository) Save(ctx context.Context, a *asset.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssetRepository) SaveHistory(ctx context.Context, h *asset.StatusHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockAssetRepository) FindHistory(ctx context.Context, tenantID, assetID uuid.UUID) ([]asset.StatusHistory, error) {
	args := m.Called(ctx, tenantID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]asset.StatusHistory), args.Error(1)
}

// MockContractRepository is a mock implementation of contract.Repository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter contract.Filter) ([]contract.Contract, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]contract.Contract), args.Get(1).(int64), args.Error(2)
}

func (m *MockContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of invoice.Repository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindBillingPeriods(ctx context.Context, tenantID, contractID uuid.UUID) ([]billing.Period, error) {
	args := m.Called(ctx, tenantID, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Period), args.Error(1)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter invoice.Filter) ([]invoice.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]invoice.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) AddPayment(ctx context.Context, p *invoice.InvoicePayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}

// MockMeasurementRepository is a mock implementation of measurement.Repository
type MockMeasurementRepository struct {
	mock.Mock
}

func (m *MockMeasurementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*measurement.Measurement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*measurement.Measurement), args.Error(1)
}

func (m *MockMeasurementRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter measurement.Filter) ([]measurement.Measurement, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]measurement.Measurement), args.Get(1).(int64), args.Error(2)
}

func (m *MockMeasurementRepository) Create(ctx context.Context, ms *measurement.Measurement) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

func (m *MockMeasurementRepository) Update(ctx context.Context, ms *measurement.Measurement) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

// MockSequenceAllocator is a mock implementation of billing.SequenceAllocator
type MockSequenceAllocator struct {
	mock.Mock
}

func (m *MockSequenceAllocator) Next(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, year int) (string, error) {
	args := m.Called(ctx, tenantID, kind, year)
	return args.String(0), args.Error(1)
}

// testRepos bundles the mocks behind a NoOpTransactionScope
type testRepos struct {
	assets       *MockAssetRepository
	contracts    *MockContractRepository
	invoices     *MockInvoiceRepository
	measurements *MockMeasurementRepository
	sequences    *MockSequenceAllocator
	scope        *NoOpTransactionScope
	publisher    *MockEventPublisher
}

func newTestRepos() *testRepos {
	r := &testRepos{
		assets:       new(MockAssetRepository),
		contracts:    new(MockContractRepository),
		invoices:     new(MockInvoiceRepository),
		measurements: new(MockMeasurementRepository),
		sequences:    new(MockSequenceAllocator),
		publisher:    NewMockEventPublisher(),
	}
	r.scope = NewNoOpTransactionScope(r.assets, r.contracts, r.invoices, r.measurements, r.sequences)
	return r
}

func (r *testRepos) assertExpectations(t mock.TestingT) {
	r.assets.AssertExpectations(t)
	r.contracts.AssertExpectations(t)
	r.invoices.AssertExpectations(t)
	r.measurements.AssertExpectations(t)
	r.sequences.AssertExpectations(t)
}

var (
	testTenantID = uuid.MustParse("6f1c2a7e-3b8d-4d3e-9a55-1f2e3d4c5b6a")
	testCustomer = uuid.MustParse("0b5d7e9f-1a2b-4c3d-8e4f-5a6b7c8d9e0f")
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func requireDomainCode(t require.TestingT, err error, code string) {
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	require.Equal(t, code, de.Code)
}
