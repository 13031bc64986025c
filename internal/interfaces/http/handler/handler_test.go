package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/application/rental"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"github.com/rentflow/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testEnv runs handlers behind the real auth and tenant middleware
type testEnv struct {
	engine   *gin.Engine
	token    string
	tenantID uuid.UUID
	userID   uuid.UUID
}

func newTestEnv(t *testing.T, register func(r gin.IRouter)) *testEnv {
	t.Helper()
	validator := auth.NewTokenValidator(config.JWTConfig{Secret: "handler-test-secret", Issuer: "rentflow-test"})
	env := &testEnv{tenantID: uuid.New(), userID: uuid.New()}
	token, err := validator.Issue(auth.IssueInput{UserID: env.userID, TenantID: env.tenantID})
	require.NoError(t, err)
	env.token = token

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(middleware.JWTConfig{Validator: validator}))
	api.Use(middleware.TenantScope(nil))
	register(api)
	env.engine = r
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+e.token)
	req.Header.Set(middleware.TenantHeaderKey, e.tenantID.String())
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out))
	return out
}

// ---------------------------------------------------------------------------
// Service mocks
// ---------------------------------------------------------------------------

type mockAssetService struct{ mock.Mock }

func (m *mockAssetService) Create(ctx context.Context, tenantID uuid.UUID, req rental.CreateAssetRequest) (*rental.AssetResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.AssetResponse), args.Error(1)
}

func (m *mockAssetService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*rental.AssetResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.AssetResponse), args.Error(1)
}

func (m *mockAssetService) List(ctx context.Context, tenantID uuid.UUID, filter rental.AssetListFilter) ([]rental.AssetResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]rental.AssetResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockAssetService) History(ctx context.Context, tenantID, id uuid.UUID) ([]rental.AssetStatusHistoryResponse, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).([]rental.AssetStatusHistoryResponse), args.Error(1)
}

func (m *mockAssetService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req rental.ChangeAssetStatusRequest) (*rental.AssetResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.AssetResponse), args.Error(1)
}

func (m *mockAssetService) Decommission(ctx context.Context, tenantID, id uuid.UUID, req rental.DecommissionAssetRequest) (*rental.AssetResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.AssetResponse), args.Error(1)
}

type mockContractService struct{ mock.Mock }

func (m *mockContractService) Create(ctx context.Context, tenantID uuid.UUID, req rental.CreateContractRequest) (*rental.ContractResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ContractResponse), args.Error(1)
}

func (m *mockContractService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*rental.ContractResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ContractResponse), args.Error(1)
}

func (m *mockContractService) List(ctx context.Context, tenantID uuid.UUID, filter rental.ContractListFilter) ([]rental.ContractResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]rental.ContractResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockContractService) AddItem(ctx context.Context, tenantID, id uuid.UUID, req rental.AddContractItemRequest, actor *uuid.UUID) (*rental.ContractItemResult, error) {
	args := m.Called(ctx, tenantID, id, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ContractItemResult), args.Error(1)
}

func (m *mockContractService) RemoveItem(ctx context.Context, tenantID, id, itemID uuid.UUID, actor *uuid.UUID) (*rental.ContractItemResult, error) {
	args := m.Called(ctx, tenantID, id, itemID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ContractItemResult), args.Error(1)
}

func (m *mockContractService) RecordItemDates(ctx context.Context, tenantID, id, itemID uuid.UUID, req rental.RecordItemDatesRequest) (*rental.ContractItemResponse, error) {
	args := m.Called(ctx, tenantID, id, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ContractItemResponse), args.Error(1)
}

func (m *mockContractService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req rental.ChangeContractStatusRequest) (*rental.ContractStatusResult, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ContractStatusResult), args.Error(1)
}

func (m *mockContractService) Cancel(ctx context.Context, tenantID, id uuid.UUID, reason string, actor *uuid.UUID) (*rental.ContractStatusResult, error) {
	args := m.Called(ctx, tenantID, id, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ContractStatusResult), args.Error(1)
}

func (m *mockContractService) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

type mockInvoiceService struct{ mock.Mock }

func (m *mockInvoiceService) CreateDirect(ctx context.Context, tenantID uuid.UUID, req rental.CreateDirectInvoiceRequest) (*rental.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) CreateFromContract(ctx context.Context, tenantID uuid.UUID, req rental.CreateContractInvoiceRequest) (*rental.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) AddPayment(ctx context.Context, tenantID, id uuid.UUID, req rental.AddPaymentRequest) (*rental.PaymentResult, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.PaymentResult), args.Error(1)
}

func (m *mockInvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*rental.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter rental.InvoiceListFilter) ([]rental.InvoiceResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]rental.InvoiceResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockInvoiceService) ListOverdue(ctx context.Context, tenantID uuid.UUID, filter rental.InvoiceListFilter) ([]rental.InvoiceResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]rental.InvoiceResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockInvoiceService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req rental.ChangeInvoiceStatusRequest) (*rental.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

type mockMeasurementService struct{ mock.Mock }

func (m *mockMeasurementService) CreateFromContract(ctx context.Context, tenantID uuid.UUID, req rental.CreateMeasurementRequest) (*rental.MeasurementResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.MeasurementResponse), args.Error(1)
}

func (m *mockMeasurementService) Approve(ctx context.Context, tenantID, id uuid.UUID, approvedBy *uuid.UUID) (*rental.MeasurementResponse, error) {
	args := m.Called(ctx, tenantID, id, approvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.MeasurementResponse), args.Error(1)
}

func (m *mockMeasurementService) Invoice(ctx context.Context, tenantID, id uuid.UUID, req rental.InvoiceMeasurementRequest) (*rental.MeasurementInvoiceResult, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.MeasurementInvoiceResult), args.Error(1)
}

func (m *mockMeasurementService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*rental.MeasurementResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.MeasurementResponse), args.Error(1)
}

func (m *mockMeasurementService) List(ctx context.Context, tenantID uuid.UUID, filter rental.MeasurementListFilter) ([]rental.MeasurementResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]rental.MeasurementResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockMeasurementService) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

type mockExportService struct{ mock.Mock }

func (m *mockExportService) InvoicePDF(ctx context.Context, tenantID, id uuid.UUID) (*rental.ExportedFile, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ExportedFile), args.Error(1)
}

func (m *mockExportService) PublishInvoicePDF(ctx context.Context, tenantID, id uuid.UUID) (*rental.PublishedDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.PublishedDocument), args.Error(1)
}

func (m *mockExportService) MeasurementXLSX(ctx context.Context, tenantID, id uuid.UUID) (*rental.ExportedFile, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.ExportedFile), args.Error(1)
}

var (
	_ AssetService       = (*mockAssetService)(nil)
	_ ContractService    = (*mockContractService)(nil)
	_ InvoiceService     = (*mockInvoiceService)(nil)
	_ MeasurementService = (*mockMeasurementService)(nil)
	_ ExportService      = (*mockExportService)(nil)

	_ AssetService       = (*rental.AssetService)(nil)
	_ ContractService    = (*rental.ContractService)(nil)
	_ InvoiceService     = (*rental.InvoiceService)(nil)
	_ MeasurementService = (*rental.MeasurementService)(nil)
	_ ExportService      = (*rental.ExportService)(nil)
)
