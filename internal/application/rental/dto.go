package rental

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ListFilter carries the paging options shared by every listing
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ListFilter) toDomain() shared.Filter {
	df := shared.DefaultFilter()
	if f.Page > 0 {
		df.Page = f.Page
	}
	if f.PageSize > 0 {
		df.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		df.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		df.OrderDir = f.OrderDir
	}
	df.Search = f.Search
	return df
}

// Paging returns the effective page and page size after defaults
func (f ListFilter) Paging() (page, pageSize int) {
	df := f.toDomain()
	return df.Page, df.PageSize
}

// ---------------------------------------------------------------------------
// Assets
// ---------------------------------------------------------------------------

// CreateAssetRequest represents a request to register an asset
type CreateAssetRequest struct {
	Code      string          `json:"code" binding:"required,min=1,max=50"`
	Name      string          `json:"name" binding:"max=200"`
	DailyRate decimal.Decimal `json:"dailyRate"`
}

// ChangeAssetStatusRequest represents a request to move an asset to a new status
type ChangeAssetStatusRequest struct {
	NewStatus string     `json:"newStatus" binding:"required"`
	Reason    string     `json:"reason" binding:"max=500"`
	ChangedBy *uuid.UUID `json:"changedBy"`
}

// DecommissionAssetRequest represents a request to retire an asset
type DecommissionAssetRequest struct {
	Reason    string     `json:"reason" binding:"required,min=1,max=500"`
	ChangedBy *uuid.UUID `json:"changedBy"`
}

// AssetListFilter represents filter options for asset listings
type AssetListFilter struct {
	ListFilter
	Status         string `form:"status"`
	IncludeDeleted bool   `form:"include_deleted"`
}

// AssetResponse represents an asset in API responses
type AssetResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenantId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	DailyRate decimal.Decimal `json:"dailyRate"`
	IsDeleted bool            `json:"isDeleted"`
	DeletedAt *time.Time      `json:"deletedAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Version   int             `json:"version"`
}

// AssetStatusHistoryResponse represents one asset status transition
type AssetStatusHistoryResponse struct {
	ID         uuid.UUID  `json:"id"`
	AssetID    uuid.UUID  `json:"assetId"`
	FromStatus string     `json:"fromStatus"`
	ToStatus   string     `json:"toStatus"`
	Reason     string     `json:"reason,omitempty"`
	ChangedBy  *uuid.UUID `json:"changedBy,omitempty"`
	ChangedAt  time.Time  `json:"changedAt"`
}

// ToAssetResponse converts a domain asset to a response
func ToAssetResponse(a *asset.Asset) AssetResponse {
	return AssetResponse{
		ID:        a.ID,
		TenantID:  a.TenantID,
		Code:      a.Code,
		Name:      a.Name,
		Status:    string(a.Status),
		DailyRate: a.DailyRate,
		IsDeleted: a.IsDeleted,
		DeletedAt: a.DeletedAt,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
}

// ToAssetResponses converts a slice of domain assets
func ToAssetResponses(assets []asset.Asset) []AssetResponse {
	out := make([]AssetResponse, len(assets))
	for i := range assets {
		out[i] = ToAssetResponse(&assets[i])
	}
	return out
}

// ToAssetStatusHistoryResponse converts a history row to a response
func ToAssetStatusHistoryResponse(h *asset.StatusHistory) AssetStatusHistoryResponse {
	return AssetStatusHistoryResponse{
		ID:         h.ID,
		AssetID:    h.AssetID,
		FromStatus: string(h.FromStatus),
		ToStatus:   string(h.ToStatus),
		Reason:     h.Reason,
		ChangedBy:  h.ChangedBy,
		ChangedAt:  h.ChangedAt,
	}
}

// ---------------------------------------------------------------------------
// Contracts
// ---------------------------------------------------------------------------

// CreateContractRequest represents a request to open a DRAFT contract.
// ContractNumber is allocated when omitted.
type CreateContractRequest struct {
	ContractNumber string     `json:"contractNumber" binding:"max=50"`
	CustomerID     uuid.UUID  `json:"customerId" binding:"required"`
	CustomerName   string     `json:"customerName" binding:"max=200"`
	Type           string     `json:"type" binding:"required,oneof=ANTECIPADO MEDICAO AUTOMATICO"`
	StartDate      time.Time  `json:"startDate" binding:"required"`
	EndDate        *time.Time `json:"endDate"`
	Notes          string     `json:"notes" binding:"max=2000"`
}

// AddContractItemRequest represents a request to place an asset on a contract
type AddContractItemRequest struct {
	AssetID       uuid.UUID        `json:"assetId" binding:"required"`
	DailyRate     *decimal.Decimal `json:"dailyRate"` // nil uses the asset's rate
	MonthlyRate   *decimal.Decimal `json:"monthlyRate"`
	StartDate     time.Time        `json:"startDate" binding:"required"`
	EndDate       *time.Time       `json:"endDate"`
	DepartureDate *time.Time       `json:"departureDate"`
	Notes         string           `json:"notes" binding:"max=2000"`
}

// RecordItemDatesRequest stamps departure or return on a contract item
type RecordItemDatesRequest struct {
	DepartureDate *time.Time `json:"departureDate"`
	ReturnDate    *time.Time `json:"returnDate"`
}

// ChangeContractStatusRequest represents a contract status transition
type ChangeContractStatusRequest struct {
	Status    string     `json:"status" binding:"required"`
	Reason    string     `json:"reason" binding:"max=500"`
	ChangedBy *uuid.UUID `json:"-"`
}

// ContractListFilter represents filter options for contract listings
type ContractListFilter struct {
	ListFilter
	Status         string     `form:"status"`
	CustomerID     *uuid.UUID `form:"-"`
	IncludeDeleted bool       `form:"include_deleted"`
}

// ContractItemResponse represents a contract item in API responses
type ContractItemResponse struct {
	ID            uuid.UUID        `json:"id"`
	ContractID    uuid.UUID        `json:"contractId"`
	AssetID       uuid.UUID        `json:"assetId"`
	AssetCode     string           `json:"assetCode"`
	DailyRate     decimal.Decimal  `json:"dailyRate"`
	MonthlyRate   *decimal.Decimal `json:"monthlyRate,omitempty"`
	StartDate     time.Time        `json:"startDate"`
	EndDate       *time.Time       `json:"endDate,omitempty"`
	DepartureDate *time.Time       `json:"departureDate,omitempty"`
	ReturnDate    *time.Time       `json:"returnDate,omitempty"`
	IsActive      bool             `json:"isActive"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// ContractResponse represents a contract with its items
type ContractResponse struct {
	ID             uuid.UUID              `json:"id"`
	TenantID       uuid.UUID              `json:"tenantId"`
	ContractNumber string                 `json:"contractNumber"`
	CustomerID     uuid.UUID              `json:"customerId"`
	CustomerName   string                 `json:"customerName"`
	Status         string                 `json:"status"`
	Type           string                 `json:"type"`
	StartDate      time.Time              `json:"startDate"`
	EndDate        *time.Time             `json:"endDate,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	StatusReason   string                 `json:"statusReason,omitempty"`
	DeletedAt      *time.Time             `json:"deletedAt,omitempty"`
	Items          []ContractItemResponse `json:"items"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
	Version        int                    `json:"version"`
}

// ContractItemResult is the result of adding an item: the item plus the
// asset statuses it changed.
type ContractItemResult struct {
	Item          ContractItemResponse `json:"item"`
	AssetStatuses []AssetResponse      `json:"assetStatuses"`
}

// ContractStatusResult is the result of a contract transition and its fan-out
type ContractStatusResult struct {
	Contract      ContractResponse `json:"contract"`
	AssetStatuses []AssetResponse  `json:"assetStatuses"`
}

// ToContractItemResponse converts a contract item to a response
func ToContractItemResponse(i *contract.ContractItem) ContractItemResponse {
	return ContractItemResponse{
		ID:            i.ID,
		ContractID:    i.ContractID,
		AssetID:       i.AssetID,
		AssetCode:     i.AssetCode,
		DailyRate:     i.DailyRate,
		MonthlyRate:   i.MonthlyRate,
		StartDate:     i.StartDate,
		EndDate:       i.EndDate,
		DepartureDate: i.DepartureDate,
		ReturnDate:    i.ReturnDate,
		IsActive:      i.IsActive,
		Notes:         i.Notes,
		CreatedAt:     i.CreatedAt,
	}
}

// ToContractResponse converts a domain contract to a response
func ToContractResponse(c *contract.Contract) ContractResponse {
	items := make([]ContractItemResponse, len(c.Items))
	for i := range c.Items {
		items[i] = ToContractItemResponse(&c.Items[i])
	}
	return ContractResponse{
		ID:             c.ID,
		TenantID:       c.TenantID,
		ContractNumber: c.ContractNumber,
		CustomerID:     c.CustomerID,
		CustomerName:   c.CustomerName,
		Status:         string(c.Status),
		Type:           string(c.Type),
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		Notes:          c.Notes,
		StatusReason:   c.StatusReason,
		DeletedAt:      c.DeletedAt,
		Items:          items,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

// ToContractResponses converts a slice of contracts
func ToContractResponses(contracts []contract.Contract) []ContractResponse {
	out := make([]ContractResponse, len(contracts))
	for i := range contracts {
		out[i] = ToContractResponse(&contracts[i])
	}
	return out
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

// CreateDirectInvoiceRequest represents an invoice whose amount is supplied
// by the caller
type CreateDirectInvoiceRequest struct {
	InvoiceNumber string          `json:"invoiceNumber" binding:"max=50"`
	CustomerID    uuid.UUID       `json:"customerId" binding:"required"`
	CustomerName  string          `json:"customerName" binding:"max=200"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	IssueDate     *time.Time      `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate" binding:"required"`
	Notes         string          `json:"notes" binding:"max=2000"`
}

// InvoiceItemSelection picks one contract item to bill and its exclusions
type InvoiceItemSelection struct {
	ContractItemID uuid.UUID `json:"contractItemId" binding:"required"`
	ExcludedDays   int       `json:"excludedDays" binding:"min=0"`
	ExcludedReason string    `json:"excludedReason" binding:"max=500"`
}

// CreateContractInvoiceRequest represents an invoice billed from a contract
// period. With no items, every active contract item is billed in full.
type CreateContractInvoiceRequest struct {
	ContractID         uuid.UUID              `json:"contractId" binding:"required"`
	InvoiceNumber      string                 `json:"invoiceNumber" binding:"max=50"`
	IssueDate          *time.Time             `json:"issueDate"`
	DueDate            time.Time              `json:"dueDate" binding:"required"`
	BillingPeriodStart time.Time              `json:"billingPeriodStart" binding:"required"`
	BillingPeriodEnd   time.Time              `json:"billingPeriodEnd" binding:"required"`
	Notes              string                 `json:"notes" binding:"max=2000"`
	Items              []InvoiceItemSelection `json:"items" binding:"dive"`
}

// AddPaymentRequest represents one payment against an invoice
type AddPaymentRequest struct {
	PaymentDate   time.Time       `json:"paymentDate" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"paymentMethod" binding:"max=50"`
	Reference     string          `json:"reference" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=2000"`
	RecordedBy    *uuid.UUID      `json:"-"`
}

// ChangeInvoiceStatusRequest sets an operator-driven invoice status
type ChangeInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=CANCELLED IN_AGREEMENT WRITTEN_OFF"`
	Reason string `json:"reason" binding:"max=500"`
}

// InvoiceListFilter represents filter options for invoice listings
type InvoiceListFilter struct {
	ListFilter
	Status     string     `form:"status"`
	CustomerID *uuid.UUID `form:"-"`
	ContractID *uuid.UUID `form:"-"`
}

// InvoiceItemResponse represents one billed line
type InvoiceItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ContractItemID uuid.UUID       `json:"contractItemId"`
	AssetID        uuid.UUID       `json:"assetId"`
	AssetCode      string          `json:"assetCode"`
	PeriodStart    time.Time       `json:"periodStart"`
	PeriodEnd      time.Time       `json:"periodEnd"`
	TotalDays      int             `json:"totalDays"`
	ExcludedDays   int             `json:"excludedDays"`
	ExcludedReason string          `json:"excludedReason,omitempty"`
	BilledDays     int             `json:"billedDays"`
	DailyRate      decimal.Decimal `json:"dailyRate"`
	TotalValue     decimal.Decimal `json:"totalValue"`
}

// InvoicePaymentResponse represents one recorded payment
type InvoicePaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoiceId"`
	PaymentDate   time.Time       `json:"paymentDate"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// InvoiceResponse represents an invoice with its items and payments
type InvoiceResponse struct {
	ID                 uuid.UUID                `json:"id"`
	TenantID           uuid.UUID                `json:"tenantId"`
	InvoiceNumber      string                   `json:"invoiceNumber"`
	CustomerID         uuid.UUID                `json:"customerId"`
	CustomerName       string                   `json:"customerName"`
	ContractID         *uuid.UUID               `json:"contractId,omitempty"`
	MeasurementID      *uuid.UUID               `json:"measurementId,omitempty"`
	IssueDate          time.Time                `json:"issueDate"`
	DueDate            time.Time                `json:"dueDate"`
	BillingPeriodStart *time.Time               `json:"billingPeriodStart,omitempty"`
	BillingPeriodEnd   *time.Time               `json:"billingPeriodEnd,omitempty"`
	Amount             decimal.Decimal          `json:"amount"`
	PaidAmount         decimal.Decimal          `json:"paidAmount"`
	Outstanding        decimal.Decimal          `json:"outstanding"`
	Status             string                   `json:"status"`
	StatusReason       string                   `json:"statusReason,omitempty"`
	Notes              string                   `json:"notes,omitempty"`
	PaidAt             *time.Time               `json:"paidAt,omitempty"`
	Items              []InvoiceItemResponse    `json:"items"`
	Payments           []InvoicePaymentResponse `json:"payments"`
	CreatedAt          time.Time                `json:"createdAt"`
	UpdatedAt          time.Time                `json:"updatedAt"`
	Version            int                      `json:"version"`
}

// PaymentResult is the created payment with the recomputed invoice
type PaymentResult struct {
	Payment InvoicePaymentResponse `json:"payment"`
	Invoice InvoiceResponse        `json:"invoice"`
}

// ToInvoicePaymentResponse converts a payment to a response
func ToInvoicePaymentResponse(p *invoice.InvoicePayment) InvoicePaymentResponse {
	return InvoicePaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		PaymentDate:   p.PaymentDate,
		Amount:        p.Amount,
		PaymentMethod: p.Method,
		Reference:     p.Reference,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	}
}

// ToInvoiceResponse converts a domain invoice to a response
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:             it.ID,
			ContractItemID: it.ContractItemID,
			AssetID:        it.AssetID,
			AssetCode:      it.AssetCode,
			PeriodStart:    it.PeriodStart,
			PeriodEnd:      it.PeriodEnd,
			TotalDays:      it.TotalDays,
			ExcludedDays:   it.ExcludedDays,
			ExcludedReason: it.ExcludedReason,
			BilledDays:     it.BilledDays,
			DailyRate:      it.DailyRate,
			TotalValue:     it.TotalValue,
		}
	}
	payments := make([]InvoicePaymentResponse, len(inv.Payments))
	for i := range inv.Payments {
		payments[i] = ToInvoicePaymentResponse(&inv.Payments[i])
	}
	return InvoiceResponse{
		ID:                 inv.ID,
		TenantID:           inv.TenantID,
		InvoiceNumber:      inv.InvoiceNumber,
		CustomerID:         inv.CustomerID,
		CustomerName:       inv.CustomerName,
		ContractID:         inv.ContractID,
		MeasurementID:      inv.MeasurementID,
		IssueDate:          inv.IssueDate,
		DueDate:            inv.DueDate,
		BillingPeriodStart: inv.BillingPeriodStart,
		BillingPeriodEnd:   inv.BillingPeriodEnd,
		Amount:             inv.Amount,
		PaidAmount:         inv.PaidAmount,
		Outstanding:        inv.Outstanding(),
		Status:             string(inv.Status),
		StatusReason:       inv.StatusReason,
		Notes:              inv.Notes,
		PaidAt:             inv.PaidAt,
		Items:              items,
		Payments:           payments,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
		Version:            inv.Version,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []invoice.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

// ---------------------------------------------------------------------------
// Measurements
// ---------------------------------------------------------------------------

// CreateMeasurementRequest represents a measurement of a contract period.
// With no items, every active contract item is measured in full.
type CreateMeasurementRequest struct {
	ContractID        uuid.UUID              `json:"contractId" binding:"required"`
	MeasurementNumber string                 `json:"measurementNumber" binding:"max=50"`
	PeriodStart       time.Time              `json:"periodStart" binding:"required"`
	PeriodEnd         time.Time              `json:"periodEnd" binding:"required"`
	Notes             string                 `json:"notes" binding:"max=2000"`
	Items             []InvoiceItemSelection `json:"items" binding:"dive"`
}

// InvoiceMeasurementRequest turns an approved measurement into an invoice
type InvoiceMeasurementRequest struct {
	InvoiceNumber string     `json:"invoiceNumber" binding:"max=50"`
	IssueDate     *time.Time `json:"issueDate"`
	DueDate       time.Time  `json:"dueDate" binding:"required"`
	Notes         string     `json:"notes" binding:"max=2000"`
}

// MeasurementListFilter represents filter options for measurement listings
type MeasurementListFilter struct {
	ListFilter
	Status     string     `form:"status"`
	ContractID *uuid.UUID `form:"-"`
}

// MeasurementResponse represents a measurement with its items
type MeasurementResponse struct {
	ID                uuid.UUID             `json:"id"`
	TenantID          uuid.UUID             `json:"tenantId"`
	MeasurementNumber string                `json:"measurementNumber"`
	ContractID        uuid.UUID             `json:"contractId"`
	CustomerID        uuid.UUID             `json:"customerId"`
	CustomerName      string                `json:"customerName"`
	PeriodStart       time.Time             `json:"periodStart"`
	PeriodEnd         time.Time             `json:"periodEnd"`
	Status            string                `json:"status"`
	TotalValue        decimal.Decimal       `json:"totalValue"`
	Notes             string                `json:"notes,omitempty"`
	ApprovedAt        *time.Time            `json:"approvedAt,omitempty"`
	ApprovedBy        *uuid.UUID            `json:"approvedBy,omitempty"`
	InvoiceID         *uuid.UUID            `json:"invoiceId,omitempty"`
	InvoicedAt        *time.Time            `json:"invoicedAt,omitempty"`
	Items             []InvoiceItemResponse `json:"items"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
	Version           int                   `json:"version"`
}

// MeasurementInvoiceResult is the invoiced measurement and the new invoice
type MeasurementInvoiceResult struct {
	Measurement MeasurementResponse `json:"measurement"`
	Invoice     InvoiceResponse     `json:"invoice"`
}

// ToMeasurementResponse converts a domain measurement to a response
func ToMeasurementResponse(m *measurement.Measurement) MeasurementResponse {
	items := make([]InvoiceItemResponse, len(m.Items))
	for i, it := range m.Items {
		items[i] = InvoiceItemResponse{
			ID:             it.ID,
			ContractItemID: it.ContractItemID,
			AssetID:        it.AssetID,
			AssetCode:      it.AssetCode,
			PeriodStart:    it.PeriodStart,
			PeriodEnd:      it.PeriodEnd,
			TotalDays:      it.TotalDays,
			ExcludedDays:   it.ExcludedDays,
			ExcludedReason: it.ExcludedReason,
			BilledDays:     it.BilledDays,
			DailyRate:      it.DailyRate,
			TotalValue:     it.TotalValue,
		}
	}
	return MeasurementResponse{
		ID:                m.ID,
		TenantID:          m.TenantID,
		MeasurementNumber: m.MeasurementNumber,
		ContractID:        m.ContractID,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		PeriodStart:       m.PeriodStart,
		PeriodEnd:         m.PeriodEnd,
		Status:            string(m.Status),
		TotalValue:        m.TotalValue,
		Notes:             m.Notes,
		ApprovedAt:        m.ApprovedAt,
		ApprovedBy:        m.ApprovedBy,
		InvoiceID:         m.InvoiceID,
		InvoicedAt:        m.InvoicedAt,
		Items:             items,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.Version,
	}
}

// ToMeasurementResponses converts a slice of measurements
func ToMeasurementResponses(ms []measurement.Measurement) []MeasurementResponse {
	out := make([]MeasurementResponse, len(ms))
	for i := range ms {
		out[i] = ToMeasurementResponse(&ms[i])
	}
	return out
}

// NumberResponse carries an advisory document number
type NumberResponse struct {
	Number string `json:"number"`
}
