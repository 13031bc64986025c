package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/application/rental"
)

// InvoiceService is the invoice use-case surface the handler needs
type InvoiceService interface {
	CreateDirect(ctx context.Context, tenantID uuid.UUID, req rental.CreateDirectInvoiceRequest) (*rental.InvoiceResponse, error)
	CreateFromContract(ctx context.Context, tenantID uuid.UUID, req rental.CreateContractInvoiceRequest) (*rental.InvoiceResponse, error)
	AddPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req rental.AddPaymentRequest) (*rental.PaymentResult, error)
	GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*rental.InvoiceResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter rental.InvoiceListFilter) ([]rental.InvoiceResponse, int64, error)
	ListOverdue(ctx context.Context, tenantID uuid.UUID, filter rental.InvoiceListFilter) ([]rental.InvoiceResponse, int64, error)
	ChangeStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, req rental.ChangeInvoiceStatusRequest) (*rental.InvoiceResponse, error)
	NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	service InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// CreateDirect issues an invoice whose amount is supplied by the caller
// @ID           createInvoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body rental.CreateDirectInvoiceRequest true "Invoice"
// @Success      201 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) CreateDirect(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req rental.CreateDirectInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateDirect(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateFromContract godoc
// @ID           createInvoiceFromContract
// @Summary      Bill a contract period
// @Description  Prorates each selected contract item over the billing period. Rejects
// @Description  periods that overlap an existing invoice of the contract.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body rental.CreateContractInvoiceRequest true "Billing request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/from-contract [post]
func (h *InvoiceHandler) CreateFromContract(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req rental.CreateContractInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreateFromContract(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID returns an invoice with its items and payments
// @ID           getInvoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns invoices filtered by status, customer and contract
// @ID           listInvoices
// @Tags         invoices
// @Produce      json
// @Param        status query string false "Invoice status"
// @Param        customer_id query string false "Customer ID"
// @Param        contract_id query string false "Contract ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	h.list(c, h.service.List)
}

// ListOverdue marks past-due invoices OVERDUE and lists them
// @ID           listOverdueInvoices
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/overdue [get]
func (h *InvoiceHandler) ListOverdue(c *gin.Context) {
	h.list(c, h.service.ListOverdue)
}

type invoiceLister func(ctx context.Context, tenantID uuid.UUID, filter rental.InvoiceListFilter) ([]rental.InvoiceResponse, int64, error)

func (h *InvoiceHandler) list(c *gin.Context, fetch invoiceLister) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter rental.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.CustomerID, ok = h.queryUUID(c, "customer_id"); !ok {
		return
	}
	if filter.ContractID, ok = h.queryUUID(c, "contract_id"); !ok {
		return
	}

	invoices, total, err := fetch(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Paging()
	h.SuccessWithMeta(c, invoices, total, page, pageSize)
}

// AddPayment godoc
// @ID           addInvoicePayment
// @Summary      Record a payment
// @Description  Recomputes paidAmount and status. A payment above the outstanding amount is rejected.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body rental.AddPaymentRequest true "Payment"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rental.AddPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.RecordedBy = actor(c)

	resp, err := h.service.AddPayment(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ChangeStatus sets an operator-driven status (CANCELLED, IN_AGREEMENT,
// WRITTEN_OFF)
// @ID           changeInvoiceStatus
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body rental.ChangeInvoiceStatusRequest true "Status change"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id}/status [patch]
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rental.ChangeInvoiceStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.ChangeStatus(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// NextNumber returns the advisory next invoice number
// @ID           nextInvoiceNumber
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/next-number [get]
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	number, err := h.service.NextNumber(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rental.NumberResponse{Number: number})
}
