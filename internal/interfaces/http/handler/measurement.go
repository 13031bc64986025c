package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/application/rental"
)

// MeasurementService is the measurement use-case surface the handler needs
type MeasurementService interface {
	CreateFromContract(ctx context.Context, tenantID uuid.UUID, req rental.CreateMeasurementRequest) (*rental.MeasurementResponse, error)
	Approve(ctx context.Context, tenantID, measurementID uuid.UUID, approvedBy *uuid.UUID) (*rental.MeasurementResponse, error)
	Invoice(ctx context.Context, tenantID, measurementID uuid.UUID, req rental.InvoiceMeasurementRequest) (*rental.MeasurementInvoiceResult, error)
	GetByID(ctx context.Context, tenantID, measurementID uuid.UUID) (*rental.MeasurementResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter rental.MeasurementListFilter) ([]rental.MeasurementResponse, int64, error)
	NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// MeasurementHandler handles measurement endpoints
type MeasurementHandler struct {
	BaseHandler
	service MeasurementService
}

// NewMeasurementHandler creates a new MeasurementHandler
func NewMeasurementHandler(service MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{service: service}
}

// Create measures a contract period into a DRAFT measurement
// @ID           createMeasurement
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Param        request body rental.CreateMeasurementRequest true "Measurement"
// @Success      201 {object} dto.Response
// @Security     BearerAuth
// @Router       /measurements [post]
func (h *MeasurementHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req rental.CreateMeasurementRequest
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

// GetByID returns one measurement
// @Router /measurements/{id} [get]
func (h *MeasurementHandler) GetByID(c *gin.Context) {
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

// List returns measurements filtered by status and contract
// @Router /measurements [get]
func (h *MeasurementHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter rental.MeasurementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.ContractID, ok = h.queryUUID(c, "contract_id"); !ok {
		return
	}

	measurements, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Paging()
	h.SuccessWithMeta(c, measurements, total, page, pageSize)
}

// Approve moves a DRAFT measurement to APPROVED
// @Router /measurements/{id}/approve [post]
func (h *MeasurementHandler) Approve(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), tenantID, id, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Invoice turns an APPROVED measurement into an invoice
// @Router /measurements/{id}/invoice [post]
func (h *MeasurementHandler) Invoice(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rental.InvoiceMeasurementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Invoice(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// NextNumber returns the advisory next measurement number
// @Router /measurements/next-number [get]
func (h *MeasurementHandler) NextNumber(c *gin.Context) {
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
