package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/application/rental"
)

// ContractService is the contract use-case surface the handler needs
type ContractService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req rental.CreateContractRequest) (*rental.ContractResponse, error)
	GetByID(ctx context.Context, tenantID, contractID uuid.UUID) (*rental.ContractResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter rental.ContractListFilter) ([]rental.ContractResponse, int64, error)
	AddItem(ctx context.Context, tenantID, contractID uuid.UUID, req rental.AddContractItemRequest, actor *uuid.UUID) (*rental.ContractItemResult, error)
	RemoveItem(ctx context.Context, tenantID, contractID, itemID uuid.UUID, actor *uuid.UUID) (*rental.ContractItemResult, error)
	RecordItemDates(ctx context.Context, tenantID, contractID, itemID uuid.UUID, req rental.RecordItemDatesRequest) (*rental.ContractItemResponse, error)
	ChangeStatus(ctx context.Context, tenantID, contractID uuid.UUID, req rental.ChangeContractStatusRequest) (*rental.ContractStatusResult, error)
	Cancel(ctx context.Context, tenantID, contractID uuid.UUID, reason string, actor *uuid.UUID) (*rental.ContractStatusResult, error)
	NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// ContractHandler handles contract endpoints
type ContractHandler struct {
	BaseHandler
	service ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(service ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

// Create opens a DRAFT contract
// @ID           createContract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request body rental.CreateContractRequest true "Contract"
// @Success      201 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req rental.CreateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID returns a contract with its items
// @ID           getContract
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts/{id} [get]
func (h *ContractHandler) GetByID(c *gin.Context) {
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

// List returns contracts filtered by status and customer
// @ID           listContracts
// @Tags         contracts
// @Produce      json
// @Param        status query string false "Contract status"
// @Param        customer_id query string false "Customer ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter rental.ContractListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.CustomerID, ok = h.queryUUID(c, "customer_id"); !ok {
		return
	}

	contracts, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Paging()
	h.SuccessWithMeta(c, contracts, total, page, pageSize)
}

// AddItem godoc
// @ID           addContractItem
// @Summary      Place an asset on a contract
// @Description  The asset becomes RENTED right away when the contract is ACTIVE.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID"
// @Param        request body rental.AddContractItemRequest true "Item"
// @Success      201 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts/{id}/items [post]
func (h *ContractHandler) AddItem(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rental.AddContractItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.AddItem(c.Request.Context(), tenantID, id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RemoveItem deactivates a contract item and releases its asset
// @ID           removeContractItem
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID"
// @Param        itemId path string true "Contract item ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts/{id}/items/{itemId} [delete]
func (h *ContractHandler) RemoveItem(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}

	resp, err := h.service.RemoveItem(c.Request.Context(), tenantID, id, itemID, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordItemDates godoc
// @ID           recordContractItemDates
// @Summary      Stamp an item's departure or return
// @Description  The return date caps billing for invoices created afterwards.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID"
// @Param        itemId path string true "Contract item ID"
// @Param        request body rental.RecordItemDatesRequest true "Dates"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts/{id}/items/{itemId} [patch]
func (h *ContractHandler) RecordItemDates(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}
	var req rental.RecordItemDatesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RecordItemDates(c.Request.Context(), tenantID, id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeStatus godoc
// @ID           changeContractStatus
// @Summary      Transition a contract
// @Description  Fans the implied asset status changes out in the same transaction.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID"
// @Param        request body rental.ChangeContractStatusRequest true "Status change"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts/{id}/status [patch]
func (h *ContractHandler) ChangeStatus(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rental.ChangeContractStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.ChangedBy = actor(c)

	resp, err := h.service.ChangeStatus(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel soft-deletes a contract. The reason travels as a query parameter.
// @ID           cancelContract
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID"
// @Param        reason query string false "Cancellation reason"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts/{id} [delete]
func (h *ContractHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), tenantID, id, c.Query("reason"), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// NextNumber returns the advisory next contract number
// @ID           nextContractNumber
// @Tags         contracts
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /contracts/next-number [get]
func (h *ContractHandler) NextNumber(c *gin.Context) {
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
