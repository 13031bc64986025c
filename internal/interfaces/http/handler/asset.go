package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/application/rental"
)

// AssetService is the asset use-case surface the handler needs
type AssetService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req rental.CreateAssetRequest) (*rental.AssetResponse, error)
	GetByID(ctx context.Context, tenantID, assetID uuid.UUID) (*rental.AssetResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter rental.AssetListFilter) ([]rental.AssetResponse, int64, error)
	History(ctx context.Context, tenantID, assetID uuid.UUID) ([]rental.AssetStatusHistoryResponse, error)
	ChangeStatus(ctx context.Context, tenantID, assetID uuid.UUID, req rental.ChangeAssetStatusRequest) (*rental.AssetResponse, error)
	Decommission(ctx context.Context, tenantID, assetID uuid.UUID, req rental.DecommissionAssetRequest) (*rental.AssetResponse, error)
}

// AssetHandler handles asset endpoints
type AssetHandler struct {
	BaseHandler
	service AssetService
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(service AssetService) *AssetHandler {
	return &AssetHandler{service: service}
}

// Create godoc
// @ID           createAsset
// @Summary      Register an asset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body rental.CreateAssetRequest true "Asset"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /assets [post]
func (h *AssetHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req rental.CreateAssetRequest
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

// GetByID godoc
// @ID           getAsset
// @Summary      Get an asset
// @Tags         assets
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /assets/{id} [get]
func (h *AssetHandler) GetByID(c *gin.Context) {
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

// List godoc
// @ID           listAssets
// @Summary      List assets
// @Tags         assets
// @Produce      json
// @Param        status query string false "Asset status"
// @Param        include_deleted query bool false "Include decommissioned assets"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /assets [get]
func (h *AssetHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter rental.AssetListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	assets, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Paging()
	h.SuccessWithMeta(c, assets, total, page, pageSize)
}

// History lists an asset's status transitions, newest first
// @ID           getAssetHistory
// @Tags         assets
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /assets/{id}/history [get]
func (h *AssetHandler) History(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// ChangeStatus godoc
// @ID           changeAssetStatus
// @Summary      Move an asset to a new status
// @Description  Records one history row. The new status must differ from the current one.
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        id path string true "Asset ID"
// @Param        request body rental.ChangeAssetStatusRequest true "Status change"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /assets/{id}/status [patch]
func (h *AssetHandler) ChangeStatus(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rental.ChangeAssetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChangedBy == nil {
		req.ChangedBy = actor(c)
	}

	resp, err := h.service.ChangeStatus(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Decommission retires an asset permanently
// @ID           decommissionAsset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        id path string true "Asset ID"
// @Param        request body rental.DecommissionAssetRequest true "Reason"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /assets/{id}/decommission [post]
func (h *AssetHandler) Decommission(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rental.DecommissionAssetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChangedBy == nil {
		req.ChangedBy = actor(c)
	}

	resp, err := h.service.Decommission(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
