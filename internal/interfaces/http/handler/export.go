package handler

import (
	"context"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/application/rental"
)

// ExportService renders and publishes billing documents
type ExportService interface {
	InvoicePDF(ctx context.Context, tenantID, invoiceID uuid.UUID) (*rental.ExportedFile, error)
	PublishInvoicePDF(ctx context.Context, tenantID, invoiceID uuid.UUID) (*rental.PublishedDocument, error)
	MeasurementXLSX(ctx context.Context, tenantID, measurementID uuid.UUID) (*rental.ExportedFile, error)
}

// ExportHandler streams invoice PDFs and measurement spreadsheets
type ExportHandler struct {
	BaseHandler
	service ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(service ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// InvoicePDF godoc
// @ID           downloadInvoicePdf
// @Summary      Download an invoice as PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *ExportHandler) InvoicePDF(c *gin.Context) {
	h.download(c, h.service.InvoicePDF)
}

// MeasurementXLSX downloads a measurement as a spreadsheet
// @Router /measurements/{id}/xlsx [get]
func (h *ExportHandler) MeasurementXLSX(c *gin.Context) {
	h.download(c, h.service.MeasurementXLSX)
}

// PublishInvoicePDF uploads the rendered PDF to object storage and returns a
// presigned link
// @ID           publishInvoicePdf
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf/publish [post]
func (h *ExportHandler) PublishInvoicePDF(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.PublishInvoicePDF(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

type renderFunc func(ctx context.Context, tenantID, id uuid.UUID) (*rental.ExportedFile, error)

func (h *ExportHandler) download(c *gin.Context, render renderFunc) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	file, err := render(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
