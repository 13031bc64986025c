package router

import (
	"github.com/rentflow/backend/internal/interfaces/http/handler"
)

// Handlers bundles the handlers served under the versioned API
type Handlers struct {
	Asset       *handler.AssetHandler
	Contract    *handler.ContractHandler
	Invoice     *handler.InvoiceHandler
	Measurement *handler.MeasurementHandler
	Export      *handler.ExportHandler
}

// RentalGroups builds the asset, contract, invoice and measurement groups.
// Static segments such as next-number are registered before :id routes.
func RentalGroups(h Handlers) []RouteRegistrar {
	assets := NewDomainGroup("assets", "/assets").
		POST("", h.Asset.Create).
		GET("", h.Asset.List).
		GET("/:id", h.Asset.GetByID).
		GET("/:id/history", h.Asset.History).
		PATCH("/:id/status", h.Asset.ChangeStatus).
		POST("/:id/decommission", h.Asset.Decommission)

	contracts := NewDomainGroup("contracts", "/contracts").
		POST("", h.Contract.Create).
		GET("", h.Contract.List).
		GET("/next-number", h.Contract.NextNumber).
		GET("/:id", h.Contract.GetByID).
		DELETE("/:id", h.Contract.Cancel).
		PATCH("/:id/status", h.Contract.ChangeStatus).
		POST("/:id/items", h.Contract.AddItem).
		PATCH("/:id/items/:itemId", h.Contract.RecordItemDates).
		DELETE("/:id/items/:itemId", h.Contract.RemoveItem)

	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Invoice.CreateDirect).
		POST("/from-contract", h.Invoice.CreateFromContract).
		GET("", h.Invoice.List).
		GET("/overdue", h.Invoice.ListOverdue).
		GET("/next-number", h.Invoice.NextNumber).
		GET("/:id", h.Invoice.GetByID).
		PATCH("/:id/status", h.Invoice.ChangeStatus).
		POST("/:id/payments", h.Invoice.AddPayment).
		GET("/:id/pdf", h.Export.InvoicePDF).
		POST("/:id/pdf/publish", h.Export.PublishInvoicePDF)

	measurements := NewDomainGroup("measurements", "/measurements").
		POST("", h.Measurement.Create).
		GET("", h.Measurement.List).
		GET("/next-number", h.Measurement.NextNumber).
		GET("/:id", h.Measurement.GetByID).
		POST("/:id/approve", h.Measurement.Approve).
		POST("/:id/invoice", h.Measurement.Invoice).
		GET("/:id/xlsx", h.Export.MeasurementXLSX)

	return []RouteRegistrar{assets, contracts, invoices, measurements}
}
