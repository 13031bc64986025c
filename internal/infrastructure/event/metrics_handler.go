package event

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillingRecorder receives the business facts carried by domain events.
// Implemented by the OpenTelemetry and Prometheus metric sets.
type BillingRecorder interface {
	RecordInvoiceCreated(ctx context.Context, tenantID uuid.UUID, source string, amount decimal.Decimal)
	RecordPayment(ctx context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal, settled bool)
	RecordInvoiceOverdue(ctx context.Context, tenantID uuid.UUID, outstanding decimal.Decimal)
	RecordAssetTransition(ctx context.Context, tenantID uuid.UUID, from, to string)
	RecordContractTransition(ctx context.Context, tenantID uuid.UUID, from, to string, assetsAffected int)
	RecordMeasurementInvoiced(ctx context.Context, tenantID uuid.UUID)
}

// Invoice sources used as a metric label
const (
	SourceDirect   = "direct"
	SourceContract = "contract"
)

// MetricsHandler translates events into BillingRecorder calls
type MetricsHandler struct {
	recorders []BillingRecorder
}

// NewMetricsHandler fans every event out to all recorders
func NewMetricsHandler(recorders ...BillingRecorder) *MetricsHandler {
	return &MetricsHandler{recorders: recorders}
}

// EventTypes lists the events that carry billing facts
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		asset.EventTypeAssetStatusChanged,
		contract.EventTypeContractStatusChanged,
		invoice.EventTypeInvoiceCreated,
		invoice.EventTypeInvoicePaymentRecorded,
		invoice.EventTypeInvoiceOverdue,
		measurement.EventTypeMeasurementInvoiced,
	}
}

// Handle records the event on every recorder
func (h *MetricsHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	tenantID := e.TenantID()
	for _, r := range h.recorders {
		switch ev := e.(type) {
		case *asset.AssetStatusChangedEvent:
			r.RecordAssetTransition(ctx, tenantID, string(ev.FromStatus), string(ev.ToStatus))
		case *contract.ContractStatusChangedEvent:
			r.RecordContractTransition(ctx, tenantID, string(ev.FromStatus), string(ev.ToStatus), ev.AssetsAffected)
		case *invoice.InvoiceCreatedEvent:
			r.RecordInvoiceCreated(ctx, tenantID, invoiceSource(ev), ev.Amount)
		case *invoice.InvoicePaymentRecordedEvent:
			r.RecordPayment(ctx, tenantID, ev.Method, ev.Amount, ev.ToStatus == invoice.StatusPaid)
		case *invoice.InvoiceOverdueEvent:
			r.RecordInvoiceOverdue(ctx, tenantID, ev.Outstanding)
		case *measurement.MeasurementInvoicedEvent:
			r.RecordMeasurementInvoiced(ctx, tenantID)
		}
	}
	return nil
}

func invoiceSource(ev *invoice.InvoiceCreatedEvent) string {
	if ev.ContractID != nil {
		return SourceContract
	}
	return SourceDirect
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
