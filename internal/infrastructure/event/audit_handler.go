package event

import (
	"context"

	"github.com/rentflow/backend/internal/domain/asset"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per domain event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit handler logging under the "audit" name
func NewAuditLogHandler(l *zap.Logger) *AuditLogHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuditLogHandler{logger: l.Named("audit")}
}

// EventTypes subscribes to every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event envelope plus the fields that matter for each type
func (h *AuditLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.String("tenant_id", e.TenantID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	fields = append(fields, logger.TraceFields(ctx)...)
	fields = append(fields, detailFields(e)...)

	h.logger.Info("domain event", fields...)
	return nil
}

func detailFields(e shared.DomainEvent) []zap.Field {
	switch ev := e.(type) {
	case *asset.AssetStatusChangedEvent:
		return []zap.Field{
			zap.String("asset_code", ev.Code),
			zap.String("from_status", string(ev.FromStatus)),
			zap.String("to_status", string(ev.ToStatus)),
			zap.String("reason", ev.Reason),
		}
	case *contract.ContractStatusChangedEvent:
		return []zap.Field{
			zap.String("contract_number", ev.ContractNumber),
			zap.String("from_status", string(ev.FromStatus)),
			zap.String("to_status", string(ev.ToStatus)),
			zap.Int("assets_affected", ev.AssetsAffected),
		}
	case *contract.ContractItemAddedEvent:
		return []zap.Field{zap.String("item_id", ev.ItemID.String()), zap.String("asset_id", ev.AssetID.String())}
	case *contract.ContractItemRemovedEvent:
		return []zap.Field{zap.String("item_id", ev.ItemID.String()), zap.String("asset_id", ev.AssetID.String())}
	case *contract.ContractItemDatesRecordedEvent:
		fields := []zap.Field{zap.String("item_id", ev.ItemID.String())}
		if ev.DepartureDate != nil {
			fields = append(fields, zap.Time("departure_date", *ev.DepartureDate))
		}
		if ev.ReturnDate != nil {
			fields = append(fields, zap.Time("return_date", *ev.ReturnDate))
		}
		return fields
	case *invoice.InvoiceCreatedEvent:
		return []zap.Field{
			zap.String("invoice_number", ev.InvoiceNumber),
			zap.String("amount", ev.Amount.StringFixed(2)),
			zap.Int("item_count", ev.ItemCount),
		}
	case *invoice.InvoicePaymentRecordedEvent:
		return []zap.Field{
			zap.String("invoice_number", ev.InvoiceNumber),
			zap.String("amount", ev.Amount.StringFixed(2)),
			zap.String("paid_amount", ev.PaidAmount.StringFixed(2)),
			zap.String("to_status", string(ev.ToStatus)),
		}
	case *invoice.InvoiceOverdueEvent:
		return []zap.Field{
			zap.String("invoice_number", ev.InvoiceNumber),
			zap.String("outstanding", ev.Outstanding.StringFixed(2)),
		}
	case *invoice.InvoiceStatusChangedEvent:
		return []zap.Field{
			zap.String("invoice_number", ev.InvoiceNumber),
			zap.String("from_status", string(ev.FromStatus)),
			zap.String("to_status", string(ev.ToStatus)),
		}
	case *measurement.MeasurementApprovedEvent:
		return []zap.Field{
			zap.String("measurement_number", ev.MeasurementNumber),
			zap.String("total_value", ev.TotalValue.StringFixed(2)),
		}
	case *measurement.MeasurementInvoicedEvent:
		return []zap.Field{
			zap.String("measurement_number", ev.MeasurementNumber),
			zap.String("invoice_id", ev.InvoiceID.String()),
		}
	}
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
