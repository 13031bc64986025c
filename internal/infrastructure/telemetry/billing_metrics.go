package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BillingMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// OpenInvoiceSummary aggregates the invoices still owed by customers
type OpenInvoiceSummary struct {
	CountByStatus map[string]int64
	Outstanding   decimal.Decimal
}

// SnapshotProvider reads point-in-time rental state for the periodic gauges
type SnapshotProvider interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
	AssetCountsByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error)
	OpenInvoices(ctx context.Context, tenantID uuid.UUID) (OpenInvoiceSummary, error)
}

// BillingMetricsConfig configures BillingMetrics
type BillingMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	Snapshots       SnapshotProvider
	CollectInterval time.Duration // Default: 5 minutes
}

// BillingMetrics records billing activity as OpenTelemetry instruments.
// Counters are fed by domain events; gauges by a periodic snapshot.
type BillingMetrics struct {
	logger    *zap.Logger
	snapshots SnapshotProvider
	interval  time.Duration

	invoicesCreated     *Counter
	invoicedAmount      *FloatCounter
	payments            *Counter
	paymentAmount       *FloatCounter
	invoicesOverdue     *Counter
	overdueAmount       *FloatCounter
	assetTransitions    *Counter
	contractTransitions *Counter
	assetsAffected      *Counter
	measurementsBilled  *Counter

	assetsByStatus    *Gauge
	openInvoices      *Gauge
	outstandingAmount *FloatGauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// NewBillingMetrics registers every billing instrument on cfg.Meter
func NewBillingMetrics(cfg BillingMetricsConfig) (*BillingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	bm := &BillingMetrics{
		logger:    logger,
		snapshots: cfg.Snapshots,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}

	m := cfg.Meter
	var err error
	if bm.invoicesCreated, err = NewCounter(m, "rental_invoices_created_total", "Invoices issued", "{invoices}"); err != nil {
		return nil, err
	}
	if bm.invoicedAmount, err = NewFloatCounter(m, "rental_invoiced_amount_total", "Sum of issued invoice amounts", "{currency}"); err != nil {
		return nil, err
	}
	if bm.payments, err = NewCounter(m, "rental_payments_total", "Payments recorded against invoices", "{payments}"); err != nil {
		return nil, err
	}
	if bm.paymentAmount, err = NewFloatCounter(m, "rental_payment_amount_total", "Sum of recorded payments", "{currency}"); err != nil {
		return nil, err
	}
	if bm.invoicesOverdue, err = NewCounter(m, "rental_invoices_overdue_total", "Invoices that became overdue", "{invoices}"); err != nil {
		return nil, err
	}
	if bm.overdueAmount, err = NewFloatCounter(m, "rental_overdue_amount_total", "Outstanding balance at the moment invoices became overdue", "{currency}"); err != nil {
		return nil, err
	}
	if bm.assetTransitions, err = NewCounter(m, "rental_asset_transitions_total", "Asset status transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if bm.contractTransitions, err = NewCounter(m, "rental_contract_transitions_total", "Contract status transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if bm.assetsAffected, err = NewCounter(m, "rental_contract_assets_affected_total", "Assets moved by contract transitions", "{assets}"); err != nil {
		return nil, err
	}
	if bm.measurementsBilled, err = NewCounter(m, "rental_measurements_invoiced_total", "Measurements converted into invoices", "{measurements}"); err != nil {
		return nil, err
	}
	if bm.assetsByStatus, err = NewGauge(m, "rental_assets", "Assets by current status", "{assets}"); err != nil {
		return nil, err
	}
	if bm.openInvoices, err = NewGauge(m, "rental_open_invoices", "Invoices awaiting payment by status", "{invoices}"); err != nil {
		return nil, err
	}
	if bm.outstandingAmount, err = NewFloatGauge(m, "rental_outstanding_amount", "Outstanding balance of open invoices", "{currency}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordInvoiceCreated counts an issued invoice and its amount
func (bm *BillingMetrics) RecordInvoiceCreated(ctx context.Context, tenantID uuid.UUID, source string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrTenantID.String(tenantID.String()), AttrSource.String(source)}
	bm.invoicesCreated.Inc(ctx, attrs...)
	bm.invoicedAmount.Add(ctx, amount.InexactFloat64(), attrs...)
}

// RecordPayment counts a payment. settled is true when it closed the invoice.
func (bm *BillingMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal, settled bool) {
	bm.payments.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
		AttrSettled.Bool(settled),
	)
	bm.paymentAmount.Add(ctx, amount.InexactFloat64(),
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
	)
}

// RecordInvoiceOverdue counts an invoice crossing its due date unpaid
func (bm *BillingMetrics) RecordInvoiceOverdue(ctx context.Context, tenantID uuid.UUID, outstanding decimal.Decimal) {
	bm.invoicesOverdue.Inc(ctx, AttrTenantID.String(tenantID.String()))
	bm.overdueAmount.Add(ctx, outstanding.InexactFloat64(), AttrTenantID.String(tenantID.String()))
}

// RecordAssetTransition counts an asset status change
func (bm *BillingMetrics) RecordAssetTransition(ctx context.Context, tenantID uuid.UUID, from, to string) {
	bm.assetTransitions.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrFromStatus.String(from),
		AttrToStatus.String(to),
	)
}

// RecordContractTransition counts a contract status change and the assets it moved
func (bm *BillingMetrics) RecordContractTransition(ctx context.Context, tenantID uuid.UUID, from, to string, assetsAffected int) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrFromStatus.String(from),
		AttrToStatus.String(to),
	}
	bm.contractTransitions.Inc(ctx, attrs...)
	if assetsAffected > 0 {
		bm.assetsAffected.Add(ctx, int64(assetsAffected), attrs...)
	}
}

// RecordMeasurementInvoiced counts a measurement turned into an invoice
func (bm *BillingMetrics) RecordMeasurementInvoiced(ctx context.Context, tenantID uuid.UUID) {
	bm.measurementsBilled.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// StartPeriodicCollection refreshes the gauges every interval until ctx is
// done or Stop is called. Only the first call starts a collector.
func (bm *BillingMetrics) StartPeriodicCollection(ctx context.Context) {
	if bm.snapshots == nil {
		bm.logger.Debug("No snapshot provider configured, gauges stay empty")
		return
	}
	bm.collectOnce.Do(func() {
		go bm.run(ctx)
	})
}

func (bm *BillingMetrics) run(ctx context.Context) {
	ticker := time.NewTicker(bm.interval)
	defer ticker.Stop()

	bm.Collect(ctx)
	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.Collect(ctx)
		}
	}
}

// Collect takes one snapshot of every active tenant
func (bm *BillingMetrics) Collect(ctx context.Context) {
	if bm.snapshots == nil {
		return
	}
	tenantIDs, err := bm.snapshots.ActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to list tenants for billing metrics", zap.Error(err))
		return
	}
	for _, tenantID := range tenantIDs {
		bm.collectTenant(ctx, tenantID)
	}
}

func (bm *BillingMetrics) collectTenant(ctx context.Context, tenantID uuid.UUID) {
	tenant := AttrTenantID.String(tenantID.String())

	counts, err := bm.snapshots.AssetCountsByStatus(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to count assets by status",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		for status, n := range counts {
			bm.assetsByStatus.Record(ctx, n, tenant, AttrStatus.String(status))
		}
	}

	open, err := bm.snapshots.OpenInvoices(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to summarize open invoices",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return
	}
	for status, n := range open.CountByStatus {
		bm.openInvoices.Record(ctx, n, tenant, AttrStatus.String(status))
	}
	bm.outstandingAmount.Record(ctx, open.Outstanding.InexactFloat64(), tenant)
}

// Stop ends periodic collection
func (bm *BillingMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
