package rental

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MeasurementService handles the measure-now, bill-later workflow
type MeasurementService struct {
	measurementRepo measurement.Repository
	txScope         TransactionScope
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
	now             func() time.Time
}

// NewMeasurementService creates a new MeasurementService
func NewMeasurementService(measurementRepo measurement.Repository, txScope TransactionScope, logger *zap.Logger) *MeasurementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeasurementService{
		measurementRepo: measurementRepo,
		txScope:         txScope,
		logger:          logger,
		now:             time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *MeasurementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateFromContract records a DRAFT measurement of a contract period,
// prorating the selected items the same way invoices are
func (s *MeasurementService) CreateFromContract(ctx context.Context, tenantID uuid.UUID, req CreateMeasurementRequest) (*MeasurementResponse, error) {
	period, err := billing.NewPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	var m *measurement.Measurement
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Contracts().FindByID(ctx, tenantID, req.ContractID)
		if err != nil {
			return err
		}
		if c.IsDeleted() {
			return shared.NewDomainError(shared.CodeInvalidState, "Cannot measure a cancelled contract").WithField("contractId")
		}

		lines, err := buildLines(c, period, req.Items)
		if err != nil {
			return err
		}

		number := req.MeasurementNumber
		if number == "" {
			number, err = repos.Sequences().Next(ctx, tenantID, billing.DocumentMeasurement, s.now().Year())
			if err != nil {
				return err
			}
		}
		m, err = measurement.NewMeasurement(measurement.Header{
			TenantID:          tenantID,
			MeasurementNumber: number,
			ContractID:        c.ID,
			CustomerID:        c.CustomerID,
			CustomerName:      c.CustomerName,
			Notes:             req.Notes,
		}, period, lines)
		if err != nil {
			return err
		}
		return repos.Measurements().Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, m)
	resp := ToMeasurementResponse(m)
	return &resp, nil
}

// Approve moves a DRAFT measurement to APPROVED
func (s *MeasurementService) Approve(ctx context.Context, tenantID, measurementID uuid.UUID, approvedBy *uuid.UUID) (*MeasurementResponse, error) {
	var m *measurement.Measurement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		m, err = repos.Measurements().FindByID(ctx, tenantID, measurementID)
		if err != nil {
			return err
		}
		if err := m.Approve(approvedBy); err != nil {
			return err
		}
		return repos.Measurements().Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, m)
	resp := ToMeasurementResponse(m)
	return &resp, nil
}

// Invoice turns an APPROVED measurement into an invoice for its period.
// The overlap check applies, and the measurement flips to INVOICED in the
// same transaction that inserts the invoice.
func (s *MeasurementService) Invoice(ctx context.Context, tenantID, measurementID uuid.UUID, req InvoiceMeasurementRequest) (_ *MeasurementInvoiceResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "measurement", "invoice",
		telemetry.WithAttribute("tenant_id", tenantID.String()),
		telemetry.WithAttribute("measurement_id", measurementID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		m   *measurement.Measurement
		inv *invoice.Invoice
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		m, err = repos.Measurements().FindByID(ctx, tenantID, measurementID)
		if err != nil {
			return err
		}
		if err := m.Status.CanTransitionTo(measurement.StatusInvoiced); err != nil {
			return err
		}

		period := m.Period()
		if err := invoice.NewOverlapGuard(repos.Invoices()).Check(ctx, tenantID, m.ContractID, period); err != nil {
			return err
		}

		issueDate := invoice.StartOfDay(s.now().UTC())
		if req.IssueDate != nil && !req.IssueDate.IsZero() {
			issueDate = *req.IssueDate
		}
		number := req.InvoiceNumber
		if number == "" {
			number, err = repos.Sequences().Next(ctx, tenantID, billing.DocumentInvoice, issueDate.Year())
			if err != nil {
				return err
			}
		}

		inv, err = invoice.NewBilledInvoice(invoice.Header{
			TenantID:      tenantID,
			InvoiceNumber: number,
			CustomerID:    m.CustomerID,
			CustomerName:  m.CustomerName,
			IssueDate:     issueDate,
			DueDate:       req.DueDate,
			Notes:         req.Notes,
		}, m.ContractID, period, m.Lines())
		if err != nil {
			return err
		}
		inv.LinkMeasurement(m.ID)
		if err := repos.Invoices().Create(ctx, inv); err != nil {
			return err
		}
		if err := m.MarkInvoiced(inv.ID); err != nil {
			return err
		}
		return repos.Measurements().Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Measurement invoiced",
		zap.String("tenant_id", tenantID.String()),
		zap.String("measurement_number", m.MeasurementNumber),
		zap.String("invoice_number", inv.InvoiceNumber))

	publishDomainEvents(ctx, s.eventPublisher, inv, m)
	return &MeasurementInvoiceResult{
		Measurement: ToMeasurementResponse(m),
		Invoice:     ToInvoiceResponse(inv),
	}, nil
}

// GetByID retrieves a measurement with its items
func (s *MeasurementService) GetByID(ctx context.Context, tenantID, measurementID uuid.UUID) (*MeasurementResponse, error) {
	m, err := s.measurementRepo.FindByID(ctx, tenantID, measurementID)
	if err != nil {
		return nil, err
	}
	resp := ToMeasurementResponse(m)
	return &resp, nil
}

// List retrieves measurements with filtering and pagination
func (s *MeasurementService) List(ctx context.Context, tenantID uuid.UUID, filter MeasurementListFilter) ([]MeasurementResponse, int64, error) {
	domainFilter := measurement.Filter{
		Filter:     filter.toDomain(),
		ContractID: filter.ContractID,
	}
	if filter.Status != "" {
		st, ok := measurement.ParseStatus(filter.Status)
		if !ok {
			return nil, 0, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown measurement status %q", filter.Status).WithField("status")
		}
		domainFilter.Status = &st
	}

	ms, total, err := s.measurementRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToMeasurementResponses(ms), total, nil
}

// NextNumber returns the next measurement number for the current year
func (s *MeasurementService) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextNumber(ctx, s.txScope, tenantID, billing.DocumentMeasurement, s.now().Year())
}
