package rental

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/contract"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService is the invoice ledger: direct and contract-derived invoice
// creation, payment application and lazy overdue materialization.
type InvoiceService struct {
	invoiceRepo    invoice.Repository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	overdueOnRead  bool
	now            func() time.Time
}

// NewInvoiceService creates a new InvoiceService. Overdue materialization on
// read is enabled by default.
func NewInvoiceService(invoiceRepo invoice.Repository, txScope TransactionScope, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		txScope:       txScope,
		logger:        logger,
		overdueOnRead: true,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetOverdueOnRead toggles flipping past-due OPEN invoices to OVERDUE when
// they are read
func (s *InvoiceService) SetOverdueOnRead(enabled bool) {
	s.overdueOnRead = enabled
}

// CreateDirect creates an invoice with a caller-supplied amount and no
// proration
func (s *InvoiceService) CreateDirect(ctx context.Context, tenantID uuid.UUID, req CreateDirectInvoiceRequest) (*InvoiceResponse, error) {
	issueDate := s.issueDate(req.IssueDate)

	var inv *invoice.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := s.resolveNumber(ctx, repos, tenantID, req.InvoiceNumber, issueDate)
		if err != nil {
			return err
		}
		inv, err = invoice.NewDirectInvoice(invoice.Header{
			TenantID:      tenantID,
			InvoiceNumber: number,
			CustomerID:    req.CustomerID,
			CustomerName:  req.CustomerName,
			IssueDate:     issueDate,
			DueDate:       req.DueDate,
			Notes:         req.Notes,
		}, req.Amount)
		if err != nil {
			return err
		}
		return repos.Invoices().Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, inv)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// CreateFromContract bills a contract period. Every selected item is
// resolved and prorated, the period is checked against already invoiced
// periods, and the header and items are inserted together. Any failure
// leaves nothing written.
func (s *InvoiceService) CreateFromContract(ctx context.Context, tenantID uuid.UUID, req CreateContractInvoiceRequest) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create_from_contract",
		telemetry.WithAttribute("tenant_id", tenantID.String()),
		telemetry.WithAttribute("contract_id", req.ContractID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	period, err := billing.NewPeriod(req.BillingPeriodStart, req.BillingPeriodEnd)
	if err != nil {
		return nil, err
	}
	issueDate := s.issueDate(req.IssueDate)

	var inv *invoice.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Contracts().FindByID(ctx, tenantID, req.ContractID)
		if err != nil {
			return err
		}
		if c.IsDeleted() {
			return shared.NewDomainError(shared.CodeInvalidState, "Cannot bill a cancelled contract").WithField("contractId")
		}

		lines, err := buildLines(c, period, req.Items)
		if err != nil {
			return err
		}
		if err := invoice.NewOverlapGuard(repos.Invoices()).Check(ctx, tenantID, c.ID, period); err != nil {
			return err
		}

		number, err := s.resolveNumber(ctx, repos, tenantID, req.InvoiceNumber, issueDate)
		if err != nil {
			return err
		}
		inv, err = invoice.NewBilledInvoice(invoice.Header{
			TenantID:      tenantID,
			InvoiceNumber: number,
			CustomerID:    c.CustomerID,
			CustomerName:  c.CustomerName,
			IssueDate:     issueDate,
			DueDate:       req.DueDate,
			Notes:         req.Notes,
		}, c.ID, period, lines)
		if err != nil {
			return err
		}
		return repos.Invoices().Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Contract invoice created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("contract_id", req.ContractID.String()),
		zap.String("period", period.String()),
		zap.String("amount", inv.Amount.StringFixed(2)))

	publishDomainEvents(ctx, s.eventPublisher, inv)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// AddPayment records a payment and recomputes the invoice status. The
// payment row and the header update commit together.
func (s *InvoiceService) AddPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req AddPaymentRequest) (_ *PaymentResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "add_payment",
		telemetry.WithAttribute("tenant_id", tenantID.String()),
		telemetry.WithAttribute("invoice_id", invoiceID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		inv     *invoice.Invoice
		payment *invoice.InvoicePayment
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.Invoices().FindByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		payment, err = inv.AddPayment(invoice.PaymentInput{
			Amount:      req.Amount,
			PaymentDate: req.PaymentDate,
			Method:      req.PaymentMethod,
			Reference:   req.Reference,
			Notes:       req.Notes,
			RecordedBy:  req.RecordedBy,
		})
		if err != nil {
			return err
		}
		if err := repos.Invoices().AddPayment(ctx, payment); err != nil {
			return err
		}
		return repos.Invoices().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, inv)
	return &PaymentResult{
		Payment: ToInvoicePaymentResponse(payment),
		Invoice: ToInvoiceResponse(inv),
	}, nil
}

// MaterializeOverdue flips every OPEN invoice of the tenant whose due date
// has passed to OVERDUE. Running it again changes nothing.
func (s *InvoiceService) MaterializeOverdue(ctx context.Context, tenantID uuid.UUID) (int, error) {
	changed, err := s.invoiceRepo.MarkOverdue(ctx, tenantID, s.now())
	if err != nil {
		return 0, err
	}
	for i := range changed {
		publishDomainEvents(ctx, s.eventPublisher, &changed[i])
	}
	if len(changed) > 0 {
		s.logger.Debug("Invoices marked overdue",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", len(changed)))
	}
	return len(changed), nil
}

// ListOverdue materializes overdue invoices and lists them
func (s *InvoiceService) ListOverdue(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if _, err := s.MaterializeOverdue(ctx, tenantID); err != nil {
		return nil, 0, err
	}
	filter.Status = string(invoice.StatusOverdue)
	return s.list(ctx, tenantID, filter)
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if s.overdueOnRead {
		if _, err := s.MaterializeOverdue(ctx, tenantID); err != nil {
			return nil, 0, err
		}
	}
	return s.list(ctx, tenantID, filter)
}

func (s *InvoiceService) list(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := invoice.Filter{
		Filter:     filter.toDomain(),
		CustomerID: filter.CustomerID,
		ContractID: filter.ContractID,
	}
	if filter.Status != "" {
		st := invoice.Status(filter.Status)
		if !st.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown invoice status %q", filter.Status).WithField("status")
		}
		domainFilter.Status = &st
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices), total, nil
}

// GetByID retrieves an invoice with items and payments
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// load reads an invoice, flipping it to OVERDUE first when it is past due
func (s *InvoiceService) load(ctx context.Context, tenantID, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !s.overdueOnRead || !inv.MarkOverdue(s.now()) {
		return inv, nil
	}

	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		if errors.Is(err, shared.ErrConcurrentModification) {
			return s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
		}
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, inv)
	return inv, nil
}

// ChangeStatus applies an operator-driven status (CANCELLED, IN_AGREEMENT,
// WRITTEN_OFF)
func (s *InvoiceService) ChangeStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, req ChangeInvoiceStatusRequest) (*InvoiceResponse, error) {
	var inv *invoice.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.Invoices().FindByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.ChangeStatus(invoice.Status(req.Status), req.Reason); err != nil {
			return err
		}
		return repos.Invoices().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, inv)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// NextNumber returns the next invoice number for the current year. It is
// advisory; the unique index on invoice_number rejects a concurrent duplicate.
func (s *InvoiceService) NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextNumber(ctx, s.txScope, tenantID, billing.DocumentInvoice, s.now().Year())
}

func (s *InvoiceService) issueDate(requested *time.Time) time.Time {
	if requested != nil && !requested.IsZero() {
		return *requested
	}
	return invoice.StartOfDay(s.now().UTC())
}

func (s *InvoiceService) resolveNumber(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, requested string, issueDate time.Time) (string, error) {
	if requested != "" {
		return requested, nil
	}
	return repos.Sequences().Next(ctx, tenantID, billing.DocumentInvoice, issueDate.Year())
}

// buildLines resolves and prorates the selected contract items over period.
// With no selections every active item is billed without exclusions.
// Exclusion rules are checked for every selection before any item is
// resolved.
func buildLines(c *contract.Contract, period billing.Period, selections []InvoiceItemSelection) ([]billing.Line, error) {
	if len(selections) == 0 {
		active := c.ActiveItems()
		if len(active) == 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidState, "Contract has no active items to bill").WithField("items")
		}
		for _, item := range active {
			selections = append(selections, InvoiceItemSelection{ContractItemID: item.ID})
		}
	}

	for _, sel := range selections {
		if err := billing.ValidateExclusion(sel.ExcludedDays, sel.ExcludedReason); err != nil {
			return nil, err
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(selections))
	lines := make([]billing.Line, 0, len(selections))
	for _, sel := range selections {
		if _, dup := seen[sel.ContractItemID]; dup {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Contract item %s is selected more than once", sel.ContractItemID).WithField("items")
		}
		seen[sel.ContractItemID] = struct{}{}

		item, ok := c.ActiveItem(sel.ContractItemID)
		if !ok {
			return nil, shared.NewDomainErrorf(shared.CodeContractItemNotFound, "Contract item %s not found", sel.ContractItemID).WithField("contractItemId")
		}
		lines = append(lines, billing.Line{
			ContractItemID: item.ID,
			AssetID:        item.AssetID,
			AssetCode:      item.AssetCode,
			Proration:      item.Prorate(period, sel.ExcludedDays),
			ExcludedReason: sel.ExcludedReason,
		})
	}
	return lines, nil
}
