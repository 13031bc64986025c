package rental

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/invoice"
	"github.com/rentflow/backend/internal/domain/measurement"
	"github.com/rentflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Content types of exported documents
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DocumentRenderer renders billing documents to files
type DocumentRenderer interface {
	InvoicePDF(inv *invoice.Invoice) ([]byte, error)
	MeasurementXLSX(m *measurement.Measurement) ([]byte, error)
}

// ObjectStorage stores rendered documents and hands out download links
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ExportedFile is a rendered document ready to be streamed
type ExportedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PublishedDocument describes an uploaded document
type PublishedDocument struct {
	StorageKey  string    `json:"storageKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ExportService renders invoices and measurements and publishes invoice PDFs
// to object storage
type ExportService struct {
	invoiceRepo     invoice.Repository
	measurementRepo measurement.Repository
	renderer        DocumentRenderer
	storage         ObjectStorage
	linkTTL         time.Duration
	logger          *zap.Logger
}

// NewExportService creates a new ExportService. storage may be nil, in which
// case publishing is rejected.
func NewExportService(
	invoiceRepo invoice.Repository,
	measurementRepo measurement.Repository,
	renderer DocumentRenderer,
	storage ObjectStorage,
	linkTTL time.Duration,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		invoiceRepo:     invoiceRepo,
		measurementRepo: measurementRepo,
		renderer:        renderer,
		storage:         storage,
		linkTTL:         linkTTL,
		logger:          logger,
	}
}

// InvoicePDF renders an invoice
func (s *ExportService) InvoicePDF(ctx context.Context, tenantID, invoiceID uuid.UUID) (*ExportedFile, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.InvoicePDF(inv)
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return &ExportedFile{
		Filename:    inv.InvoiceNumber + ".pdf",
		ContentType: ContentTypePDF,
		Data:        data,
	}, nil
}

// PublishInvoicePDF renders an invoice, uploads it and returns a presigned
// download link
func (s *ExportService) PublishInvoicePDF(ctx context.Context, tenantID, invoiceID uuid.UUID) (*PublishedDocument, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Object storage is not configured")
	}
	file, err := s.InvoicePDF(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/invoices/%s/%s", tenantID, invoiceID, file.Filename)
	if err := s.storage.Upload(ctx, key, file.Data, file.ContentType); err != nil {
		return nil, err
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.linkTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice PDF published",
		zap.String("tenant_id", tenantID.String()),
		zap.String("storage_key", key),
		zap.Int("size", len(file.Data)))

	return &PublishedDocument{StorageKey: key, DownloadURL: url, ExpiresAt: expiresAt}, nil
}

// MeasurementXLSX renders a measurement as a spreadsheet
func (s *ExportService) MeasurementXLSX(ctx context.Context, tenantID, measurementID uuid.UUID) (*ExportedFile, error) {
	m, err := s.measurementRepo.FindByID(ctx, tenantID, measurementID)
	if err != nil {
		return nil, err
	}
	data, err := s.renderer.MeasurementXLSX(m)
	if err != nil {
		return nil, fmt.Errorf("render measurement %s: %w", m.MeasurementNumber, err)
	}
	return &ExportedFile{
		Filename:    m.MeasurementNumber + ".xlsx",
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}
