package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		code string
	}{
		{"record not found", gorm.ErrRecordNotFound, shared.CodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), shared.CodeNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, shared.CodeAlreadyExists},
		{"unique on number", &pgconn.PgError{Code: "23505", ConstraintName: "idx_invoices_tenant_number"}, shared.CodeDuplicateNumber},
		{"unique elsewhere", &pgconn.PgError{Code: "23505", ConstraintName: "idx_assets_tenant_code"}, shared.CodeAlreadyExists},
		{"exclusion", &pgconn.PgError{Code: "23P01", ConstraintName: "invoices_no_period_overlap"}, shared.CodePeriodOverlap},
		{"foreign key", &pgconn.PgError{Code: "23503"}, shared.CodeInvalidInput},
		{"check", &pgconn.PgError{Code: "23514"}, shared.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var de *shared.DomainError
			assert.True(t, errors.As(translateError(tt.in), &de))
			assert.Equal(t, tt.code, de.Code)
		})
	}

	assert.Nil(t, translateError(nil))
	assert.Same(t, plain, translateError(plain))
	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), translateError(other))
}
