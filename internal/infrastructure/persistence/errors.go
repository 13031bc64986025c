package persistence

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rentflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the repositories translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgExclusionViolation  = "23P01"
)

// translateError maps driver and GORM errors onto the shared domain error
// taxonomy. Unknown errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeAlreadyExists, "Record already exists")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if strings.Contains(pgErr.ConstraintName, "number") {
			return shared.NewDomainError(shared.CodeDuplicateNumber, "Document number is already in use")
		}
		return shared.NewDomainErrorf(shared.CodeAlreadyExists, "Record already exists (%s)", pgErr.ConstraintName)
	case pgExclusionViolation:
		return shared.NewDomainError(shared.CodePeriodOverlap, "Billing period overlaps an existing invoice for this contract").
			WithField("billingPeriodStart")
	case pgForeignKeyViolation:
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Referenced record does not exist (%s)", pgErr.ConstraintName)
	case pgCheckViolation:
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "Value violates constraint %s", pgErr.ConstraintName)
	}
	return err
}
