package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormSequenceAllocator_PostgresTakesAdvisoryLock(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	tenantID := uuid.New()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs(tenantID.String() + ":CTR-2026-").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT "contract_number" FROM "contracts" WHERE tenant_id = \$1 AND contract_number LIKE \$2`).
		WithArgs(tenantID, "CTR-2026-%").
		WillReturnRows(sqlmock.NewRows([]string{"contract_number"}).
			AddRow("CTR-2026-0099").
			AddRow("CTR-2026-000100").
			AddRow("CTR-2026-000007"))

	next, err := NewGormSequenceAllocator(gormDB, 6).Next(context.Background(), tenantID, billing.DocumentContract, 2026)
	require.NoError(t, err)
	assert.Equal(t, "CTR-2026-000101", next)
	assert.NoError(t, mock.ExpectationsWereMet())
}
