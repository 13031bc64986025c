package migration

import (
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/rentflow/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice index", "add_invoice_index"},
		{"Add-Invoice-Index", "add_invoice_index"},
		{"add__invoice__index", "add_invoice_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"trailing_", "trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	mf, err := createMigrationAt(dir, "Add measurement index", "Index measurements by period", now)
	require.NoError(t, err)
	assert.Equal(t, "20260301103000", mf.Version)
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Description: Index measurements by period")

	_, err = createMigrationAt(dir, "Add measurement index", "again", now)
	assert.Error(t, err, "existing files are never overwritten")

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"20260102000000_b.up.sql":   {},
		"20260102000000_b.down.sql": {},
		"20260101000000_a.up.sql":   {},
		"README.md":                 {},
	}
	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260101000000_a", "20260102000000_b"}, names)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	assert.Contains(t, names, "20260115090000_create_rental_schema")
	assert.Contains(t, names, "20260115090100_add_invoice_period_exclusion")

	for _, n := range names {
		_, err := migrations.FS.Open(n + ".down.sql")
		assert.NoError(t, err, "%s has a rollback", n)
	}
}
