package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:            "rental-documents",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("valid config", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "rental-documents", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})

	t.Run("default presign expiration", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.PresignExpiration = 0
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})

	t.Run("option overrides expiration", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig(), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		useSSL bool
		want   string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"s3.example.com", true, "https://s3.example.com"},
		{"https://s3.example.com", false, "https://s3.example.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.in, tt.useSSL)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty key", func(t *testing.T) {
		link, _, err := s.GenerateDownloadURL(ctx, "", time.Minute)
		assert.ErrorIs(t, err, errEmptyKey)
		assert.Empty(t, link)
	})

	t.Run("presigns a path-style link", func(t *testing.T) {
		key := "tenant/invoices/id/INV-2026-000001.pdf"
		link, expiresAt, err := s.GenerateDownloadURL(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "http://localhost:9000/rental-documents/"))
		assert.Contains(t, link, "INV-2026-000001.pdf")
		assert.Contains(t, link, "X-Amz-Expires=3600")
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	})

	t.Run("falls back to the default lifetime", func(t *testing.T) {
		link, _, err := s.GenerateDownloadURL(ctx, "k.pdf", 0)
		require.NoError(t, err)
		assert.Contains(t, link, "X-Amz-Expires=900")
	})
}

func TestS3ObjectStorage_EmptyKeyIsRejected(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Upload(ctx, "", []byte("x"), "text/plain"), errEmptyKey)
	exists, err := s.ObjectExists(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
	assert.False(t, exists)
}

// TestIntegration_UploadAndLink runs against a live S3-compatible endpoint.
// Set RENTAL_S3_INTEGRATION=1 with MinIO on localhost:9000 (minioadmin/minioadmin).
func TestIntegration_UploadAndLink(t *testing.T) {
	if os.Getenv("RENTAL_S3_INTEGRATION") != "1" {
		t.Skip("set RENTAL_S3_INTEGRATION=1 to run against a live S3 endpoint")
	}
	cfg := testStorageConfig()
	cfg.Bucket = "rental-integration"
	cfg.AccessKey = "minioadmin"
	cfg.SecretKey = "minioadmin"

	s, err := NewS3ObjectStorage(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.EnsureBucket(ctx))

	key := "integration/upload.pdf"
	require.NoError(t, s.Upload(ctx, key, []byte("%PDF-1.3"), "application/pdf"))

	exists, err := s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	link, _, err := s.GenerateDownloadURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, link)
}
