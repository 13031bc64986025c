package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func (failingStore) IsProcessed(context.Context, string) (bool, error) {
	return false, nil
}

func (failingStore) Release(context.Context, string) error {
	return errors.New("redis down")
}

func (failingStore) Close() error {
	return nil
}

func newIdempotencyRouter(store shared.IdempotencyStore, tenantID uuid.UUID) (*gin.Engine, *int) {
	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(tenantUUIDKey, tenantID)
		c.Next()
	})
	r.Use(Idempotency(IdempotencyConfig{Store: store, TTL: time.Hour}))
	handler := func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	}
	r.POST("/invoices", handler)
	r.PATCH("/invoices", handler)
	return r, &calls
}

func send(r http.Handler, method, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/invoices", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_RejectsReplayedKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()
	r, calls := newIdempotencyRouter(store, uuid.New())

	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "abc-1").Code)

	w := send(r, http.MethodPost, "abc-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, shared.CodeDuplicateRequest, decodeError(t, w).Code)
	assert.Equal(t, 1, *calls)

	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "abc-2").Code)
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_FailedRequestReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()

	statuses := []int{http.StatusConflict, http.StatusInternalServerError, http.StatusCreated}
	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(tenantUUIDKey, uuid.New())
		c.Next()
	})
	r.Use(Idempotency(IdempotencyConfig{Store: store, TTL: time.Hour}))
	r.POST("/invoices", func(c *gin.Context) {
		c.Status(statuses[calls])
		calls++
	})

	assert.Equal(t, http.StatusConflict, send(r, http.MethodPost, "retry-me").Code)
	assert.Equal(t, 0, store.Len(), "a rejected request gives its key back")

	assert.Equal(t, http.StatusInternalServerError, send(r, http.MethodPost, "retry-me").Code)
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "retry-me").Code)
	assert.Equal(t, 3, calls)

	w := send(r, http.MethodPost, "retry-me")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, shared.CodeDuplicateRequest, decodeError(t, w).Code)
	assert.Equal(t, 3, calls, "a successful request keeps its key")
}

func TestIdempotency_KeysAreTenantScoped(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()
	first, _ := newIdempotencyRouter(store, uuid.New())
	second, _ := newIdempotencyRouter(store, uuid.New())

	assert.Equal(t, http.StatusCreated, send(first, http.MethodPost, "same").Code)
	assert.Equal(t, http.StatusCreated, send(second, http.MethodPost, "same").Code)
}

func TestIdempotency_PassThrough(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()
	r, calls := newIdempotencyRouter(store, uuid.New())

	t.Run("no key", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "").Code)
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "").Code)
	})

	t.Run("non-POST methods ignore the key", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPatch, "k").Code)
		assert.Equal(t, http.StatusCreated, send(r, http.MethodPatch, "k").Code)
	})

	assert.Equal(t, 4, *calls)
	assert.Equal(t, 0, store.Len())
}

func TestIdempotency_StoreFailureLetsRequestThrough(t *testing.T) {
	r, calls := newIdempotencyRouter(failingStore{}, uuid.New())

	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "k").Code)
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "k").Code)
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_RejectsOversizedKey(t *testing.T) {
	r, calls := newIdempotencyRouter(failingStore{}, uuid.New())

	w := send(r, http.MethodPost, strings.Repeat("k", 300))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, *calls)
}
