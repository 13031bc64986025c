package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentflow/backend/internal/domain/shared"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the optional header that makes a POST replay-safe
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// IdempotencyConfig configures the Idempotency-Key middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a POST whose Idempotency-Key was already seen for the
// tenant within TTL. The key is claimed before the handler runs so concurrent
// replays are rejected, and released again when the response is not 2xx so
// the client can retry. Store failures let the request through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if c.Request.Method != http.MethodPost || key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, dto.ErrCodeInvalidInput, "Idempotency-Key is too long")
			return
		}

		scoped := "http:" + key
		if tenantID, ok := GetTenantID(c); ok {
			scoped = "http:" + tenantID.String() + ":" + key
		}

		isNew, err := cfg.Store.MarkProcessed(c.Request.Context(), scoped, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			abortWithError(c, shared.CodeDuplicateRequest, shared.ErrDuplicateRequest.Message)
			return
		}
		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			if err := cfg.Store.Release(c.Request.Context(), scoped); err != nil {
				log.Warn("Failed to release idempotency key",
					zap.Int("status", status),
					zap.Error(err),
				)
			}
		}
	}
}
