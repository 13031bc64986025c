package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Tenant context keys
const (
	TenantHeaderKey = "X-Tenant-ID"
	// TenantIDKey holds the tenant id as a string for the access logger
	TenantIDKey   = "tenant_id"
	tenantUUIDKey = "tenant_uuid"
)

// TenantScope resolves the tenant a request acts for. The tenant comes from
// X-Tenant-ID and must be one of the principal's memberships, so JWTAuth has
// to run first.
func TenantScope(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			abortWithError(c, dto.ErrCodeTenantRequired, "X-Tenant-ID header is required")
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			abortWithError(c, dto.ErrCodeTenantRequired, "X-Tenant-ID must be a UUID")
			return
		}
		if !claims.MemberOf(tenantID) {
			log.Warn("Tenant access denied",
				zap.String("user_id", claims.UserID),
				zap.String("tenant_id", tenantID.String()),
			)
			abortWithError(c, dto.ErrCodeForbidden, "Not a member of the requested tenant")
			return
		}

		c.Set(TenantIDKey, tenantID.String())
		c.Set(tenantUUIDKey, tenantID)

		ctx, _ := logger.WithTenantID(c.Request.Context(), logger.FromContext(c.Request.Context()), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenantID returns the tenant resolved by TenantScope
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(tenantUUIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
