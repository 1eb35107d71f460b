package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/config"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/types"
)

// TenantMiddleware scopes the request to the tenant in X-Tenant-ID. The
// acting user comes from X-User-ID when present. Authentication itself
// happens in front of this service.
func TenantMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant id is required"})
		return
	}

	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, types.CtxTenantID, tenantID)
	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = context.WithValue(ctx, types.CtxUserID, userID)
	}
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// AdminKeyMiddleware guards the admin and cron routes with the configured key.
// Without a configured key the routes are closed.
func AdminKeyMiddleware(cfg *config.Configuration, log *logger.Logger) gin.HandlerFunc {
	expected := []byte(cfg.Admin.APIKey)

	return func(c *gin.Context) {
		provided := []byte(c.GetHeader(types.HeaderAdminKey))
		if len(expected) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			log.Debugw("rejected admin request", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), types.CtxUserID, types.SystemUserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
