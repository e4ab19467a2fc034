package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"roomtour-backend/internal/shared/utils"
)

const ClientIPKey = "client_ip"

type clientIPCtxKey struct{}

// ClientIPMiddleware resolves the client IP once and stores it on both the
// gin context and the request context.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)

		c.Set(ClientIPKey, clientIP)
		ctx := context.WithValue(c.Request.Context(), clientIPCtxKey{}, clientIP)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetClientIPFromContext returns "" when the middleware did not run.
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPCtxKey{}).(string); ok {
		return ip
	}
	return ""
}
