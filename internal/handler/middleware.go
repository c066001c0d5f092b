package handler

import (
	"crypto/subtle"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader   = "X-Request-ID"
	adminSecretHeader = "X-Admin-Secret"
	adminCookieName   = "admin_session"
)

// RequestID assigns every request an id, honoring one supplied by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Recovery converts panics into 500 responses.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("request_id", c.GetString("request_id")),
					zap.Any("panic", r),
				)
				c.AbortWithStatusJSON(500, envelope{Success: false, Error: "internal server error"})
			}
		}()
		c.Next()
	}
}

// RequireAdmin gates a route group behind the shared admin secret, carried
// either in the session cookie set by the login endpoint or in a header for
// non-browser clients.
func RequireAdmin(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			Unauthorized(c, "admin access is not configured")
			c.Abort()
			return
		}

		presented := c.GetHeader(adminSecretHeader)
		if presented == "" {
			presented, _ = c.Cookie(adminCookieName)
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			Unauthorized(c, "admin credentials required")
			c.Abort()
			return
		}
		c.Next()
	}
}
