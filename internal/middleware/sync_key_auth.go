package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// SyncSystemUserID is the actor recorded for rate syncs triggered with the API key.
const SyncSystemUserID = "system:rate-sync"

const apiKeyHeader = "x-api-key"

// SyncAPIKeyAuth authenticates schedulers that trigger the rate sync with a
// shared key, checked against its bcrypt hash. Requests without the header, or
// with a wrong key, continue unauthenticated so AuthMiddleware can still accept a JWT.
func SyncAPIKeyAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(apiKeyHeader)
		if apiKey == "" || keyHash == "" {
			c.Next()
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context())
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(apiKey)); err != nil {
			logger.Warn("Rejected sync API key", slog.String("error", err.Error()))
			c.Next()
			return
		}

		ctx := WithUserID(c.Request.Context(), SyncSystemUserID)
		ctx = WithLogger(ctx, logger.With(slog.String("user_id", SyncSystemUserID)))
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(authMethodKey), authMethodAPIKey)
		c.Next()
	}
}
