package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/logger"
	"github.com/psim/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// HeaderIdempotencyKey is the client-chosen key of a POST request
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// Idempotency rejects a POST whose Idempotency-Key was already seen within
// the TTL. Keys are scoped to the acting user. A request that ends with an
// error status releases its key so the client can retry.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if !cfg.Enabled || store == nil || c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, dto.ErrCodeValidation, "Idempotency-Key is too long")
			return
		}

		scoped := "http:" + GetUserID(c) + ":" + key
		log := logger.L(c.Request.Context())
		first, err := store.MarkProcessed(c.Request.Context(), scoped, cfg.TTL)
		if err != nil {
			log.Warn("Idempotency store unavailable, serving request", zap.Error(err))
			c.Next()
			return
		}
		if !first {
			log.Info("Duplicate request rejected", zap.String("idempotency_key", key))
			abortWithError(c, dto.ErrCodeDuplicateRequest, shared.ErrDuplicateRequest.Message)
			return
		}

		c.Next()

		if !allowedStatus(c.Writer.Status()) {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 5*time.Second)
			defer cancel()
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(err))
			}
		}
	}
}
