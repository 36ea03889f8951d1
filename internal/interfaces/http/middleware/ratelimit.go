package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psim/backend/internal/infrastructure/logger"
	"github.com/psim/backend/internal/interfaces/http/dto"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const rateLimitPrefix = "psim:ratelimit"

// NewRateLimiter builds a fixed-window limiter allowing requests per window.
// A nil client keeps the counters in process memory.
func NewRateLimiter(requests int64, window time.Duration, client *redis.Client) (*limiter.Limiter, error) {
	rate := limiter.Rate{Period: window, Limit: requests}

	var store limiter.Store
	if client != nil {
		s, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix, MaxRetry: 3})
		if err != nil {
			return nil, err
		}
		store = s
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix, CleanUpInterval: time.Minute})
	}
	return limiter.New(store, rate), nil
}

// RateLimit limits requests per client IP. Store failures let the request through.
func RateLimit(instance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.L(c.Request.Context()).Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			retryAfter := time.Until(time.Unix(ctx.Reset, 0)).Seconds()
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(int(retryAfter)))
			abortWithError(c, dto.ErrCodeRateLimited, "Too many requests")
			return
		}
		c.Next()
	}
}
