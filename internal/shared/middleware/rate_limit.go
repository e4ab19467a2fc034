package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/shared/response"
	"roomtour-backend/internal/shared/utils"
	"roomtour-backend/pkg/cache"
)

const MsgTooManyRequests = "Слишком много запросов с этого IP, пожалуйста, попробуйте позже"

// RateLimit is a fixed-window limiter per client IP. Counters live in the
// shared cache, so instances behind one Redis share the budget.
// Cache failures let the request through.
func RateLimit(store cache.Cache, window time.Duration, max int) gin.HandlerFunc {
	limit := strconv.Itoa(max)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := GetClientIPFromContext(ctx)
		if ip == "" {
			ip = utils.ExtractClientIP(c)
		}
		key := "ratelimit:" + ip

		count, err := store.Increment(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[RateLimit] counter unavailable, allowing request")
			c.Next()
			return
		}

		ttl := window
		if count == 1 {
			if err := store.Expire(ctx, key, window); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("[RateLimit] failed to set window")
			}
		} else if remaining, err := store.TTL(ctx, key); err == nil && remaining > 0 {
			ttl = remaining
		} else if err == nil {
			// counter without a deadline (lost EXPIRE): start the window now
			_ = store.Expire(ctx, key, window)
		}

		left := int64(max) - count
		if left < 0 {
			left = 0
		}
		resetSeconds := strconv.Itoa(int(math.Ceil(ttl.Seconds())))

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(left, 10))
		c.Header("X-RateLimit-Reset", resetSeconds)

		if count > int64(max) {
			c.Header("Retry-After", resetSeconds)
			response.TooManyRequests(c, MsgTooManyRequests)
			return
		}

		c.Next()
	}
}
