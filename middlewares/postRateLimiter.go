package middlewares

import (
	"net/http"
	"os"
	"time"

	"freebie-finder-be/config"

	"github.com/gin-gonic/gin"
)

// PostRateLimiter caps how many listings a single device may create per
// 24h window. The counter lives in Redis so the limit holds across
// instances.
func PostRateLimiter(limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceIDVal, _ := c.Get("device_id")
		deviceID, ok := deviceIDVal.(string)
		if !ok || deviceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "device_id missing"})
			c.Abort()
			return
		}

		ctx := config.Ctx
		keyPrefix := os.Getenv("REDIS_POST_LIMIT_PREFIX")
		if keyPrefix == "" {
			keyPrefix = "post_limit"
		}

		// Create individual key for each device
		deviceKey := keyPrefix + ":" + deviceID

		// Increment device's count with TTL
		count, err := config.RedisClient.Incr(ctx, deviceKey).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			err = config.RedisClient.Expire(ctx, deviceKey, 24*time.Hour).Err()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		// Check if device exceeded limit
		if count > int64(limit) {
			retryAfter, _ := config.RedisClient.TTL(ctx, deviceKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
