package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	redisdb "github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/database/redis"
	"github.com/sirupsen/logrus"
)

// RateLimit implements a fixed one-minute window per client IP in Redis
func RateLimit(cfg *config.Config, redisClient *redisdb.Client, logger *logrus.Logger) gin.HandlerFunc {
	limit := cfg.Security.RateLimitPerMinute

	return func(c *gin.Context) {
		window := time.Now().UTC().Truncate(time.Minute)
		key := cfg.RedisKey("rate_limit", c.ClientIP(), strconv.FormatInt(window.Unix(), 10))

		current, err := redisClient.Incr(c.Request.Context(), key, time.Minute)
		if err != nil {
			// If Redis is down, allow the request
			logger.WithError(err).Warn("Rate limit check skipped")
			c.Next()
			return
		}

		remaining := int64(limit) - current
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(window.Add(time.Minute).Unix(), 10))

		if current > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(time.Until(window.Add(time.Minute)).Seconds()) + 1,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
