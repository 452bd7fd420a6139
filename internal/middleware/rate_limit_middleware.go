package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/internal/domain/repository"
	"github.com/yourusername/hottakes-api/internal/handler/helper"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests - максимальное количество запросов за Window
	MaxRequests int
	// Window - временное окно для подсчета запросов
	Window time.Duration
	// KeyPrefix - префикс ключей в кеше
	KeyPrefix string
}

// DefaultAuthRateLimitConfig - лимит для forgot/reset password
func DefaultAuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 20,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:auth",
	}
}

// StrictAuthRateLimitConfig - строгий лимит для login/register (защита от brute-force)
func StrictAuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 5,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:auth:strict",
	}
}

// RateLimiter ограничивает частоту запросов счетчиками в кеше
type RateLimiter struct {
	cacheRepo repository.CacheRepository
	log       *logger.Logger
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(cacheRepo repository.CacheRepository, log *logger.Logger) *RateLimiter {
	return &RateLimiter{cacheRepo: cacheRepo, log: log.Named("RateLimiter")}
}

// Limit возвращает Gin middleware с заданной конфигурацией.
// Ключ формируется из IP + шаблона маршрута. Ошибка кеша пропускает запрос (fail-open).
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.cacheRepo == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, clientIP, path)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.cacheRepo.IncrementWithTTL(ctx, key, cfg.Window)
		if err != nil {
			rl.log.Warn("Ошибка кеша, запрос пропущен", "key", key, "error", err)
			c.Next()
			return
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		retryAfter := int(cfg.Window.Seconds())

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if int(count) > cfg.MaxRequests {
			rl.log.Warn("Превышен лимит запросов", "ip", clientIP, "path", path, "count", count, "limit", cfg.MaxRequests)

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":     "Too many requests. Please try again later.",
				"error_type":  helper.ErrorTypeRateLimited,
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
