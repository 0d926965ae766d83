package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// Limites par minute
	APIMaxRequests    = 100
	CartMaxWrites     = 30
	SearchMaxRequests = 30

	rateWindow = 1 * time.Minute
)

// RateLimiter compte les requêtes dans Redis par fenêtre d'une minute.
// Si Redis ne répond pas, la requête passe.
type RateLimiter struct {
	redis *redis.Client
	log   *zap.SugaredLogger
}

func NewRateLimiter(client *redis.Client, log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{redis: client, log: log}
}

// APIRateLimit limite le nombre de requêtes par IP (général)
func (rl *RateLimiter) APIRateLimit() gin.HandlerFunc {
	return rl.limit("api_requests:", APIMaxRequests, "Trop de requêtes. Réessayez dans 1 minute", func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// CartRateLimit limite les écritures panier par utilisateur (anti-spam)
func (rl *RateLimiter) CartRateLimit() gin.HandlerFunc {
	return rl.limit("cart_writes:", CartMaxWrites, "Trop de modifications du panier. Ralentissez un peu", func(c *gin.Context) string {
		return c.GetString(ContextUserID)
	})
}

// SearchRateLimit limite les recherches par IP
func (rl *RateLimiter) SearchRateLimit() gin.HandlerFunc {
	return rl.limit("search_requests:", SearchMaxRequests, "Trop de recherches. Réessayez dans 1 minute", func(c *gin.Context) string {
		return c.ClientIP()
	})
}

func (rl *RateLimiter) limit(prefix string, maxRequests int64, message string, identify func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identify(c)
		if id == "" {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()
		key := prefix + id

		// Incrémenter le compteur, la fenêtre démarre à la première requête
		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Warnf("⚠️ Rate limit %s indisponible: %v", prefix, err)
			c.Next()
			return
		}
		if count == 1 {
			rl.redis.Expire(ctx, key, rateWindow)
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(maxRequests, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(maxRequests-count, 0), 10))

		if count > maxRequests {
			retry := rl.redis.TTL(ctx, key).Val()
			if retry <= 0 {
				retry = rateWindow
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(retry.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       message,
				"retry_after": int(retry.Seconds()),
			})
			return
		}
		c.Next()
	}
}
