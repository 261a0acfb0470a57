package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitKeyPrefix namespaces the fixed-window counters in Redis
const RateLimitKeyPrefix = "storefront:ratelimit"

// RateLimitMiddleware allows cfg.Requests requests per client and fixed
// window, counted in Redis. Requests carrying a valid bearer token are keyed
// by user id, everyone else by address. The limiter runs ahead of the route
// level auth middleware, so it verifies the token itself with jwtSecret.
func RateLimitMiddleware(redisClient *redis.Client, cfg config.RateLimitConfig, jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%s", RateLimitKeyPrefix, clientKey(r, jwtSecret))
			ctx := r.Context()

			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				// On Redis error, allow request to proceed
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				redisClient.Expire(ctx, key, cfg.Window)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))

			if count > int64(cfg.Requests) {
				ttl, err := redisClient.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = cfg.Window
				}

				logger.Warn("Rate limit exceeded",
					zap.String("key", key),
					zap.Int64("count", count),
					zap.Int("limit", cfg.Requests),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))

				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(cfg.Requests-int(count)))

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request, jwtSecret string) string {
	if userID, ok := GetUserID(r.Context()); ok {
		return "user:" + userID
	}
	if caller, ok := bearerCaller(r, jwtSecret); ok {
		return "user:" + caller.UserID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
