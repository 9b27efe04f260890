package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/issue-management/internal/auth"
)

// IssueRateLimiter caps how many issues a user may create per day. The counter
// lives in redis under issue_limit:<user_id> with a 24h TTL set on first
// increment. When redis is unreachable the request is allowed through; the
// cap is a guard rail, not a security boundary.
func IssueRateLimiter(rdb *redis.Client, limit int, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rdb == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			u, ok := auth.UserFromContext(r.Context())
			if !ok || u == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "unauthorized"}`))
				return
			}

			ctx := r.Context()
			userKey := fmt.Sprintf("issue_limit:%d", u.ID)

			count, err := rdb.Incr(ctx, userKey).Result()
			if err != nil {
				logger.Error("rate limiter redis error", "error", err, "user_id", u.ID)
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				if err := rdb.Expire(ctx, userKey, 24*time.Hour).Err(); err != nil {
					logger.Error("rate limiter failed to set ttl", "error", err, "user_id", u.ID)
				}
			}

			if count > int64(limit) {
				retryAfter, _ := rdb.TTL(ctx, userKey).Result()
				logger.Warn("issue creation rate limit exceeded", "user_id", u.ID, "count", count)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error": "rate limit exceeded", "retry_after": %.0f}`, retryAfter.Seconds())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
