/**
 * @description
 * This file contains the HTTP middleware for the service: session-token
 * authentication and the Redis-backed rate limit for money-movement endpoints.
 * The auth middleware validates the Bearer token and stores the authenticated
 * user ID in the request context for handlers to read.
 *
 * @dependencies
 * - net/http, context, strings: Standard Go libraries.
 * - internal/app: Token verification and rate limiting.
 */

package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BarrosRichard/pygamentos/internal/app"
)

type contextKey string

const userIDContextKey contextKey = "authenticated_user_id"

// GetUserID extracts the authenticated user's ID from the request context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return id, ok
}

// AuthMiddleware validates the Authorization header and injects the user ID
// into the request context. Requests without a valid token get a 401.
func AuthMiddleware(service *app.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				http.Error(w, "Missing authorization token", http.StatusUnauthorized)
				return
			}

			userID, err := service.VerifySessionToken(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TransferRateLimitMiddleware applies a per-user fixed-window limit to the
// wrapped handler. It fails open: a limiter error never blocks a transfer.
func TransferRateLimitMiddleware(limiter *app.RedisTransferRateLimiter, limitPerMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limitPerMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := GetUserID(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			count, retryAfter, err := limiter.ConsumeRateLimit(r.Context(), "transfer", userID.String(), limitPerMinute, time.Minute)
			if err != nil {
				log.Printf("level=warn component=api msg=\"rate limiter unavailable; allowing request\" user_id=%s err=%v", userID, err)
				next.ServeHTTP(w, r)
				return
			}
			if count > limitPerMinute {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				http.Error(w, "Too many transfer requests. Please slow down.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
