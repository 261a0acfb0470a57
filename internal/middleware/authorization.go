package middleware

import (
	"net/http"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// ForbiddenMessage is the detail returned when the caller lacks a permission
const ForbiddenMessage = "You are not authorized to use this method"

// Require rejects requests whose caller does not satisfy allowed. It must
// run after AuthMiddleware.
func Require(allowed func(domain.Caller) bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := GetCaller(r.Context())
			if !ok {
				logger.Warn("Caller not found in context")
				RespondWithError(w, http.StatusForbidden, ForbiddenMessage)
				return
			}

			if !allowed(caller) {
				logger.Warn("Caller not authorized",
					zap.String("user_id", caller.UserID.String()),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, ForbiddenMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin middleware ensures the caller is an admin
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return Require(func(c domain.Caller) bool { return c.IsAdmin }, logger)
}
