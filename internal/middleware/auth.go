package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const CallerKey contextKey = "caller"

// AuthMiddleware validates JWT tokens and stores the caller's claims in the
// request context
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			caller, err := callerFromToken(parts[1], jwtSecret)
			if err != nil {
				switch {
				case errors.Is(err, errInvalidClaims):
					logger.Warn("Rejected token claims", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				case errors.Is(err, jwt.ErrTokenExpired):
					logger.Debug("Token validation failed", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				default:
					logger.Debug("Token validation failed", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			logger.Debug("User authenticated",
				zap.String("user_id", caller.UserID.String()),
				zap.Bool("is_admin", caller.IsAdmin),
				zap.Bool("is_supplier", caller.IsSupplier),
				zap.Bool("is_customer", caller.IsCustomer),
			)

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

var errInvalidClaims = errors.New("invalid token claims")

// callerFromToken verifies an HMAC-signed access token and decodes its caller
func callerFromToken(raw, jwtSecret string) (domain.Caller, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return domain.Caller{}, err
	}
	if !token.Valid {
		return domain.Caller{}, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Caller{}, errInvalidClaims
	}

	caller, err := callerFromClaims(claims)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: %v", errInvalidClaims, err)
	}
	return caller, nil
}

// bearerCaller decodes the caller of a request's bearer token, if it
// carries a valid one
func bearerCaller(r *http.Request, jwtSecret string) (domain.Caller, bool) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return domain.Caller{}, false
	}
	caller, err := callerFromToken(raw, jwtSecret)
	return caller, err == nil
}

// callerFromClaims requires a user_id claim. Missing role flags read as false.
func callerFromClaims(claims jwt.MapClaims) (domain.Caller, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return domain.Caller{}, errors.New("missing user_id claim")
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return domain.Caller{}, err
	}

	username, _ := claims["username"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	isSupplier, _ := claims["is_supplier"].(bool)
	isCustomer, _ := claims["is_customer"].(bool)

	return domain.Caller{
		UserID:     userID,
		Username:   username,
		IsAdmin:    isAdmin,
		IsSupplier: isSupplier,
		IsCustomer: isCustomer,
	}, nil
}

// WithCaller returns a copy of ctx carrying caller
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// GetCaller extracts the authenticated caller from request context
func GetCaller(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(domain.Caller)
	return caller, ok
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	caller, ok := GetCaller(ctx)
	if !ok {
		return "", false
	}
	return caller.UserID.String(), true
}
