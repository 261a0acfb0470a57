package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Detail    string            `json:"detail"`
	Code      string            `json:"code"`
	Timestamp string            `json:"timestamp"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// TransactionResponse is the body of a successful mutating request
type TransactionResponse struct {
	StatusCode  int    `json:"status_code"`
	Transaction string `json:"transaction"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, detail string) {
	respondWithErrors(w, statusCode, detail, nil)
}

func respondWithErrors(w http.ResponseWriter, statusCode int, detail string, errors []ValidationError) {
	RespondWithJSON(w, statusCode, ErrorResponse{
		Detail:    detail,
		Code:      http.StatusText(statusCode),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Errors:    errors,
	})
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	respondWithErrors(w, http.StatusBadRequest, "validation failed", errors)
}

// RespondWithTransaction reports the outcome of a mutating request
func RespondWithTransaction(w http.ResponseWriter, statusCode int, transaction string) {
	RespondWithJSON(w, statusCode, TransactionResponse{
		StatusCode:  statusCode,
		Transaction: transaction,
	})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
