package transport

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"go.uber.org/zap"
)

// Outcome strings of successful mutating requests
const (
	TransactionSuccessful    = "Successful"
	TransactionProductUpdate = "Product update is successful"
	TransactionProductDelete = "Product delete is successful"
	TransactionReviewDelete  = "Review delete is successful"
	TransactionCategoryEdit  = "Category update is successful"
	TransactionPermissions   = "Permissions update is successful"
)

const (
	detailNoProduct        = "There is no product found"
	detailNoCategory       = "There is no category found"
	detailNoParentCategory = "There is no parent category found"
	detailNoReview         = "There is no review found"
	detailNoUser           = "There is no user found"
)

type errorMapping struct {
	target error
	status int
	detail string
}

// errorMappings is matched in order with errors.Is. An empty detail uses
// the error text.
var errorMappings = []errorMapping{
	{repository.ErrProductNotFound, http.StatusNotFound, detailNoProduct},
	{repository.ErrCategoryNotFound, http.StatusNotFound, detailNoCategory},
	{service.ErrParentCategoryNotFound, http.StatusNotFound, detailNoParentCategory},
	{repository.ErrReviewNotFound, http.StatusNotFound, detailNoReview},
	{repository.ErrUserNotFound, http.StatusNotFound, detailNoUser},
	{service.ErrForbidden, http.StatusForbidden, middleware.ForbiddenMessage},
	{repository.ErrProductAlreadyExists, http.StatusConflict, ""},
	{repository.ErrCategoryAlreadyExists, http.StatusConflict, ""},
	{repository.ErrUserAlreadyExists, http.StatusConflict, ""},
	{service.ErrCategoryCycle, http.StatusConflict, ""},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, ""},
	{service.ErrInvalidToken, http.StatusUnauthorized, ""},
	{service.ErrTokenExpired, http.StatusUnauthorized, ""},
	{service.ErrInactiveUser, http.StatusUnauthorized, ""},
}

// respondWithServiceError maps a service or repository error onto an HTTP
// error response. Unknown errors are logged and answered with 500.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			detail := m.detail
			if detail == "" {
				detail = m.target.Error()
			}
			middleware.RespondWithError(w, m.status, detail)
			return
		}
	}

	logger.Error("Request failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

// decodeRequest decodes and validates the body into v, answering 400 on
// failure. It reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))
		middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
		return false
	}
	return true
}

// callerFrom returns the authenticated caller. Routes that call it run
// behind AuthMiddleware; without a caller the zero value has no rights.
func callerFrom(r *http.Request) domain.Caller {
	caller, _ := middleware.GetCaller(r.Context())
	return caller
}
