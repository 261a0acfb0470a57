package transport

import (
	"net/http"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewRequest is the payload of review creation. A missing comment_date
// means now.
type ReviewRequest struct {
	ProductID   string     `json:"product_id" validate:"required,uuid"`
	Grade       int        `json:"grade" validate:"required,min=1,max=5"`
	Comment     string     `json:"comment" validate:"max=2000"`
	CommentDate *time.Time `json:"comment_date"`
}

// ReviewHandler handles HTTP requests for product reviews
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers all review routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{product_slug}", h.ListForProduct)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(middleware.Require(service.CanWriteReview, h.logger)).Post("/", h.Create)
			r.With(middleware.Require(service.CanDeleteReview, h.logger)).Delete("/{review_id}", h.Delete)
		})
	})
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListActive(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

// ListForProduct returns the active reviews of a product. An existing
// product without reviews yields an empty list.
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListForProduct(r.Context(), chi.URLParam(r, "product_slug"))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

// Create records a review and refreshes the product rating
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	input := service.ReviewInput{
		ProductID: uuid.MustParse(req.ProductID),
		Grade:     req.Grade,
		Comment:   req.Comment,
	}
	if req.CommentDate != nil {
		input.CommentDate = *req.CommentDate
	}

	if _, err := h.reviewService.RecordReview(r.Context(), callerFrom(r), input); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithTransaction(w, http.StatusCreated, TransactionSuccessful)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reviewID, err := uuid.Parse(chi.URLParam(r, "review_id"))
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "review_id", Message: "Invalid UUID format"},
		})
		return
	}

	if err := h.reviewService.DeleteReview(r.Context(), callerFrom(r), reviewID); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithTransaction(w, http.StatusOK, TransactionReviewDelete)
}
