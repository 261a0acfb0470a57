package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryRequest is the payload of category creation and update. Without
// parent_id the category is a root.
type CategoryRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

func (c CategoryRequest) input() service.CategoryInput {
	input := service.CategoryInput{Name: c.Name}
	if c.ParentID != nil {
		id := uuid.MustParse(*c.ParentID)
		input.ParentID = &id
	}
	return input
}

// DescendantsResponse lists a category followed by every category below it
type DescendantsResponse struct {
	Category    string      `json:"category"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

// CategoryHandler handles HTTP requests for the category tree
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{category_slug}/descendants", h.Descendants)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.Require(service.CanManageCategories, h.logger))
			r.Post("/", h.Create)
			r.Put("/{category_slug}", h.Update)
		})
	})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Descendants(w http.ResponseWriter, r *http.Request) {
	categorySlug := chi.URLParam(r, "category_slug")

	ids, err := h.categoryService.Descendants(r.Context(), categorySlug)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, DescendantsResponse{
		Category:    categorySlug,
		CategoryIDs: ids,
	})
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if _, err := h.categoryService.Create(r.Context(), callerFrom(r), req.input()); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithTransaction(w, http.StatusCreated, TransactionSuccessful)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	_, err := h.categoryService.Update(r.Context(), callerFrom(r), chi.URLParam(r, "category_slug"), req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithTransaction(w, http.StatusOK, TransactionCategoryEdit)
}
