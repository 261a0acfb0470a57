package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the payload of product creation and update
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required,uuid"`
}

func (p ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		CategoryID:  uuid.MustParse(p.Category),
	}
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/detail/{product_slug}", h.Detail)
		r.Get("/{category_slug}", h.ListByCategory)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.Require(service.CanManageProducts, h.logger))
			r.Post("/", h.Create)
			r.Put("/{product_slug}", h.Update)
			r.Delete("/{product_slug}", h.Delete)
		})
	})
}

// List returns every active, in-stock product
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListAvailable(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListByCategory returns the available products of a category and its
// subcategories
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListByCategorySlug(r.Context(), chi.URLParam(r, "category_slug"))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.Detail(r.Context(), chi.URLParam(r, "product_slug"))
	if errors.Is(err, repository.ErrProductNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "There are no product")
		return
	}
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if _, err := h.productService.Create(r.Context(), callerFrom(r), req.input()); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithTransaction(w, http.StatusCreated, TransactionSuccessful)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	_, err := h.productService.Update(r.Context(), callerFrom(r), chi.URLParam(r, "product_slug"), req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithTransaction(w, http.StatusOK, TransactionProductUpdate)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.productService.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "product_slug")); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithTransaction(w, http.StatusOK, TransactionProductDelete)
}
