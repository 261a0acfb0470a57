package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this slug already exists")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	SetRating(ctx context.Context, id uuid.UUID, rating decimal.Decimal) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindAvailableBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListAvailable(ctx context.Context) ([]*domain.Product, error)
	// ListAvailableInCategories returns active, in-stock products whose
	// category is one of categoryIDs.
	ListAvailableInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]*domain.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) available(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("is_active = ? AND stock > ?", true, 0)
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the editable fields of product. Rating, supplier and the
// active flag are not touched.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"slug":        product.Slug,
			"description": product.Description,
			"price":       product.Price,
			"image_url":   product.ImageURL,
			"stock":       product.Stock,
			"category_id": product.CategoryID,
			"updated_at":  product.UpdatedAt,
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to update product: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Deactivate soft-deletes a product; the row stays in place
func (r *productRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.updateColumn(ctx, id, "is_active", false)
}

func (r *productRepository) SetRating(ctx context.Context, id uuid.UUID, rating decimal.Decimal) error {
	return r.updateColumn(ctx, id, "rating", rating)
}

func (r *productRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Update(column, value)

	if result.Error != nil {
		return fmt.Errorf("failed to update product %s: %w", column, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.first(r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *productRepository) FindAvailableBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.first(r.available(ctx).Where("slug = ?", slug))
}

func (r *productRepository) first(query *gorm.DB) (*domain.Product, error) {
	product := &domain.Product{}
	if err := query.First(product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

func (r *productRepository) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	if err := r.available(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *productRepository) ListAvailableInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]*domain.Product, error) {
	products := []*domain.Product{}
	if len(categoryIDs) == 0 {
		return products, nil
	}

	err := r.available(ctx).
		Where("category_id IN ?", categoryIDs).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}

	return products, nil
}
