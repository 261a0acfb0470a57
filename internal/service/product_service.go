package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/slug"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput carries the editable attributes of a product
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Stock       int
	CategoryID  uuid.UUID
}

// ProductService defines the interface for product business logic
type ProductService interface {
	ListAvailable(ctx context.Context) ([]*domain.Product, error)
	ListByCategorySlug(ctx context.Context, categorySlug string) ([]*domain.Product, error)
	Detail(ctx context.Context, productSlug string) (*domain.Product, error)
	Create(ctx context.Context, caller domain.Caller, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, caller domain.Caller, productSlug string, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, caller domain.Caller, productSlug string) error
}

type productService struct {
	session repository.Session
	logger  *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(session repository.Session, logger *zap.Logger) ProductService {
	return &productService{session: session, logger: logger}
}

func (s *productService) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.session.Products().ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListByCategorySlug returns the available products of the category and of
// every category below it
func (s *productService) ListByCategorySlug(ctx context.Context, categorySlug string) ([]*domain.Product, error) {
	var products []*domain.Product

	err := s.session.Transaction(ctx, func(tx repository.Session) error {
		category, err := tx.Categories().FindBySlug(ctx, categorySlug)
		if err != nil {
			return err
		}

		ids, err := ResolveDescendants(ctx, tx.Categories(), category.ID)
		if err != nil {
			return err
		}

		s.logger.Debug("Resolved category subtree",
			zap.String("category", categorySlug),
			zap.Int("categories", len(ids)),
		)

		products, err = ProductsInCategories(ctx, tx.Products(), ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (s *productService) Detail(ctx context.Context, productSlug string) (*domain.Product, error) {
	return s.session.Products().FindAvailableBySlug(ctx, productSlug)
}

// Create stores a new product owned by the caller. The slug is derived
// from the name and the rating starts at zero.
func (s *productService) Create(ctx context.Context, caller domain.Caller, input ProductInput) (*domain.Product, error) {
	if !CanManageProducts(caller) {
		return nil, ErrForbidden
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
		Rating:      decimal.Zero,
		IsActive:    true,
		SupplierID:  caller.UserID,
		CategoryID:  input.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.session.Transaction(ctx, func(tx repository.Session) error {
		if _, err := tx.Categories().FindByID(ctx, input.CategoryID); err != nil {
			return err
		}
		return tx.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
		zap.String("supplier_id", caller.UserID.String()),
	)

	return product, nil
}

func (s *productService) Update(ctx context.Context, caller domain.Caller, productSlug string, input ProductInput) (*domain.Product, error) {
	if !CanManageProducts(caller) {
		return nil, ErrForbidden
	}

	var product *domain.Product
	err := s.session.Transaction(ctx, func(tx repository.Session) error {
		var err error
		product, err = s.ownedProduct(ctx, tx, caller, productSlug)
		if err != nil {
			return err
		}

		if _, err := tx.Categories().FindByID(ctx, input.CategoryID); err != nil {
			return err
		}

		product.Name = input.Name
		product.Slug = slug.Make(input.Name)
		product.Description = input.Description
		product.Price = input.Price
		product.ImageURL = input.ImageURL
		product.Stock = input.Stock
		product.CategoryID = input.CategoryID
		product.UpdatedAt = time.Now()

		return tx.Products().Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// Delete soft-deletes the product; it disappears from listings but its
// row and reviews are kept
func (s *productService) Delete(ctx context.Context, caller domain.Caller, productSlug string) error {
	if !CanManageProducts(caller) {
		return ErrForbidden
	}

	return s.session.Transaction(ctx, func(tx repository.Session) error {
		product, err := s.ownedProduct(ctx, tx, caller, productSlug)
		if err != nil {
			return err
		}

		if err := tx.Products().Deactivate(ctx, product.ID); err != nil {
			return err
		}

		s.logger.Info("Product deactivated", zap.String("product_id", product.ID.String()))
		return nil
	})
}

// ownedProduct loads the product by slug and checks the caller may modify
// it. A missing product is reported before ownership.
func (s *productService) ownedProduct(ctx context.Context, tx repository.Session, caller domain.Caller, productSlug string) (*domain.Product, error) {
	product, err := tx.Products().FindBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	if !CanModifyProduct(caller, product) {
		s.logger.Warn("Caller does not own product",
			zap.String("user_id", caller.UserID.String()),
			zap.String("product_id", product.ID.String()),
		)
		return nil, ErrForbidden
	}

	return product, nil
}
