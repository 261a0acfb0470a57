package service

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/repository/sqlitetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	adminCaller    = domain.Caller{UserID: uuid.New(), Username: "admin", IsAdmin: true}
	customerCaller = domain.Caller{UserID: uuid.New(), Username: "customer", IsCustomer: true}
)

func newSupplier() domain.Caller {
	return domain.Caller{UserID: uuid.New(), Username: "supplier", IsSupplier: true}
}

func newTestSession(t *testing.T) *repository.Store {
	return repository.NewStore(sqlitetest.Open(t))
}

func mustCreateCategory(t *testing.T, svc CategoryService, name string, parent *uuid.UUID) *domain.Category {
	t.Helper()

	category, err := svc.Create(context.Background(), adminCaller, CategoryInput{Name: name, ParentID: parent})
	if err != nil {
		t.Fatalf("Failed to create category %s: %v", name, err)
	}
	return category
}

func mustCreateProduct(t *testing.T, svc ProductService, owner domain.Caller, name string, categoryID uuid.UUID, stock int) *domain.Product {
	t.Helper()

	product, err := svc.Create(context.Background(), owner, ProductInput{
		Name:        name,
		Description: "description of " + name,
		Price:       decimal.RequireFromString("19.90"),
		Stock:       stock,
		CategoryID:  categoryID,
	})
	if err != nil {
		t.Fatalf("Failed to create product %s: %v", name, err)
	}
	return product
}

type catalogFixture struct {
	session    *repository.Store
	categories CategoryService
	products   ProductService
	reviews    ReviewService
	supplier   domain.Caller
}

func newCatalogFixture(t *testing.T, recomputeOnDelete bool) *catalogFixture {
	session := newTestSession(t)
	logger := zap.NewNop()
	return &catalogFixture{
		session:    session,
		categories: NewCategoryService(session, logger),
		products:   NewProductService(session, logger),
		reviews:    NewReviewService(session, logger, recomputeOnDelete),
		supplier:   newSupplier(),
	}
}

func productSlugs(products []*domain.Product) map[string]bool {
	set := make(map[string]bool, len(products))
	for _, p := range products {
		set[p.Slug] = true
	}
	return set
}
