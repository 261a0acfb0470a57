package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository/sqlitetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	db := sqlitetest.Open(t)
	return NewStore(db), db
}

func mustCreateCategory(t *testing.T, s Session, name string, parent *uuid.UUID) *domain.Category {
	t.Helper()

	now := time.Now()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      name,
		ParentID:  parent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Categories().Create(context.Background(), category); err != nil {
		t.Fatalf("Failed to create category %s: %v", name, err)
	}
	return category
}

func mustCreateProduct(t *testing.T, s Session, name string, categoryID uuid.UUID, stock int) *domain.Product {
	t.Helper()

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        name,
		Description: "description of " + name,
		Price:       decimal.RequireFromString("9.99"),
		Stock:       stock,
		IsActive:    true,
		SupplierID:  uuid.New(),
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Products().Create(context.Background(), product); err != nil {
		t.Fatalf("Failed to create product %s: %v", name, err)
	}
	return product
}

func mustCreateReview(t *testing.T, s Session, productID uuid.UUID, grade int) *domain.Review {
	t.Helper()

	review := &domain.Review{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		ProductID:   productID,
		Comment:     "comment",
		CommentDate: time.Now(),
		Grade:       grade,
		IsActive:    true,
	}
	if err := s.Reviews().Create(context.Background(), review); err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	return review
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
