package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/slug"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrParentCategoryNotFound = errors.New("parent category not found")
	ErrCategoryCycle          = errors.New("category cannot be placed under itself or one of its subcategories")
)

// CategoryInput carries the editable attributes of a category. A nil
// ParentID makes the category a root.
type CategoryInput struct {
	Name     string
	ParentID *uuid.UUID
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Descendants(ctx context.Context, categorySlug string) ([]uuid.UUID, error)
	Create(ctx context.Context, caller domain.Caller, input CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, caller domain.Caller, categorySlug string, input CategoryInput) (*domain.Category, error)
}

type categoryService struct {
	session repository.Session
	logger  *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(session repository.Session, logger *zap.Logger) CategoryService {
	return &categoryService{session: session, logger: logger}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.session.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) Descendants(ctx context.Context, categorySlug string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.session.Transaction(ctx, func(tx repository.Session) error {
		category, err := tx.Categories().FindBySlug(ctx, categorySlug)
		if err != nil {
			return err
		}
		ids, err = ResolveDescendants(ctx, tx.Categories(), category.ID)
		return err
	})
	return ids, err
}

func (s *categoryService) Create(ctx context.Context, caller domain.Caller, input CategoryInput) (*domain.Category, error) {
	if !CanManageCategories(caller) {
		return nil, ErrForbidden
	}

	now := time.Now()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      input.Name,
		Slug:      slug.Make(input.Name),
		ParentID:  input.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.session.Transaction(ctx, func(tx repository.Session) error {
		if err := checkParentExists(ctx, tx, input.ParentID); err != nil {
			return err
		}
		return tx.Categories().Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug),
	)

	return category, nil
}

// Update renames or re-parents a category. Moving a category below itself
// or any of its descendants is rejected with ErrCategoryCycle.
func (s *categoryService) Update(ctx context.Context, caller domain.Caller, categorySlug string, input CategoryInput) (*domain.Category, error) {
	if !CanManageCategories(caller) {
		return nil, ErrForbidden
	}

	var category *domain.Category
	err := s.session.Transaction(ctx, func(tx repository.Session) error {
		var err error
		category, err = tx.Categories().FindBySlug(ctx, categorySlug)
		if err != nil {
			return err
		}

		if input.ParentID != nil {
			if err := checkParentExists(ctx, tx, input.ParentID); err != nil {
				return err
			}

			subtree, err := ResolveDescendants(ctx, tx.Categories(), category.ID)
			if err != nil {
				return err
			}
			for _, id := range subtree {
				if id == *input.ParentID {
					return ErrCategoryCycle
				}
			}
		}

		category.Name = input.Name
		category.Slug = slug.Make(input.Name)
		category.ParentID = input.ParentID
		category.UpdatedAt = time.Now()

		return tx.Categories().Update(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	return category, nil
}

func checkParentExists(ctx context.Context, tx repository.Session, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if _, err := tx.Categories().FindByID(ctx, *parentID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrParentCategoryNotFound
		}
		return err
	}
	return nil
}
