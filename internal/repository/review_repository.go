package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound = errors.New("review not found")
)

// GradeTotals is the aggregate of a product's active review grades
type GradeTotals struct {
	Sum   int64 `gorm:"column:grade_sum"`
	Count int64 `gorm:"column:grade_count"`
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListActive(ctx context.Context) ([]*domain.Review, error)
	ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error)
	ActiveGradeTotals(ctx context.Context, productID uuid.UUID) (GradeTotals, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("id = ?", id).
		Update("is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to deactivate review: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review := &domain.Review{}
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return review, nil
}

func (r *reviewRepository) ListActive(ctx context.Context) ([]*domain.Review, error) {
	reviews := []*domain.Review{}
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("comment_date DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error) {
	reviews := []*domain.Review{}
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("comment_date DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list product reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) ActiveGradeTotals(ctx context.Context, productID uuid.UUID) (GradeTotals, error) {
	var totals GradeTotals
	err := r.db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("COALESCE(SUM(grade), 0) AS grade_sum, COUNT(*) AS grade_count").
		Where("product_id = ? AND is_active = ?", productID, true).
		Scan(&totals).Error
	if err != nil {
		return GradeTotals{}, fmt.Errorf("failed to aggregate review grades: %w", err)
	}
	return totals, nil
}
