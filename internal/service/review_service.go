package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	triggerReviewCreated = "review_created"
	triggerReviewDeleted = "review_deleted"
)

// ReviewInput carries a new review. A zero CommentDate means now.
type ReviewInput struct {
	ProductID   uuid.UUID
	Grade       int
	Comment     string
	CommentDate time.Time
}

// ReviewService defines the interface for review business logic
type ReviewService interface {
	ListActive(ctx context.Context) ([]*domain.Review, error)
	ListForProduct(ctx context.Context, productSlug string) ([]*domain.Review, error)
	RecordReview(ctx context.Context, caller domain.Caller, input ReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, caller domain.Caller, reviewID uuid.UUID) error
}

type reviewService struct {
	session           repository.Session
	logger            *zap.Logger
	recomputeOnDelete bool
}

// NewReviewService creates a new instance of ReviewService. When
// recomputeOnDelete is false a soft-deleted review keeps counting towards
// the product rating until the next review is recorded.
func NewReviewService(session repository.Session, logger *zap.Logger, recomputeOnDelete bool) ReviewService {
	return &reviewService{
		session:           session,
		logger:            logger,
		recomputeOnDelete: recomputeOnDelete,
	}
}

func (s *reviewService) ListActive(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.session.Reviews().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) ListForProduct(ctx context.Context, productSlug string) ([]*domain.Review, error) {
	product, err := s.session.Products().FindBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	return s.session.Reviews().ListActiveByProduct(ctx, product.ID)
}

// RecordReview inserts the review and refreshes the product rating in one
// transaction
func (s *reviewService) RecordReview(ctx context.Context, caller domain.Caller, input ReviewInput) (*domain.Review, error) {
	if !CanWriteReview(caller) {
		return nil, ErrForbidden
	}

	commentDate := input.CommentDate
	if commentDate.IsZero() {
		commentDate = time.Now()
	}

	review := &domain.Review{
		ID:          uuid.New(),
		UserID:      caller.UserID,
		ProductID:   input.ProductID,
		Comment:     input.Comment,
		CommentDate: commentDate,
		Grade:       input.Grade,
		IsActive:    true,
	}

	err := s.session.Transaction(ctx, func(tx repository.Session) error {
		if _, err := tx.Products().FindByID(ctx, input.ProductID); err != nil {
			return err
		}

		if err := tx.Reviews().Create(ctx, review); err != nil {
			return err
		}

		rating, updated, err := RecomputeRating(ctx, tx, input.ProductID)
		if err != nil {
			return err
		}
		metrics.RatingRecomputations.WithLabelValues(triggerReviewCreated).Inc()

		s.logger.Info("Review recorded",
			zap.String("review_id", review.ID.String()),
			zap.String("product_id", input.ProductID.String()),
			zap.Int("grade", input.Grade),
			zap.Stringer("rating", rating),
			zap.Bool("rating_updated", updated),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// DeleteReview soft-deletes a review
func (s *reviewService) DeleteReview(ctx context.Context, caller domain.Caller, reviewID uuid.UUID) error {
	if !CanDeleteReview(caller) {
		return ErrForbidden
	}

	return s.session.Transaction(ctx, func(tx repository.Session) error {
		review, err := tx.Reviews().FindByID(ctx, reviewID)
		if err != nil {
			return err
		}

		if err := tx.Reviews().Deactivate(ctx, review.ID); err != nil {
			return err
		}

		if !s.recomputeOnDelete {
			return nil
		}

		if _, _, err := RecomputeRating(ctx, tx, review.ProductID); err != nil {
			return err
		}
		metrics.RatingRecomputations.WithLabelValues(triggerReviewDeleted).Inc()
		return nil
	})
}

// AverageGrade returns the mean grade rounded half away from zero to two
// decimal places. ok is false when there are no grades to average.
func AverageGrade(totals repository.GradeTotals) (avg decimal.Decimal, ok bool) {
	if totals.Count == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(totals.Sum).DivRound(decimal.NewFromInt(totals.Count), 2), true
}

// RecomputeRating sets the product rating to the average grade of its
// active reviews, using the session it is given. With no active reviews the
// stored rating is left as it is and updated is false.
func RecomputeRating(ctx context.Context, tx repository.Session, productID uuid.UUID) (rating decimal.Decimal, updated bool, err error) {
	totals, err := tx.Reviews().ActiveGradeTotals(ctx, productID)
	if err != nil {
		return decimal.Zero, false, err
	}

	rating, ok := AverageGrade(totals)
	if !ok {
		metrics.RatingRecomputationsSkipped.Inc()
		return decimal.Zero, false, nil
	}

	if err := tx.Products().SetRating(ctx, productID, rating); err != nil {
		return decimal.Zero, false, err
	}

	return rating, true, nil
}
