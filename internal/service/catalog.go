package service

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// ResolveDescendants returns rootID followed by the ids of every category
// below it, level by level. It issues one ChildIDs query per tree level, so
// the number of round-trips is bounded by the depth of the tree and not by
// its size. Ids already collected are never expanded again, which keeps the
// walk finite even if the stored tree is malformed.
func ResolveDescendants(ctx context.Context, categories repository.CategoryRepository, rootID uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{rootID: {}}
	ids := []uuid.UUID{rootID}
	frontier := []uuid.UUID{rootID}
	depth := 0

	for len(frontier) > 0 {
		children, err := categories.ChildIDs(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve descendants of %s: %w", rootID, err)
		}

		next := make([]uuid.UUID, 0, len(children))
		for _, id := range children {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			next = append(next, id)
		}

		if len(next) > 0 {
			depth++
		}
		frontier = next
	}

	metrics.CategoryTraversalDepth.Observe(float64(depth))
	metrics.CategoryTraversalSize.Observe(float64(len(ids)))

	return ids, nil
}

// ProductsInCategories returns the active, in-stock products that belong to
// any of the given categories
func ProductsInCategories(ctx context.Context, products repository.ProductRepository, categoryIDs []uuid.UUID) ([]*domain.Product, error) {
	result, err := products.ListAvailableInCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list products in categories: %w", err)
	}
	return result, nil
}
