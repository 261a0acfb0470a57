package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Session groups the repositories bound to one database handle. A session
// obtained from Transaction runs every repository call in that transaction.
type Session interface {
	Categories() CategoryRepository
	Products() ProductRepository
	Reviews() ReviewRepository
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
	Transaction(ctx context.Context, fn func(tx Session) error) error
}

// Store is the gorm-backed Session
type Store struct {
	db *gorm.DB
}

// NewStore creates a Session over db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Categories() CategoryRepository {
	return NewCategoryRepository(s.db)
}

func (s *Store) Products() ProductRepository {
	return NewProductRepository(s.db)
}

func (s *Store) Reviews() ReviewRepository {
	return NewReviewRepository(s.db)
}

func (s *Store) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *Store) RefreshTokens() RefreshTokenRepository {
	return NewRefreshTokenRepository(s.db)
}

// Transaction runs fn in a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx Session) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
