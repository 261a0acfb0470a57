package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Rating is derived from the
// product's active reviews and cached on the row.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Slug        string          `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL    string          `json:"image_url" gorm:"size:500"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Rating      decimal.Decimal `json:"rating" gorm:"type:decimal(4,2);not null;default:0"`
	IsActive    bool            `json:"is_active" gorm:"not null"`
	SupplierID  uuid.UUID       `json:"supplier_id" gorm:"type:uuid;not null;index"`
	CategoryID  uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Available reports whether the product shows up in public listings.
func (p *Product) Available() bool {
	return p.IsActive && p.Stock > 0
}

// Category represents a product category. Categories form a forest through
// ParentID; roots have a nil parent.
type Category struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Slug      string     `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsRoot returns true when the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
