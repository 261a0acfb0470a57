package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinGrade = 1
	MaxGrade = 5
)

// Review is a customer's grade and comment on a product. Only IsActive may
// change after creation.
type Review struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Comment     string    `json:"comment" gorm:"type:text"`
	CommentDate time.Time `json:"comment_date"`
	Grade       int       `json:"grade" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
}
