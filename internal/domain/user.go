package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. The role flags are independent:
// an account can be both supplier and customer.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string    `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	FirstName    string    `json:"first_name" gorm:"size:100"`
	LastName     string    `json:"last_name" gorm:"size:100"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null"`
	IsSupplier   bool      `json:"is_supplier" gorm:"not null"`
	IsCustomer   bool      `json:"is_customer" gorm:"not null"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Caller returns the claim set an access token for this user carries.
func (u *User) Caller() Caller {
	return Caller{
		UserID:     u.ID,
		Username:   u.Username,
		IsAdmin:    u.IsAdmin,
		IsSupplier: u.IsSupplier,
		IsCustomer: u.IsCustomer,
	}
}

// RefreshToken represents a long-lived token used to mint access tokens
type RefreshToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Token     string    `json:"token" gorm:"size:255;not null;uniqueIndex"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `json:"revoked" gorm:"not null"`
}

// Caller is the authenticated identity of a request, as decoded from its
// access token.
type Caller struct {
	UserID     uuid.UUID
	Username   string
	IsAdmin    bool
	IsSupplier bool
	IsCustomer bool
}
