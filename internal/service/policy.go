package service

import (
	"errors"

	"storefront/internal/domain"
)

// ErrForbidden is returned when the caller's claims do not allow an operation
var ErrForbidden = errors.New("you are not authorized to use this method")

// CanManageProducts reports whether the caller may create products
func CanManageProducts(caller domain.Caller) bool {
	return caller.IsAdmin || caller.IsSupplier
}

// CanModifyProduct reports whether the caller may update or delete product.
// Suppliers may only touch their own products.
func CanModifyProduct(caller domain.Caller, product *domain.Product) bool {
	return caller.IsAdmin || product.SupplierID == caller.UserID
}

// CanWriteReview reports whether the caller may post reviews
func CanWriteReview(caller domain.Caller) bool {
	return caller.IsAdmin || caller.IsCustomer
}

// CanDeleteReview reports whether the caller may soft-delete reviews
func CanDeleteReview(caller domain.Caller) bool {
	return caller.IsAdmin
}

// CanManageCategories reports whether the caller may create or edit categories
func CanManageCategories(caller domain.Caller) bool {
	return caller.IsAdmin
}

// CanManageUsers reports whether the caller may change other users' roles
func CanManageUsers(caller domain.Caller) bool {
	return caller.IsAdmin
}
