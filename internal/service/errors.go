package service

import "errors"

// Domain validation errors. All are rejected before any local write and
// surfaced synchronously to the caller.
var (
	ErrNotLoggedIn           = errors.New("not logged in")
	ErrItemNameRequired      = errors.New("item name is required")
	ErrCategoryNameRequired  = errors.New("category name is required")
	ErrEmptyCart             = errors.New("sale has no items")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrFractionalNotAllowed  = errors.New("item does not allow fractional quantities")
	ErrNoActiveFloat         = errors.New("no active float for today")
	ErrFloatAlreadyActive    = errors.New("a float is already active for today")
	ErrInvalidOpeningBalance = errors.New("opening balance must be positive")
	ErrInvalidWithdrawal     = errors.New("withdrawal amount must be positive")
	ErrFloatBalanceExceeded  = errors.New("withdrawal exceeds float balance")
	ErrEmptyRestock          = errors.New("restock has no items")
	ErrSaleNotReturnable     = errors.New("only completed sales can be returned")
	ErrSupplierRequired      = errors.New("supplier name is required")
	ErrReasonRequired        = errors.New("editing this field requires a reason")
)
