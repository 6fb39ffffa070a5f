package services

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeEmptyCart            ErrorCode = "EmptyCart"
	CodeMultiStoreNotAllowed ErrorCode = "MultiStoreNotAllowed"
	CodeCheckoutStockFailed  ErrorCode = "CheckoutStockFailed"
	CodeInvalidAddress       ErrorCode = "InvalidAddress"
	CodeInvalidDiscountCode  ErrorCode = "InvalidDiscountCode"
	CodeInsufficientStock    ErrorCode = "InsufficientStock"
	CodeNoVariantAvailable   ErrorCode = "NoVariantAvailable"
	CodeInvalidQuantity      ErrorCode = "InvalidQuantity"
	CodeProductNotFound      ErrorCode = "ProductNotFound"
	CodeVariantNotFound      ErrorCode = "VariantNotFound"
	CodeLineNotFound         ErrorCode = "LineNotFound"
	CodeInvalidSize          ErrorCode = "InvalidSize"
	CodeInvalidInput         ErrorCode = "InvalidInput"
	CodeDuplicateVariant     ErrorCode = "DuplicateVariant"
	CodeVariantInUse         ErrorCode = "VariantInUse"
	CodeNoVariantsMatched    ErrorCode = "NoVariantsMatched"
	CodeDuplicateAttribute   ErrorCode = "DuplicateAttribute"
	CodeAttributeInUse       ErrorCode = "AttributeInUse"
	CodeAttributeNotFound    ErrorCode = "AttributeNotFound"
	CodeOrderNotFound        ErrorCode = "OrderNotFound"
	CodeInvalidTransition    ErrorCode = "InvalidTransition"
	CodeOrderTerminal        ErrorCode = "OrderTerminal"
	CodeConflict             ErrorCode = "Conflict"
	CodeInternal             ErrorCode = "Internal"
)

// Error is the failure type returned by every service. Two errors match
// under errors.Is when their codes are equal, so callers compare against
// the Err* sentinels below.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// conflict marks a failure caused by a competing writer. The client may
// retry the same request.
func conflict(code ErrorCode, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Retryable: true, Err: err}
}

func internal(err error, format string, args ...interface{}) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

var (
	ErrEmptyCart            = &Error{Code: CodeEmptyCart, Message: "cart is empty"}
	ErrMultiStoreNotAllowed = &Error{Code: CodeMultiStoreNotAllowed, Message: "cart holds products from more than one store"}
	ErrCheckoutStockFailed  = &Error{Code: CodeCheckoutStockFailed, Message: "stock changed during checkout"}
	ErrInvalidAddress       = &Error{Code: CodeInvalidAddress, Message: "address cannot be used for delivery"}
	ErrInvalidDiscountCode  = &Error{Code: CodeInvalidDiscountCode, Message: "discount code is not valid"}
	ErrInsufficientStock    = &Error{Code: CodeInsufficientStock, Message: "not enough stock"}
	ErrNoVariantAvailable   = &Error{Code: CodeNoVariantAvailable, Message: "no variant in stock"}
	ErrInvalidQuantity      = &Error{Code: CodeInvalidQuantity, Message: "quantity must be at least 1"}
	ErrProductNotFound      = &Error{Code: CodeProductNotFound, Message: "product not found"}
	ErrVariantNotFound      = &Error{Code: CodeVariantNotFound, Message: "variant not found"}
	ErrLineNotFound         = &Error{Code: CodeLineNotFound, Message: "cart line not found"}
	ErrInvalidSize          = &Error{Code: CodeInvalidSize, Message: "size does not fit the product"}
	ErrInvalidInput         = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrDuplicateVariant     = &Error{Code: CodeDuplicateVariant, Message: "variant already exists"}
	ErrVariantInUse         = &Error{Code: CodeVariantInUse, Message: "variant is referenced by an open order"}
	ErrNoVariantsMatched    = &Error{Code: CodeNoVariantsMatched, Message: "no variants matched the filter"}
	ErrDuplicateAttribute   = &Error{Code: CodeDuplicateAttribute, Message: "attribute already exists"}
	ErrAttributeInUse       = &Error{Code: CodeAttributeInUse, Message: "attribute is used by variants"}
	ErrAttributeNotFound    = &Error{Code: CodeAttributeNotFound, Message: "attribute not found"}
	ErrOrderNotFound        = &Error{Code: CodeOrderNotFound, Message: "order not found"}
	ErrInvalidTransition    = &Error{Code: CodeInvalidTransition, Message: "status change not allowed"}
	ErrOrderTerminal        = &Error{Code: CodeOrderTerminal, Message: "order is already closed"}
	ErrConflict             = &Error{Code: CodeConflict, Message: "resource is busy, please retry", Retryable: true}
	ErrInternal             = &Error{Code: CodeInternal, Message: "internal error"}
)

// AsError extracts the service error from err. Anything else is reported
// as an internal error wrapping err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internal(err, "internal error")
}
