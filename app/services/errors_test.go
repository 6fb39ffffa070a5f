package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := newError(CodeInsufficientStock, "only %d left", 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrVariantNotFound)

	wrapped := fmt.Errorf("cart add: %w", err)
	assert.ErrorIs(t, wrapped, ErrInsufficientStock)
	assert.Equal(t, CodeInsufficientStock, AsError(wrapped).Code)
}

func TestAsError_WrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	got := AsError(cause)
	assert.Equal(t, CodeInternal, got.Code)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, AsError(nil))
}

func TestConflict_IsRetryable(t *testing.T) {
	err := conflict(CodeCheckoutStockFailed, errors.New("deadlock"), "retry")
	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, ErrCheckoutStockFailed)
}
