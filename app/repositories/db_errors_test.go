package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062})))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: variants.product_id")))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1205}))
	assert.False(t, IsDuplicateKey(nil))
}

func TestIsLockConflict(t *testing.T) {
	assert.True(t, IsLockConflict(&mysql.MySQLError{Number: 1205}))
	assert.True(t, IsLockConflict(fmt.Errorf("lock: %w", &mysql.MySQLError{Number: 1213})))
	assert.True(t, IsLockConflict(context.DeadlineExceeded))
	assert.False(t, IsLockConflict(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsLockConflict(nil))
}
