package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/db/testdb"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashOperatorToken(t *testing.T) {
	var out bytes.Buffer
	err := NewApp(&out).Run(context.Background(), []string{"storefront", "hash-operator-token", "a-long-operator-token"})
	require.NoError(t, err)

	line := strings.TrimSpace(out.String())
	require.True(t, strings.HasPrefix(line, "OPERATOR_TOKEN_HASH="))
	hash := strings.TrimPrefix(line, "OPERATOR_TOKEN_HASH=")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("a-long-operator-token")))
}

func TestGenerateKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.env")
	err := NewApp(&bytes.Buffer{}).Run(context.Background(), []string{"storefront", "generate-keys", "--out", path})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "APP_AUTH_KEY=")
	assert.Contains(t, string(raw), "APP_ENC_KEY=")
	assert.Contains(t, string(raw), "CSRF_KEY=")
}

func TestVerifyOrders(t *testing.T) {
	db := testdb.Open(t)
	orderSvc := services.NewOrderService(db, repositories.NewOrderRepository(db), repositories.NewOrderStatusRepository(db))

	order := &models.Order{
		UserID:         "u1",
		StoreID:        "s1",
		Status:         models.OrderStatusPending,
		Subtotal:       decimal.NewFromInt(5000),
		DeliveryFee:    decimal.NewFromInt(1000),
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.NewFromInt(6000),
		PaymentMethod:  models.PaymentMethodCOD,
		OrderItems: []models.OrderItem{
			{ProductID: "p1", ProductName: "Shirt", Quantity: 1, Price: decimal.NewFromInt(5000)},
		},
	}
	require.NoError(t, db.Create(order).Error)

	var out bytes.Buffer
	require.NoError(t, verifyOrders(context.Background(), &out, orderSvc))
	assert.Contains(t, out.String(), "checked 1 orders, 0 mismatched")

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).Update("total_amount", decimal.NewFromInt(1)).Error)
	out.Reset()
	assert.Error(t, verifyOrders(context.Background(), &out, orderSvc))
	assert.Contains(t, out.String(), order.ID)
}
