package services

import (
	"context"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/db/testdb"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/metrics"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	carts    *sessions.LRUCartStore
	metrics  *metrics.Metrics
	attrs    *AttributeService
	matrix   *VariantMatrixService
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
}

func newFixture(t *testing.T, cities ...string) *fixture {
	t.Helper()
	return newFixtureOn(t, testdb.Open(t), cities...)
}

func newFixtureOn(t *testing.T, db *gorm.DB, cities ...string) *fixture {
	t.Helper()

	carts, err := sessions.NewLRUCartStore(100)
	require.NoError(t, err)

	productRepo := repositories.NewProductRepository(db)
	attrRepo := repositories.NewAttributeRepository(db)
	variantRepo := repositories.NewVariantRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	orderItemRepo := repositories.NewOrderItemRepository(db)
	statusRepo := repositories.NewOrderStatusRepository(db)
	addressRepo := repositories.NewGormAddressRepository(db)

	money := format.NewMoney("IQD ")
	m := metrics.New(prometheus.NewRegistry())
	fee := decimal.NewFromInt(1000)

	cart := NewCartService(db, carts, productRepo, variantRepo, fee, money)
	return &fixture{
		ctx:     context.Background(),
		db:      db,
		carts:   carts,
		metrics: m,
		attrs:   NewAttributeService(db, attrRepo, variantRepo),
		matrix:  NewVariantMatrixService(db, productRepo, attrRepo, variantRepo, orderItemRepo),
		cart:    cart,
		checkout: NewCheckoutService(db, CheckoutConfig{DeliveryFee: fee, DeliveryCities: cities},
			addressRepo, productRepo, attrRepo, variantRepo, orderRepo, orderItemRepo, statusRepo, cart, money, m),
		orders: NewOrderService(db, orderRepo, statusRepo),
	}
}

// shirt seeds a symbolic product priced 5000 with one Red/M variant.
func (f *fixture) shirt(t *testing.T, storeID string, stock int) (*models.Product, *models.Variant) {
	t.Helper()
	product := testdb.Product(t, f.db, storeID, "Shirt", 5000, models.SizeTypeSymbolic)
	red := testdb.Color(t, f.db, "Red-"+product.ID[:8])
	m := testdb.Size(t, f.db, "M-"+product.ID[:4], models.SizeKindSymbolic, 3)
	return product, testdb.Variant(t, f.db, product.ID, red.ID, m.ID, stock)
}

func (f *fixture) stock(t *testing.T, variantID string) int {
	t.Helper()
	var v models.Variant
	require.NoError(t, f.db.First(&v, "id = ?", variantID).Error)
	return v.StockQty
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
