package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Rakhulsr/go-storefront/app/db/testdb"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// errorLogger records every error gorm traces, which is where a "record not
// found" from First ends up.
type errorLogger struct {
	logger.Interface
	errs []error
}

func (l *errorLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l *errorLogger) Trace(_ context.Context, _ time.Time, _ func() (string, int64), err error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

func TestVariantRepository_DecrementStockNeverGoesNegative(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	store := testdb.Store(t, db, "North")
	product := testdb.Product(t, db, store.ID, "Tee", 5000, models.SizeTypeNone)
	variant := testdb.Variant(t, db, product.ID, models.NoColor, models.NoSize, 3)

	repo := NewVariantRepository(db)

	ok, err := repo.DecrementStock(ctx, db, variant.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, db, variant.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.StockQty)
}

func TestVariantRepository_BestInStock(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	store := testdb.Store(t, db, "North")
	product := testdb.Product(t, db, store.ID, "Tee", 5000, models.SizeTypeSymbolic)
	red := testdb.Color(t, db, "Red")
	blue := testdb.Color(t, db, "Blue")
	m := testdb.Size(t, db, "M", models.SizeKindSymbolic, 3)

	testdb.Variant(t, db, product.ID, red.ID, m.ID, 2)
	best := testdb.Variant(t, db, product.ID, blue.ID, m.ID, 7)

	repo := NewVariantRepository(db)
	got, err := repo.BestInStock(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, best.ID, got.ID)
	assert.Equal(t, "Blue / M", got.DisplayName())

	require.NoError(t, db.Model(&models.Variant{}).Where("product_id = ?", product.ID).Update("stock_qty", 0).Error)
	got, err = repo.BestInStock(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVariantRepository_BestInStockFindingNothingIsNotAnError(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	store := testdb.Store(t, db, "North")
	product := testdb.Product(t, db, store.ID, "Scarf", 2500, models.SizeTypeNone)

	rec := &errorLogger{Interface: logger.Discard}
	repo := NewVariantRepository(db.Session(&gorm.Session{Logger: rec}))

	got, err := repo.BestInStock(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, rec.errs)
}

func TestVariantRepository_ProductsWithVariants(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	store := testdb.Store(t, db, "North")
	tee := testdb.Product(t, db, store.ID, "Tee", 5000, models.SizeTypeNone)
	scarf := testdb.Product(t, db, store.ID, "Scarf", 2500, models.SizeTypeNone)
	variant := testdb.Variant(t, db, tee.ID, models.NoColor, models.NoSize, 0)
	require.NoError(t, db.Model(&models.Variant{}).Where("id = ?", variant.ID).Update("is_enabled", false).Error)

	repo := NewVariantRepository(db)
	owners, err := repo.ProductsWithVariants(ctx, db, []string{tee.ID, scarf.ID})
	require.NoError(t, err)
	assert.True(t, owners[tee.ID])
	assert.False(t, owners[scarf.ID])

	owners, err = repo.ProductsWithVariants(ctx, db, nil)
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestVariantRepository_FilteredBulkUpdate(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	store := testdb.Store(t, db, "North")
	product := testdb.Product(t, db, store.ID, "Tee", 5000, models.SizeTypeSymbolic)
	red := testdb.Color(t, db, "Red")
	blue := testdb.Color(t, db, "Blue")
	s := testdb.Size(t, db, "S", models.SizeKindSymbolic, 2)
	m := testdb.Size(t, db, "M", models.SizeKindSymbolic, 3)
	for _, c := range []string{red.ID, blue.ID} {
		for _, sz := range []string{s.ID, m.ID} {
			testdb.Variant(t, db, product.ID, c, sz, 1)
		}
	}

	repo := NewVariantRepository(db)
	filter := VariantFilter{ColorID: &red.ID}

	n, err := repo.CountMatching(ctx, db, product.ID, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.UpdateMatching(ctx, db, product.ID, filter, "stock_qty", 9))

	variants, err := repo.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, variants, 4)
	for _, v := range variants {
		if v.ColorID == red.ID {
			assert.Equal(t, 9, v.StockQty)
		} else {
			assert.Equal(t, 1, v.StockQty)
		}
	}
}

func TestVariantRepository_CreateKeepsDisabledFlag(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	store := testdb.Store(t, db, "North")
	product := testdb.Product(t, db, store.ID, "Tee", 5000, models.SizeTypeNone)

	repo := NewVariantRepository(db)
	variant := &models.Variant{ProductID: product.ID, StockQty: 4, IsEnabled: false}
	require.NoError(t, repo.Create(ctx, db, variant))

	got, err := repo.GetByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.False(t, got.IsEnabled)

	dup := &models.Variant{ProductID: product.ID, StockQty: 1, IsEnabled: true}
	err = repo.Create(ctx, db, dup)
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}
