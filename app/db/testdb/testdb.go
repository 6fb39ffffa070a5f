// Package testdb opens throwaway in-memory databases for package tests.
package testdb

import (
	"testing"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/models/migrations"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated SQLite database that lives as long as the test.
// The pool holds a single connection, so the in-memory database is shared by
// every query and concurrent transactions queue behind each other.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), configs.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrations.AutoMigrate(db))
	return db
}

func Store(t testing.TB, db *gorm.DB, name string) *models.Store {
	t.Helper()
	store := &models.Store{Name: name, IsActive: true}
	require.NoError(t, db.Create(store).Error)
	return store
}

func Product(t testing.TB, db *gorm.DB, storeID, name string, basePrice int64, sizeType models.SizeType) *models.Product {
	t.Helper()
	product := &models.Product{
		StoreID:   storeID,
		Name:      name,
		BasePrice: decimal.NewFromInt(basePrice),
		SizeType:  sizeType,
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func Color(t testing.TB, db *gorm.DB, name string) *models.Color {
	t.Helper()
	color := &models.Color{Name: name}
	require.NoError(t, db.Create(color).Error)
	return color
}

func Size(t testing.TB, db *gorm.DB, name string, kind models.SizeKind, sortOrder int) *models.Size {
	t.Helper()
	size := &models.Size{Name: name, Kind: kind, SortOrder: sortOrder}
	require.NoError(t, db.Create(size).Error)
	return size
}

func Variant(t testing.TB, db *gorm.DB, productID, colorID, sizeID string, stock int) *models.Variant {
	t.Helper()
	variant := &models.Variant{
		ProductID: productID,
		ColorID:   colorID,
		SizeID:    sizeID,
		StockQty:  stock,
		IsEnabled: true,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func Address(t testing.TB, db *gorm.DB, userID, city string) *models.Address {
	t.Helper()
	address := &models.Address{UserID: userID, City: city, Area: "Center", Street: "Main st."}
	require.NoError(t, db.Create(address).Error)
	return address
}
