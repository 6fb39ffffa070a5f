//go:build mysql

package testdb

import (
	"os"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/models/migrations"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLDSNEnv names the variable holding the DSN of a disposable MySQL
// database, e.g. "root:secret@tcp(127.0.0.1:3306)/storefront_test?parseTime=True".
const MySQLDSNEnv = "STOREFRONT_TEST_MYSQL_DSN"

// OpenMySQL returns a migrated MySQL database with a real connection pool,
// so row locks are taken and concurrent transactions overlap. Every table is
// emptied when the test ends. The test is skipped when MySQLDSNEnv is unset.
func OpenMySQL(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(MySQLDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", MySQLDSNEnv)
	}

	db, err := gorm.Open(mysql.Open(dsn), configs.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)

	require.NoError(t, migrations.AutoMigrate(db))
	truncate := func() {
		for _, model := range []interface{}{
			&models.OrderStatusHistory{}, &models.OrderItem{}, &models.Order{}, &models.Address{},
			&models.Variant{}, &models.Product{}, &models.Size{}, &models.Color{}, &models.Store{},
		} {
			require.NoError(t, db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error)
		}
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		_ = sqlDB.Close()
	})
	return db
}
