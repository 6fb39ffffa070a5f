package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type OrderItemRepository interface {
	BulkCreate(ctx context.Context, db *gorm.DB, items []models.OrderItem) error
	CountOpenByVariant(ctx context.Context, db *gorm.DB, variantID string) (int64, error)
}

type OrderItemRepositoryImpl struct {
	DB *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &OrderItemRepositoryImpl{DB: db}
}

func (r *OrderItemRepositoryImpl) BulkCreate(ctx context.Context, db *gorm.DB, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

// CountOpenByVariant counts items of non-terminal orders that still point
// at the variant.
func (r *OrderItemRepositoryImpl) CountOpenByVariant(ctx context.Context, db *gorm.DB, variantID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.variant_id = ?", variantID).
		Where("orders.status NOT IN ?", []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCanceled}).
		Count(&count).Error
	return count, err
}
