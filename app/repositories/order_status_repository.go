package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type OrderStatusRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.OrderStatusHistory) error
	FindByOrderID(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
}

type gormOrderStatusRepository struct {
	db *gorm.DB
}

func NewOrderStatusRepository(db *gorm.DB) OrderStatusRepository {
	return &gormOrderStatusRepository{db: db}
}

func (r *gormOrderStatusRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.OrderStatusHistory) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *gormOrderStatusRepository) FindByOrderID(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}
