package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	LockByID(ctx context.Context, tx *gorm.DB, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status models.OrderStatus, at time.Time) error
	FindByUserID(ctx context.Context, userID string) ([]models.Order, error)
	FindByStoreID(ctx context.Context, storeID string, status models.OrderStatus) ([]models.Order, error)
	FindInBatches(ctx context.Context, batchSize int, fn func(orders []models.Order) error) error
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order

	err := r.db.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Address").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order with relations: %w", err)
	}
	return &order, nil
}

func (r *gormOrderRepository) LockByID(ctx context.Context, tx *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status models.OrderStatus, at time.Time) error {
	return tx.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": at,
	}).Error
}

func (r *gormOrderRepository) FindByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order

	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Address").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStoreID lists a store's orders, newest first. An empty status
// returns every status.
func (r *gormOrderRepository) FindByStoreID(ctx context.Context, storeID string, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order

	q := r.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Address").
		Where("store_id = ?", storeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) FindInBatches(ctx context.Context, batchSize int, fn func(orders []models.Order) error) error {
	var batch []models.Order
	res := r.db.WithContext(ctx).
		Preload("OrderItems").
		Order("id ASC").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return res.Error
}
