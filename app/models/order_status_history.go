package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatusHistory struct {
	ID         string      `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderID    string      `gorm:"size:36;not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"size:20" json:"from_status"`
	ToStatus   OrderStatus `gorm:"size:20;not null" json:"to_status"`
	Actor      string      `gorm:"size:100" json:"actor"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

func (h *OrderStatusHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return
}
