package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is immutable once written. Price is the effective price at
// checkout and is never recomputed from the live variant.
type OrderItem struct {
	ID           string          `gorm:"primaryKey;size:36;not null;uniqueIndex" json:"id"`
	OrderID      string          `gorm:"size:36;not null;index" json:"order_id"`
	ProductID    string          `gorm:"size:36;not null;index" json:"product_id"`
	ProductName  string          `gorm:"size:255;not null" json:"product_name"`
	VariantID    *string         `gorm:"size:36;index" json:"variant_id"`
	VariantLabel string          `gorm:"size:120" json:"variant_label,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if oi.ID == "" {
		oi.ID = uuid.New().String()
	}
	return
}

func (oi *OrderItem) LineTotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
