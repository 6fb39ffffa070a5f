package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

const PaymentMethodCOD = "cod"

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   1,
	OrderStatusAccepted:  2,
	OrderStatusPacked:    3,
	OrderStatusDelivered: 4,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok || s == OrderStatusCanceled
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// CanTransitionTo allows forward moves along
// pending -> accepted -> packed -> delivered (skipping is fine) and a
// cancel from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || !next.Valid() || s == next {
		return false
	}
	if next == OrderStatusCanceled {
		return true
	}
	return orderStatusRank[next] > orderStatusRank[s]
}

type Order struct {
	ID             string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID         string          `gorm:"size:36;not null;index" json:"user_id"`
	StoreID        string          `gorm:"size:36;not null;index" json:"store_id"`
	Status         OrderStatus     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	DeliveryFee    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"delivery_fee"`
	DiscountCode   string          `gorm:"size:50" json:"discount_code,omitempty"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total_amount"`
	PaymentMethod  string          `gorm:"size:20;not null;default:'cod'" json:"payment_method"`
	AddressID      *string         `gorm:"size:36;index" json:"address_id"`
	Address        *Address        `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	OrderItems     []OrderItem     `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}

// ItemsTotal recomputes the sum of the snapshotted line prices.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.OrderItems {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ExpectedTotal is what TotalAmount must equal given the stored items,
// fee and discount.
func (o *Order) ExpectedTotal() decimal.Decimal {
	total := o.ItemsTotal().Add(o.DeliveryFee).Sub(o.DiscountAmount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
