package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NoColor and NoSize are stored instead of NULL so that the matrix unique
// index treats a missing attribute as a value of its own.
const (
	NoColor = ""
	NoSize  = ""
)

type Variant struct {
	ID            string              `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	ProductID     string              `gorm:"size:36;not null;uniqueIndex:idx_variant_matrix" json:"product_id"`
	Product       *Product            `gorm:"foreignKey:ProductID" json:"-"`
	ColorID       string              `gorm:"size:36;not null;default:'';uniqueIndex:idx_variant_matrix" json:"color_id"`
	Color         *Color              `gorm:"foreignKey:ColorID" json:"color,omitempty"`
	SizeID        string              `gorm:"size:36;not null;default:'';uniqueIndex:idx_variant_matrix" json:"size_id"`
	Size          *Size               `gorm:"foreignKey:SizeID" json:"size,omitempty"`
	StockQty      int                 `gorm:"not null;default:0;check:stock_qty >= 0" json:"stock_qty"`
	PriceOverride decimal.NullDecimal `gorm:"type:decimal(16,2)" json:"price_override"`
	IsEnabled     bool                `gorm:"not null;default:true" json:"is_enabled"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (v *Variant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

func (v *Variant) EffectivePrice(basePrice decimal.Decimal) decimal.Decimal {
	if v.PriceOverride.Valid {
		return v.PriceOverride.Decimal
	}
	return basePrice
}

func (v *Variant) Sellable(qty int) bool {
	return v.IsEnabled && qty > 0 && v.StockQty >= qty
}

func (v *Variant) MatrixKey() MatrixKey {
	return MatrixKey{ColorID: v.ColorID, SizeID: v.SizeID}
}

// DisplayName renders the variant from its attribute names, e.g. "Red / M".
// Attributes must be preloaded to show up.
func (v *Variant) DisplayName() string {
	parts := make([]string, 0, 2)
	if v.Color != nil && v.Color.Name != "" {
		parts = append(parts, v.Color.Name)
	}
	if v.Size != nil && v.Size.Name != "" {
		parts = append(parts, v.Size.Name)
	}
	if len(parts) == 0 {
		return "Standard"
	}
	return strings.Join(parts, " / ")
}

type MatrixKey struct {
	ColorID string
	SizeID  string
}
