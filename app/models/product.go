package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SizeType string

const (
	SizeTypeSymbolic SizeType = "symbolic"
	SizeTypeNumeric  SizeType = "numeric"
	SizeTypeNone     SizeType = "none"
)

func (t SizeType) Valid() bool {
	switch t {
	case SizeTypeSymbolic, SizeTypeNumeric, SizeTypeNone:
		return true
	}
	return false
}

// Accepts reports whether a size of the given kind may be used by a
// product of this size type. Products without sizes accept none.
func (t SizeType) Accepts(kind SizeKind) bool {
	switch t {
	case SizeTypeSymbolic:
		return kind == SizeKindSymbolic
	case SizeTypeNumeric:
		return kind == SizeKindNumeric
	}
	return false
}

type Store struct {
	ID        string `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name      string `gorm:"size:200;not null" json:"name"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Store) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

type Product struct {
	ID        string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	StoreID   string          `gorm:"size:36;not null;index" json:"store_id"`
	Store     *Store          `gorm:"foreignKey:StoreID" json:"-"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	BasePrice decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"base_price"`
	SizeType  SizeType        `gorm:"size:20;not null;default:'symbolic'" json:"size_type"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	Variants  []Variant       `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
