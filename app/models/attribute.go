package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SizeKind string

const (
	SizeKindSymbolic SizeKind = "symbolic"
	SizeKindNumeric  SizeKind = "numeric"
)

// Color and Size are shared by every product. A row may only be removed
// while no variant points at it.
type Color struct {
	ID        string `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name      string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Code      string `gorm:"size:7" json:"code,omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Color) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

type Size struct {
	ID        string   `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name      string   `gorm:"size:10;not null;uniqueIndex:idx_size_kind_name" json:"name"`
	Kind      SizeKind `gorm:"size:20;not null;uniqueIndex:idx_size_kind_name" json:"kind"`
	SortOrder int      `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Size) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}
