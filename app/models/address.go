package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	ID        string `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID    string `gorm:"size:36;not null;index" json:"user_id"`
	City      string `gorm:"size:100;not null" json:"city"`
	Area      string `gorm:"size:100;not null" json:"area"`
	Street    string `gorm:"size:200;not null" json:"street"`
	Details   string `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Address) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

func (a *Address) OneLine() string {
	parts := []string{a.City, a.Area, a.Street}
	if a.Details != "" {
		parts = append(parts, a.Details)
	}
	return strings.Join(parts, " - ")
}
