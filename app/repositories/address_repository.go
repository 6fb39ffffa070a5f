package repositories

import (
	"context"
	"fmt"
	"log"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type AddressRepository interface {
	FindAddressByID(ctx context.Context, id string) (*models.Address, error)
}

type GormAddressRepository struct {
	db *gorm.DB
}

func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

func (r *GormAddressRepository) FindAddressByID(ctx context.Context, id string) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		log.Printf("GormAddressRepository: Failed to find address by ID %s: %v", id, err)
		return nil, fmt.Errorf("failed to find address by ID: %w", err)
	}
	return &address, nil
}
