package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttributeRepository interface {
	CreateColor(ctx context.Context, color *models.Color) error
	CreateSize(ctx context.Context, size *models.Size) error
	ListColors(ctx context.Context) ([]models.Color, error)
	ListSizes(ctx context.Context, kind models.SizeKind) ([]models.Size, error)
	FindColorsByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]models.Color, error)
	FindSizesByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]models.Size, error)
	LockColor(ctx context.Context, tx *gorm.DB, id string) (*models.Color, error)
	LockSize(ctx context.Context, tx *gorm.DB, id string) (*models.Size, error)
	DeleteColor(ctx context.Context, tx *gorm.DB, id string) error
	DeleteSize(ctx context.Context, tx *gorm.DB, id string) error
}

type gormAttributeRepository struct {
	db *gorm.DB
}

func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &gormAttributeRepository{db: db}
}

func (r *gormAttributeRepository) CreateColor(ctx context.Context, color *models.Color) error {
	return r.db.WithContext(ctx).Create(color).Error
}

func (r *gormAttributeRepository) CreateSize(ctx context.Context, size *models.Size) error {
	return r.db.WithContext(ctx).Create(size).Error
}

func (r *gormAttributeRepository) ListColors(ctx context.Context) ([]models.Color, error) {
	var colors []models.Color
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&colors).Error; err != nil {
		return nil, err
	}
	return colors, nil
}

func (r *gormAttributeRepository) ListSizes(ctx context.Context, kind models.SizeKind) ([]models.Size, error) {
	var sizes []models.Size
	q := r.db.WithContext(ctx).Order("kind ASC, sort_order ASC, name ASC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Find(&sizes).Error; err != nil {
		return nil, err
	}
	return sizes, nil
}

func (r *gormAttributeRepository) FindColorsByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]models.Color, error) {
	out := make(map[string]models.Color, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var colors []models.Color
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&colors).Error; err != nil {
		return nil, err
	}
	for _, c := range colors {
		out[c.ID] = c
	}
	return out, nil
}

func (r *gormAttributeRepository) FindSizesByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]models.Size, error) {
	out := make(map[string]models.Size, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var sizes []models.Size
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&sizes).Error; err != nil {
		return nil, err
	}
	for _, s := range sizes {
		out[s.ID] = s
	}
	return out, nil
}

func (r *gormAttributeRepository) LockColor(ctx context.Context, tx *gorm.DB, id string) (*models.Color, error) {
	var color models.Color
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&color, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &color, nil
}

func (r *gormAttributeRepository) LockSize(ctx context.Context, tx *gorm.DB, id string) (*models.Size, error) {
	var size models.Size
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&size, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &size, nil
}

func (r *gormAttributeRepository) DeleteColor(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).Delete(&models.Color{}, "id = ?", id).Error
}

func (r *gormAttributeRepository) DeleteSize(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).Delete(&models.Size{}, "id = ?", id).Error
}
