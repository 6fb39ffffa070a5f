package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VariantFilter scopes a bulk edit to the rows of one product. A nil field
// matches every value, so the zero filter selects the whole product.
type VariantFilter struct {
	ColorID *string
	SizeID  *string
}

func (f VariantFilter) apply(db *gorm.DB, productID string) *gorm.DB {
	db = db.Where("product_id = ?", productID)
	if f.ColorID != nil {
		db = db.Where("color_id = ?", *f.ColorID)
	}
	if f.SizeID != nil {
		db = db.Where("size_id = ?", *f.SizeID)
	}
	return db
}

type VariantRepository interface {
	GetByID(ctx context.Context, id string) (*models.Variant, error)
	ListByProduct(ctx context.Context, productID string) ([]models.Variant, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Variant, error)
	BestInStock(ctx context.Context, productID string) (*models.Variant, error)
	ProductsWithVariants(ctx context.Context, tx *gorm.DB, productIDs []string) (map[string]bool, error)
	MatrixKeys(ctx context.Context, tx *gorm.DB, productID string) (map[models.MatrixKey]bool, error)
	Create(ctx context.Context, tx *gorm.DB, variant *models.Variant) error
	CreateBatch(ctx context.Context, tx *gorm.DB, variants []models.Variant) error
	LockByID(ctx context.Context, tx *gorm.DB, id string) (*models.Variant, error)
	LockByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Variant, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	CountMatching(ctx context.Context, tx *gorm.DB, productID string, filter VariantFilter) (int64, error)
	UpdateMatching(ctx context.Context, tx *gorm.DB, productID string, filter VariantFilter, column string, value interface{}) error
	CountByAttribute(ctx context.Context, tx *gorm.DB, column, id string) (int64, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, id string, qty int) (bool, error)
}

type gormVariantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &gormVariantRepository{db: db}
}

func (r *gormVariantRepository) GetByID(ctx context.Context, id string) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).Preload("Color").Preload("Size").First(&variant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (r *gormVariantRepository) ListByProduct(ctx context.Context, productID string) ([]models.Variant, error) {
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Preload("Color").
		Preload("Size").
		Where("product_id = ?", productID).
		Order("color_id ASC, size_id ASC").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *gormVariantRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Variant, error) {
	out := make(map[string]models.Variant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var variants []models.Variant
	err := r.db.WithContext(ctx).Preload("Color").Preload("Size").Where("id IN ?", ids).Find(&variants).Error
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		out[v.ID] = v
	}
	return out, nil
}

// BestInStock picks the enabled variant with the most stock, lowest id
// first on ties. It returns nil when nothing is in stock.
func (r *gormVariantRepository) BestInStock(ctx context.Context, productID string) (*models.Variant, error) {
	var variants []models.Variant
	res := r.db.WithContext(ctx).
		Preload("Color").
		Preload("Size").
		Where("product_id = ? AND is_enabled = ? AND stock_qty > 0", productID, true).
		Order("stock_qty DESC, id ASC").
		Limit(1).
		Find(&variants)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &variants[0], nil
}

// ProductsWithVariants reports which of productIDs own at least one variant
// row, enabled or not. Products missing from the result are sold without
// options.
func (r *gormVariantRepository) ProductsWithVariants(ctx context.Context, tx *gorm.DB, productIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var owners []string
	err := tx.WithContext(ctx).
		Model(&models.Variant{}).
		Distinct("product_id").
		Where("product_id IN ?", productIDs).
		Pluck("product_id", &owners).Error
	if err != nil {
		return nil, err
	}
	for _, id := range owners {
		out[id] = true
	}
	return out, nil
}

func (r *gormVariantRepository) MatrixKeys(ctx context.Context, tx *gorm.DB, productID string) (map[models.MatrixKey]bool, error) {
	var variants []models.Variant
	err := tx.WithContext(ctx).
		Select("id", "color_id", "size_id").
		Where("product_id = ?", productID).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	keys := make(map[models.MatrixKey]bool, len(variants))
	for _, v := range variants {
		keys[v.MatrixKey()] = true
	}
	return keys, nil
}

// Create writes every column, including a false IsEnabled that the column
// default would otherwise override.
func (r *gormVariantRepository) Create(ctx context.Context, tx *gorm.DB, variant *models.Variant) error {
	return tx.WithContext(ctx).Select("*").Omit(clause.Associations).Create(variant).Error
}

func (r *gormVariantRepository) CreateBatch(ctx context.Context, tx *gorm.DB, variants []models.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Select("*").Omit(clause.Associations).Create(&variants).Error
}

func (r *gormVariantRepository) LockByID(ctx context.Context, tx *gorm.DB, id string) (*models.Variant, error) {
	var variant models.Variant
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&variant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// LockByIDs takes row locks in ascending id order so that two checkouts
// sharing variants always queue in the same order instead of deadlocking.
func (r *gormVariantRepository) LockByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Variant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var variants []models.Variant
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *gormVariantRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return tx.WithContext(ctx).Delete(&models.Variant{}, "id = ?", id).Error
}

func (r *gormVariantRepository) CountMatching(ctx context.Context, tx *gorm.DB, productID string, filter VariantFilter) (int64, error) {
	var count int64
	err := filter.apply(tx.WithContext(ctx).Model(&models.Variant{}), productID).Count(&count).Error
	return count, err
}

func (r *gormVariantRepository) UpdateMatching(ctx context.Context, tx *gorm.DB, productID string, filter VariantFilter, column string, value interface{}) error {
	return filter.apply(tx.WithContext(ctx).Model(&models.Variant{}), productID).Update(column, value).Error
}

func (r *gormVariantRepository) CountByAttribute(ctx context.Context, tx *gorm.DB, column, id string) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&models.Variant{}).Where(clause.Eq{Column: clause.Column{Name: column}, Value: id}).Count(&count).Error
	return count, err
}

// DecrementStock never takes stock below zero; it reports false when the
// row no longer holds qty units.
func (r *gormVariantRepository) DecrementStock(ctx context.Context, tx *gorm.DB, id string, qty int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ? AND stock_qty >= ?", id, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
