package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GenerateInput struct {
	ProductID    string
	ColorIDs     []string
	SizeIDs      []string
	DefaultQty   int
	DefaultPrice *decimal.Decimal
	Enabled      bool
}

type GenerateResult struct {
	Created []models.Variant `json:"created"`
	Skipped int              `json:"skipped"`
}

type AddVariantInput struct {
	ProductID string
	ColorID   string
	SizeID    string
	Qty       int
	Price     *decimal.Decimal
	Enabled   bool
}

type VariantMatrixService struct {
	db            *gorm.DB
	productRepo   repositories.ProductRepositoryImpl
	attrRepo      repositories.AttributeRepository
	variantRepo   repositories.VariantRepository
	orderItemRepo repositories.OrderItemRepository
}

func NewVariantMatrixService(
	db *gorm.DB,
	productRepo repositories.ProductRepositoryImpl,
	attrRepo repositories.AttributeRepository,
	variantRepo repositories.VariantRepository,
	orderItemRepo repositories.OrderItemRepository,
) *VariantMatrixService {
	return &VariantMatrixService{
		db:            db,
		productRepo:   productRepo,
		attrRepo:      attrRepo,
		variantRepo:   variantRepo,
		orderItemRepo: orderItemRepo,
	}
}

// Generate materializes the cross product of the selected colors and sizes
// for one product. Pairs that already exist are skipped and keep their
// stock and price, so calling it twice with the same input is a no-op.
func (s *VariantMatrixService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	product, err := s.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := checkDefaults(in.DefaultQty, in.DefaultPrice); err != nil {
		return nil, err
	}

	colorIDs := dedupe(in.ColorIDs)
	sizeIDs := dedupe(in.SizeIDs)
	if err := s.checkAttributes(ctx, product, colorIDs, sizeIDs); err != nil {
		return nil, err
	}

	if len(colorIDs) == 0 {
		colorIDs = []string{models.NoColor}
	}
	if len(sizeIDs) == 0 {
		sizeIDs = []string{models.NoSize}
	}

	result := &GenerateResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.variantRepo.MatrixKeys(ctx, tx, product.ID)
		if err != nil {
			return fmt.Errorf("load matrix keys: %w", err)
		}

		var rows []models.Variant
		for _, colorID := range colorIDs {
			for _, sizeID := range sizeIDs {
				key := models.MatrixKey{ColorID: colorID, SizeID: sizeID}
				if existing[key] {
					result.Skipped++
					continue
				}
				existing[key] = true
				rows = append(rows, newVariant(product.ID, colorID, sizeID, in.DefaultQty, in.DefaultPrice, in.Enabled))
			}
		}

		if err := s.variantRepo.CreateBatch(ctx, tx, rows); err != nil {
			return err
		}
		result.Created = rows
		return nil
	})
	if err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, conflict(CodeDuplicateVariant, err, "variants of product %s changed concurrently", product.ID)
		}
		log.Printf("VariantMatrixService.Generate: product %s: %v", product.ID, err)
		return nil, internal(err, "failed to generate variants")
	}

	log.Printf("VariantMatrixService.Generate: product %s created=%d skipped=%d", product.ID, len(result.Created), result.Skipped)
	return result, nil
}

func (s *VariantMatrixService) AddVariant(ctx context.Context, in AddVariantInput) (*models.Variant, error) {
	product, err := s.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := checkDefaults(in.Qty, in.Price); err != nil {
		return nil, err
	}

	var colorIDs, sizeIDs []string
	if in.ColorID != models.NoColor {
		colorIDs = []string{in.ColorID}
	}
	if in.SizeID != models.NoSize {
		sizeIDs = []string{in.SizeID}
	}
	if err := s.checkAttributes(ctx, product, colorIDs, sizeIDs); err != nil {
		return nil, err
	}

	variant := newVariant(product.ID, in.ColorID, in.SizeID, in.Qty, in.Price, in.Enabled)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.variantRepo.MatrixKeys(ctx, tx, product.ID)
		if err != nil {
			return fmt.Errorf("load matrix keys: %w", err)
		}
		if existing[variant.MatrixKey()] {
			return ErrDuplicateVariant
		}
		return s.variantRepo.Create(ctx, tx, &variant)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateVariant) || repositories.IsDuplicateKey(err) {
			return nil, newError(CodeDuplicateVariant, "product %s already has this color and size", product.ID)
		}
		log.Printf("VariantMatrixService.AddVariant: product %s: %v", product.ID, err)
		return nil, internal(err, "failed to add variant")
	}
	return &variant, nil
}

// DeleteVariant refuses to remove a variant that an open order still
// points at. Closed orders keep their snapshot and do not block.
func (s *VariantMatrixService) DeleteVariant(ctx context.Context, variantID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variant, err := s.variantRepo.LockByID(ctx, tx, variantID)
		if err != nil {
			return fmt.Errorf("lock variant: %w", err)
		}
		if variant == nil {
			return ErrVariantNotFound
		}

		open, err := s.orderItemRepo.CountOpenByVariant(ctx, tx, variantID)
		if err != nil {
			return fmt.Errorf("count open orders: %w", err)
		}
		if open > 0 {
			return newError(CodeVariantInUse, "variant is part of %d open order lines", open)
		}
		return s.variantRepo.Delete(ctx, tx, variantID)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return svcErr
		}
		log.Printf("VariantMatrixService.DeleteVariant: %s: %v", variantID, err)
		return internal(err, "failed to delete variant")
	}
	return nil
}

func (s *VariantMatrixService) ListVariants(ctx context.Context, productID string) ([]models.Variant, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	variants, err := s.variantRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, internal(err, "failed to list variants")
	}
	return variants, nil
}

func (s *VariantMatrixService) SetStock(ctx context.Context, productID string, filter repositories.VariantFilter, qty int, requireMatch bool) (int64, error) {
	if qty < 0 {
		return 0, newError(CodeInvalidInput, "stock cannot be negative")
	}
	return s.bulkUpdate(ctx, productID, filter, requireMatch, "stock_qty", qty)
}

// SetPrice sets the override on every matching row. A nil price clears the
// override so the rows fall back to the product's base price.
func (s *VariantMatrixService) SetPrice(ctx context.Context, productID string, filter repositories.VariantFilter, price *decimal.Decimal, requireMatch bool) (int64, error) {
	value := decimal.NullDecimal{}
	if price != nil {
		if price.IsNegative() {
			return 0, newError(CodeInvalidInput, "price cannot be negative")
		}
		value = decimal.NewNullDecimal(*price)
	}
	return s.bulkUpdate(ctx, productID, filter, requireMatch, "price_override", value)
}

func (s *VariantMatrixService) SetEnabled(ctx context.Context, productID string, filter repositories.VariantFilter, enabled bool, requireMatch bool) (int64, error) {
	return s.bulkUpdate(ctx, productID, filter, requireMatch, "is_enabled", enabled)
}

func (s *VariantMatrixService) bulkUpdate(ctx context.Context, productID string, filter repositories.VariantFilter, requireMatch bool, column string, value interface{}) (int64, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return 0, err
	}

	var matched int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.variantRepo.CountMatching(ctx, tx, productID, filter)
		if err != nil {
			return fmt.Errorf("count variants: %w", err)
		}
		matched = n
		if n == 0 {
			if requireMatch {
				return ErrNoVariantsMatched
			}
			return nil
		}
		return s.variantRepo.UpdateMatching(ctx, tx, productID, filter, column, value)
	})
	if err != nil {
		if errors.Is(err, ErrNoVariantsMatched) {
			return 0, newError(CodeNoVariantsMatched, "no variants of product %s matched", productID)
		}
		log.Printf("VariantMatrixService.bulkUpdate: %s on product %s: %v", column, productID, err)
		return 0, internal(err, "failed to update variants")
	}
	return matched, nil
}

func (s *VariantMatrixService) loadProduct(ctx context.Context, productID string) (*models.Product, error) {
	if productID == "" {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, internal(err, "failed to load product")
	}
	if product == nil {
		return nil, newError(CodeProductNotFound, "product %s not found", productID)
	}
	return product, nil
}

// checkAttributes verifies every id exists and every size fits the
// product's size type. A product without sizes accepts none.
func (s *VariantMatrixService) checkAttributes(ctx context.Context, product *models.Product, colorIDs, sizeIDs []string) error {
	colors, err := s.attrRepo.FindColorsByIDs(ctx, s.db, colorIDs)
	if err != nil {
		return internal(err, "failed to load colors")
	}
	for _, id := range colorIDs {
		if _, ok := colors[id]; !ok {
			return newError(CodeAttributeNotFound, "color %s not found", id)
		}
	}

	sizes, err := s.attrRepo.FindSizesByIDs(ctx, s.db, sizeIDs)
	if err != nil {
		return internal(err, "failed to load sizes")
	}
	for _, id := range sizeIDs {
		size, ok := sizes[id]
		if !ok {
			return newError(CodeAttributeNotFound, "size %s not found", id)
		}
		if !product.SizeType.Accepts(size.Kind) {
			return newError(CodeInvalidSize, "%s size %s cannot be used with a %s product", size.Kind, size.Name, product.SizeType)
		}
	}
	return nil
}

func checkDefaults(qty int, price *decimal.Decimal) error {
	if qty < 0 {
		return newError(CodeInvalidInput, "stock cannot be negative")
	}
	if price != nil && price.IsNegative() {
		return newError(CodeInvalidInput, "price cannot be negative")
	}
	return nil
}

func newVariant(productID, colorID, sizeID string, qty int, price *decimal.Decimal, enabled bool) models.Variant {
	v := models.Variant{
		ProductID: productID,
		ColorID:   colorID,
		SizeID:    sizeID,
		StockQty:  qty,
		IsEnabled: enabled,
	}
	if price != nil {
		v.PriceOverride = decimal.NewNullDecimal(*price)
	}
	return v
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
