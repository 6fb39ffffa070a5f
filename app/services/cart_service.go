package services

import (
	"context"
	"fmt"
	"log"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type MoneyDisplay struct {
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
}

type CartView struct {
	Lines         []models.CartLine `json:"lines"`
	StoreID       string            `json:"store_id,omitempty"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	DeliveryFee   decimal.Decimal   `json:"delivery_fee"`
	DiscountCode  string            `json:"discount_code,omitempty"`
	DiscountLabel string            `json:"discount_label,omitempty"`
	Discount      decimal.Decimal   `json:"discount"`
	Total         decimal.Decimal   `json:"total"`
	Display       MoneyDisplay      `json:"display"`
}

type CartService struct {
	db          *gorm.DB
	store       sessions.CartStore
	productRepo repositories.ProductRepositoryImpl
	variantRepo repositories.VariantRepository
	deliveryFee decimal.Decimal
	money       *format.Money
}

func NewCartService(
	db *gorm.DB,
	store sessions.CartStore,
	productRepo repositories.ProductRepositoryImpl,
	variantRepo repositories.VariantRepository,
	deliveryFee decimal.Decimal,
	money *format.Money,
) *CartService {
	return &CartService{
		db:          db,
		store:       store,
		productRepo: productRepo,
		variantRepo: variantRepo,
		deliveryFee: deliveryFee,
		money:       money,
	}
}

// Add puts a product into the cart. Without a variant id the enabled
// variant with the most stock is picked; a product that has no variant rows
// at all is added as a single line at its base price. Adding a line that already exists
// sums the quantities, and the sum must still fit the live stock.
func (s *CartService) Add(ctx context.Context, cartKey string, in AddItemInput) (*CartView, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, internal(err, "failed to load product")
	}
	if product == nil || !product.IsActive {
		return nil, newError(CodeProductNotFound, "product %s not found", in.ProductID)
	}

	variant, err := s.pickVariant(ctx, product, in.VariantID)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Get(ctx, cartKey)
	if err != nil {
		return nil, internal(err, "failed to load cart")
	}
	cart, err := s.revalidate(ctx, stored)
	if err != nil {
		return nil, err
	}

	for _, line := range cart.Lines {
		if line.StoreID != product.StoreID {
			return nil, ErrMultiStoreNotAllowed
		}
	}

	key := models.CartLineKey{ProductID: product.ID}
	if variant != nil {
		key.VariantID = variant.ID
	}
	idx := cart.Find(key)
	want := in.Quantity
	if idx >= 0 {
		want += cart.Lines[idx].Quantity
	}
	if variant != nil && !variant.Sellable(want) {
		return nil, newError(CodeInsufficientStock, "only %d of %s %s left", variant.StockQty, product.Name, variant.DisplayName())
	}

	if idx >= 0 {
		cart.Lines[idx].Quantity = want
	} else {
		cart.Lines = append(cart.Lines, models.CartLine{ProductID: key.ProductID, VariantID: key.VariantID, Quantity: want})
	}

	return s.save(ctx, cartKey, cart)
}

// Read revalidates the cart against live stock and writes the result back,
// so the stored cart always matches what the customer last saw.
func (s *CartService) Read(ctx context.Context, cartKey string) (*CartView, error) {
	stored, err := s.store.Get(ctx, cartKey)
	if err != nil {
		return nil, internal(err, "failed to load cart")
	}
	return s.save(ctx, cartKey, stored)
}

func (s *CartService) Remove(ctx context.Context, cartKey string, index int) (*CartView, error) {
	cart, err := s.store.Get(ctx, cartKey)
	if err != nil {
		return nil, internal(err, "failed to load cart")
	}
	if index < 0 || index >= len(cart.Lines) {
		return nil, newError(CodeLineNotFound, "cart has no line %d", index)
	}
	cart.Lines = append(cart.Lines[:index], cart.Lines[index+1:]...)
	return s.save(ctx, cartKey, cart)
}

func (s *CartService) Clear(ctx context.Context, cartKey string) error {
	if err := s.store.Delete(ctx, cartKey); err != nil {
		return internal(err, "failed to clear cart")
	}
	return nil
}

// ApplyDiscount stores a discount code on the cart. REMOVE clears it. An
// unknown code leaves the cart as it was.
func (s *CartService) ApplyDiscount(ctx context.Context, cartKey, code string) (*CartView, error) {
	stored, err := s.store.Get(ctx, cartKey)
	if err != nil {
		return nil, internal(err, "failed to load cart")
	}
	cart, err := s.revalidate(ctx, stored)
	if err != nil {
		return nil, err
	}

	if calc.NormalizeCoupon(code) == "" {
		return nil, newError(CodeInvalidDiscountCode, "discount code is empty")
	}
	result, err := calc.EvaluateCoupon(code, cartSubtotal(cart), s.deliveryFee)
	if err != nil {
		return nil, newError(CodeInvalidDiscountCode, "discount code %q is not valid", calc.NormalizeCoupon(code))
	}
	if result.Remove {
		cart.DiscountCode = ""
	} else {
		cart.DiscountCode = result.Code
	}
	return s.save(ctx, cartKey, cart)
}

// Snapshot returns the cart exactly as the customer last saw it. Checkout
// re-checks it under row locks, so it is not revalidated here.
func (s *CartService) Snapshot(ctx context.Context, cartKey string) (models.Cart, error) {
	cart, err := s.store.Get(ctx, cartKey)
	if err != nil {
		return models.Cart{}, internal(err, "failed to load cart")
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cartKey string, cart models.Cart) (*CartView, error) {
	cart, err := s.revalidate(ctx, cart)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, cartKey, cart); err != nil {
		return nil, internal(err, "failed to save cart")
	}
	return s.view(cart), nil
}

// pickVariant returns nil without an error only for a product that has no
// variant rows and was asked for without a variant id.
func (s *CartService) pickVariant(ctx context.Context, product *models.Product, variantID string) (*models.Variant, error) {
	if variantID == "" {
		owners, err := s.variantRepo.ProductsWithVariants(ctx, s.db, []string{product.ID})
		if err != nil {
			return nil, internal(err, "failed to load product options")
		}
		if !owners[product.ID] {
			return nil, nil
		}

		variant, err := s.variantRepo.BestInStock(ctx, product.ID)
		if err != nil {
			return nil, internal(err, "failed to select variant")
		}
		if variant == nil {
			return nil, newError(CodeNoVariantAvailable, "%s is out of stock", product.Name)
		}
		return variant, nil
	}

	variant, err := s.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return nil, internal(err, "failed to load variant")
	}
	if variant == nil || variant.ProductID != product.ID || !variant.IsEnabled {
		return nil, newError(CodeVariantNotFound, "variant %s not found for %s", variantID, product.Name)
	}
	return variant, nil
}

// revalidate rebuilds every line from live data. Lines whose product or
// variant is gone are dropped, and so are option-less lines of a product
// that has since been given variants. Lines that cannot be bought right now
// stay visible as unavailable, and quantities above stock are clamped.
func (s *CartService) revalidate(ctx context.Context, cart models.Cart) (models.Cart, error) {
	out := models.Cart{DiscountCode: cart.DiscountCode}
	if cart.IsEmpty() {
		return out, nil
	}

	productIDs := make([]string, 0, len(cart.Lines))
	variantIDs := make([]string, 0, len(cart.Lines))
	var plainIDs []string
	for _, line := range cart.Lines {
		productIDs = append(productIDs, line.ProductID)
		if line.VariantID != "" {
			variantIDs = append(variantIDs, line.VariantID)
		} else {
			plainIDs = append(plainIDs, line.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, s.db, productIDs)
	if err != nil {
		return out, internal(err, "failed to load cart products")
	}
	variants, err := s.variantRepo.FindByIDs(ctx, variantIDs)
	if err != nil {
		return out, internal(err, "failed to load cart variants")
	}
	owners, err := s.variantRepo.ProductsWithVariants(ctx, s.db, plainIDs)
	if err != nil {
		return out, internal(err, "failed to load product options")
	}

	for _, line := range cart.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			log.Printf("CartService.revalidate: dropping line for missing product %s", line.ProductID)
			continue
		}

		next := models.CartLine{
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			Quantity:    line.Quantity,
			StoreID:     product.StoreID,
			ProductName: product.Name,
			Subtotal:    decimal.Zero,
		}
		if next.Quantity < 1 {
			next.Quantity = 1
		}

		if line.VariantID == "" {
			if owners[product.ID] {
				log.Printf("CartService.revalidate: dropping option-less line of product %s, it has variants now", product.ID)
				continue
			}
			next.VariantLabel = (&models.Variant{}).DisplayName()
			next.UnitPrice = product.BasePrice
			if product.IsActive {
				next.Available = true
				next.Subtotal = next.UnitPrice.Mul(decimal.NewFromInt(int64(next.Quantity)))
			} else {
				next.Notice = "no longer sold"
			}
			out.Lines = append(out.Lines, next)
			continue
		}

		variant, ok := variants[line.VariantID]
		if !ok || variant.ProductID != product.ID {
			log.Printf("CartService.revalidate: dropping line for missing variant %s of product %s", line.VariantID, line.ProductID)
			continue
		}
		next.VariantLabel = variant.DisplayName()
		next.UnitPrice = variant.EffectivePrice(product.BasePrice)

		switch {
		case !product.IsActive:
			next.Notice = "no longer sold"
		case !variant.IsEnabled:
			next.Notice = "this option is not available"
		case variant.StockQty == 0:
			next.Notice = "out of stock"
		default:
			if !variant.Sellable(next.Quantity) {
				next.Quantity = variant.StockQty
				next.Notice = fmt.Sprintf("only %d left, quantity reduced", variant.StockQty)
			}
			next.Available = true
			next.Subtotal = next.UnitPrice.Mul(decimal.NewFromInt(int64(next.Quantity)))
		}
		out.Lines = append(out.Lines, next)
	}
	return out, nil
}

func (s *CartService) view(cart models.Cart) *CartView {
	v := &CartView{
		Lines:        cart.Lines,
		Subtotal:     cartSubtotal(cart),
		DeliveryFee:  decimal.Zero,
		Discount:     decimal.Zero,
		DiscountCode: cart.DiscountCode,
	}
	if v.Lines == nil {
		v.Lines = []models.CartLine{}
	}
	if len(cart.Lines) > 0 {
		v.StoreID = cart.Lines[0].StoreID
		v.DeliveryFee = s.deliveryFee
	}

	if cart.DiscountCode != "" && len(cart.Lines) > 0 {
		result, err := calc.EvaluateCoupon(cart.DiscountCode, v.Subtotal, v.DeliveryFee)
		if err == nil {
			v.Discount = result.Amount
			v.DiscountLabel = result.Label
		}
	}

	v.Total = calc.GrandTotal(v.Subtotal, v.DeliveryFee, v.Discount)
	v.Display = MoneyDisplay{
		Subtotal:    s.money.Format(v.Subtotal),
		DeliveryFee: s.money.Format(v.DeliveryFee),
		Discount:    s.money.Format(v.Discount),
		Total:       s.money.Format(v.Total),
	}
	return v
}

func cartSubtotal(cart models.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range cart.Lines {
		if line.Available {
			total = total.Add(line.Subtotal)
		}
	}
	return total
}
