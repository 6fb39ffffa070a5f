package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AddressProvider resolves delivery addresses owned by customers.
type AddressProvider interface {
	FindAddressByID(ctx context.Context, id string) (*models.Address, error)
}

type CheckoutConfig struct {
	DeliveryFee decimal.Decimal
	// DeliveryCities limits where orders can be delivered. Empty means
	// everywhere.
	DeliveryCities []string
	Timeout        time.Duration
}

type OrderSummary struct {
	OrderID       string             `json:"order_id"`
	StoreID       string             `json:"store_id"`
	Status        models.OrderStatus `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	DeliveryFee   decimal.Decimal    `json:"delivery_fee"`
	DiscountCode  string             `json:"discount_code,omitempty"`
	DiscountLabel string             `json:"discount_label,omitempty"`
	Discount      decimal.Decimal    `json:"discount"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Items         []models.OrderItem `json:"items"`
	Display       MoneyDisplay       `json:"display"`
	CreatedAt     time.Time          `json:"created_at"`
}

type CheckoutService struct {
	db            *gorm.DB
	cfg           CheckoutConfig
	addresses     AddressProvider
	productRepo   repositories.ProductRepositoryImpl
	attrRepo      repositories.AttributeRepository
	variantRepo   repositories.VariantRepository
	orderRepo     repositories.OrderRepository
	orderItemRepo repositories.OrderItemRepository
	statusRepo    repositories.OrderStatusRepository
	cart          *CartService
	money         *format.Money
	metrics       *metrics.Metrics
}

func NewCheckoutService(
	db *gorm.DB,
	cfg CheckoutConfig,
	addresses AddressProvider,
	productRepo repositories.ProductRepositoryImpl,
	attrRepo repositories.AttributeRepository,
	variantRepo repositories.VariantRepository,
	orderRepo repositories.OrderRepository,
	orderItemRepo repositories.OrderItemRepository,
	statusRepo repositories.OrderStatusRepository,
	cart *CartService,
	money *format.Money,
	m *metrics.Metrics,
) *CheckoutService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &CheckoutService{
		db:            db,
		cfg:           cfg,
		addresses:     addresses,
		productRepo:   productRepo,
		attrRepo:      attrRepo,
		variantRepo:   variantRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		statusRepo:    statusRepo,
		cart:          cart,
		money:         money,
		metrics:       m,
	}
}

// CheckoutSession places an order from the cart stored under cartKey and
// empties that cart once the order is committed. A failed checkout leaves
// the cart and its discount code untouched.
func (s *CheckoutService) CheckoutSession(ctx context.Context, cartKey, userID, addressID, discountCode string) (*OrderSummary, error) {
	cart, err := s.cart.Snapshot(ctx, cartKey)
	if err != nil {
		return nil, err
	}

	summary, err := s.PlaceOrder(ctx, userID, cart, addressID, discountCode)
	if err != nil {
		return nil, err
	}

	if err := s.cart.Clear(ctx, cartKey); err != nil {
		log.Printf("CheckoutService.CheckoutSession: order %s placed but cart %s not cleared: %v", summary.OrderID, cartKey, err)
	}
	return summary, nil
}

// PlaceOrder turns a cart into one pending cash-on-delivery order. Stock
// checks, the order rows and the stock decrement share one transaction
// that holds row locks on every variant involved.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, cart models.Cart, addressID, discountCode string) (summary *OrderSummary, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = string(AsError(err).Code)
		}
		s.metrics.ObserveCheckout(outcome)
	}()

	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	for _, line := range cart.Lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	address, err := s.checkAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	code := discountCode
	if strings.TrimSpace(code) == "" {
		code = cart.DiscountCode
	}
	if _, err := calc.EvaluateCoupon(code, decimal.Zero, s.cfg.DeliveryFee); err != nil {
		return nil, newError(CodeInvalidDiscountCode, "discount code %q is not valid", calc.NormalizeCoupon(code))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var order *models.Order
	var coupon calc.CouponResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		order, coupon, txErr = s.placeOrderTx(ctx, tx, userID, address.ID, cart, code)
		return txErr
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		if repositories.IsLockConflict(err) {
			return nil, conflict(CodeCheckoutStockFailed, err, "stock is busy, please retry")
		}
		log.Printf("CheckoutService.PlaceOrder: user %s: %v", userID, err)
		return nil, internal(err, "failed to place order")
	}

	log.Printf("CheckoutService.PlaceOrder: order %s placed for user %s, store %s, total %s", order.ID, userID, order.StoreID, order.TotalAmount)
	return s.summarize(order, coupon.Label), nil
}

func (s *CheckoutService) placeOrderTx(ctx context.Context, tx *gorm.DB, userID, addressID string, cart models.Cart, code string) (*models.Order, calc.CouponResult, error) {
	var coupon calc.CouponResult

	productIDs := make([]string, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, tx, productIDs)
	if err != nil {
		return nil, coupon, fmt.Errorf("load products: %w", err)
	}

	storeID := ""
	for _, line := range cart.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, coupon, newError(CodeCheckoutStockFailed, "product %s is no longer sold", line.ProductID)
		}
		if storeID == "" {
			storeID = product.StoreID
		} else if storeID != product.StoreID {
			return nil, coupon, ErrMultiStoreNotAllowed
		}
	}

	needed := make(map[string]int, len(cart.Lines))
	var plainIDs []string
	for _, line := range cart.Lines {
		if line.VariantID == "" {
			plainIDs = append(plainIDs, line.ProductID)
			continue
		}
		needed[line.VariantID] += line.Quantity
	}
	owners, err := s.variantRepo.ProductsWithVariants(ctx, tx, plainIDs)
	if err != nil {
		return nil, coupon, fmt.Errorf("load product options: %w", err)
	}
	variantIDs := make([]string, 0, len(needed))
	for id := range needed {
		variantIDs = append(variantIDs, id)
	}
	sort.Strings(variantIDs)

	locked, err := s.variantRepo.LockByIDs(ctx, tx, variantIDs)
	if err != nil {
		return nil, coupon, fmt.Errorf("lock variants: %w", err)
	}
	variants := make(map[string]models.Variant, len(locked))
	colorIDs := make([]string, 0, len(locked))
	sizeIDs := make([]string, 0, len(locked))
	for _, v := range locked {
		variants[v.ID] = v
		colorIDs = append(colorIDs, v.ColorID)
		sizeIDs = append(sizeIDs, v.SizeID)
	}

	for _, line := range cart.Lines {
		product := products[line.ProductID]
		if line.VariantID == "" {
			switch {
			case owners[product.ID]:
				return nil, coupon, newError(CodeCheckoutStockFailed, "%s needs an option to be chosen", product.Name)
			case !product.IsActive:
				return nil, coupon, newError(CodeCheckoutStockFailed, "%s is not available", product.Name)
			}
			continue
		}
		variant, ok := variants[line.VariantID]
		switch {
		case !ok || variant.ProductID != product.ID:
			return nil, coupon, newError(CodeCheckoutStockFailed, "an option of %s is no longer sold", product.Name)
		case !product.IsActive || !variant.IsEnabled:
			return nil, coupon, newError(CodeCheckoutStockFailed, "%s is not available", product.Name)
		case !variant.Sellable(needed[variant.ID]):
			return nil, coupon, newError(CodeCheckoutStockFailed, "only %d of %s left", variant.StockQty, product.Name)
		}
	}

	colors, err := s.attrRepo.FindColorsByIDs(ctx, tx, dedupe(colorIDs))
	if err != nil {
		return nil, coupon, fmt.Errorf("load colors: %w", err)
	}
	sizes, err := s.attrRepo.FindSizesByIDs(ctx, tx, dedupe(sizeIDs))
	if err != nil {
		return nil, coupon, fmt.Errorf("load sizes: %w", err)
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		product := products[line.ProductID]
		item := models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
		}
		if line.VariantID == "" {
			item.VariantLabel = (&models.Variant{}).DisplayName()
			item.Price = product.BasePrice
		} else {
			variant := variants[line.VariantID]
			if c, ok := colors[variant.ColorID]; ok {
				variant.Color = &c
			}
			if sz, ok := sizes[variant.SizeID]; ok {
				variant.Size = &sz
			}
			variantID := variant.ID
			item.VariantID = &variantID
			item.VariantLabel = variant.DisplayName()
			item.Price = variant.EffectivePrice(product.BasePrice)
		}
		subtotal = subtotal.Add(item.LineTotal())
		items = append(items, item)
	}

	coupon, err = calc.EvaluateCoupon(code, subtotal, s.cfg.DeliveryFee)
	if err != nil {
		return nil, coupon, newError(CodeInvalidDiscountCode, "discount code %q is not valid", calc.NormalizeCoupon(code))
	}

	order := &models.Order{
		UserID:         userID,
		StoreID:        storeID,
		Status:         models.OrderStatusPending,
		Subtotal:       subtotal,
		DeliveryFee:    s.cfg.DeliveryFee,
		DiscountCode:   coupon.Code,
		DiscountAmount: coupon.Amount,
		TotalAmount:    calc.GrandTotal(subtotal, s.cfg.DeliveryFee, coupon.Amount),
		PaymentMethod:  models.PaymentMethodCOD,
		AddressID:      &addressID,
	}
	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		return nil, coupon, fmt.Errorf("create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.orderItemRepo.BulkCreate(ctx, tx, items); err != nil {
		return nil, coupon, fmt.Errorf("create order items: %w", err)
	}

	created := &models.OrderStatusHistory{
		OrderID:  order.ID,
		ToStatus: models.OrderStatusPending,
		Actor:    "customer:" + userID,
	}
	if err := s.statusRepo.Create(ctx, tx, created); err != nil {
		return nil, coupon, fmt.Errorf("record order creation: %w", err)
	}

	for _, id := range variantIDs {
		ok, err := s.variantRepo.DecrementStock(ctx, tx, id, needed[id])
		if err != nil {
			return nil, coupon, fmt.Errorf("decrement stock of %s: %w", id, err)
		}
		if !ok {
			return nil, coupon, newError(CodeCheckoutStockFailed, "stock of variant %s changed", id)
		}
	}

	order.OrderItems = items
	return order, coupon, nil
}

func (s *CheckoutService) checkAddress(ctx context.Context, userID, addressID string) (*models.Address, error) {
	if addressID == "" {
		return nil, newError(CodeInvalidAddress, "no delivery address given")
	}
	address, err := s.addresses.FindAddressByID(ctx, addressID)
	if err != nil {
		return nil, internal(err, "failed to load address")
	}
	if address == nil || address.UserID != userID {
		return nil, newError(CodeInvalidAddress, "address %s not found", addressID)
	}
	if !s.deliversTo(address.City) {
		return nil, newError(CodeInvalidAddress, "no delivery to %s", address.City)
	}
	return address, nil
}

func (s *CheckoutService) deliversTo(city string) bool {
	if len(s.cfg.DeliveryCities) == 0 {
		return true
	}
	city = strings.TrimSpace(city)
	for _, c := range s.cfg.DeliveryCities {
		if strings.EqualFold(c, city) {
			return true
		}
	}
	return false
}

func (s *CheckoutService) summarize(order *models.Order, discountLabel string) *OrderSummary {
	return &OrderSummary{
		OrderID:       order.ID,
		StoreID:       order.StoreID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		Subtotal:      order.Subtotal,
		DeliveryFee:   order.DeliveryFee,
		DiscountCode:  order.DiscountCode,
		DiscountLabel: discountLabel,
		Discount:      order.DiscountAmount,
		TotalAmount:   order.TotalAmount,
		Items:         order.OrderItems,
		CreatedAt:     order.CreatedAt,
		Display: MoneyDisplay{
			Subtotal:    s.money.Format(order.Subtotal),
			DeliveryFee: s.money.Format(order.DeliveryFee),
			Discount:    s.money.Format(order.DiscountAmount),
			Total:       s.money.Format(order.TotalAmount),
		},
	}
}
