package calc

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidCoupon = errors.New("invalid discount code")

const (
	CouponFreeShip = "FREESHIP"
	CouponWelcome  = "WELCOME10"
	CouponRemove   = "REMOVE"
)

var flatCouponPattern = regexp.MustCompile(`^SAVE([0-9]+)$`)

type CouponResult struct {
	Code   string
	Amount decimal.Decimal
	Label  string
	// Remove is set for the REMOVE code: the caller clears its stored code.
	Remove bool
}

func NormalizeCoupon(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func CalculateDiscount(baseTotal, discountPercent decimal.Decimal) decimal.Decimal {
	return baseTotal.Mul(discountPercent).Div(decimal.NewFromInt(100))
}

// EvaluateCoupon prices a discount code against a cart. The amount never
// exceeds subtotal plus delivery fee. An empty code yields a zero result.
func EvaluateCoupon(code string, subtotal, deliveryFee decimal.Decimal) (CouponResult, error) {
	code = NormalizeCoupon(code)
	result := CouponResult{Code: code, Amount: decimal.Zero}

	switch {
	case code == "":
		return result, nil
	case code == CouponRemove:
		result.Code = ""
		result.Remove = true
		return result, nil
	case code == CouponFreeShip:
		result.Amount = deliveryFee
		result.Label = "Free delivery"
	case code == CouponWelcome:
		result.Amount = CalculateDiscount(subtotal, decimal.NewFromInt(10)).Round(0)
		result.Label = "10% off"
	default:
		m := flatCouponPattern.FindStringSubmatch(code)
		if m == nil {
			return CouponResult{}, ErrInvalidCoupon
		}
		n, err := decimal.NewFromString(m[1])
		if err != nil || !n.IsPositive() {
			return CouponResult{}, ErrInvalidCoupon
		}
		result.Amount = n
		result.Label = n.String() + " off"
	}

	result.Amount = CapDiscount(result.Amount, subtotal, deliveryFee)
	return result, nil
}

func CapDiscount(amount, subtotal, deliveryFee decimal.Decimal) decimal.Decimal {
	limit := subtotal.Add(deliveryFee)
	if amount.GreaterThan(limit) {
		return limit
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// GrandTotal is subtotal + fee - discount, floored at zero.
func GrandTotal(subtotal, deliveryFee, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(deliveryFee).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
