package models

import "github.com/shopspring/decimal"

// CartLine lives in the session only. The projection fields are filled in
// by the cart service on every read and are not trusted on input.
type CartLine struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`

	StoreID      string          `json:"store_id,omitempty"`
	ProductName  string          `json:"product_name,omitempty"`
	VariantLabel string          `json:"variant_label,omitempty"`
	Available    bool            `json:"available"`
	Notice       string          `json:"notice,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

func (l CartLine) Key() CartLineKey {
	return CartLineKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

type CartLineKey struct {
	ProductID string
	VariantID string
}

type Cart struct {
	Lines        []CartLine `json:"lines"`
	DiscountCode string     `json:"discount_code,omitempty"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Find(key CartLineKey) int {
	for i, line := range c.Lines {
		if line.Key() == key {
			return i
		}
	}
	return -1
}

// Clone copies the line slice so callers can mutate without touching the
// stored value until they put it back.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines, DiscountCode: c.DiscountCode}
}
