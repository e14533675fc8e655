// Package pricing computes cart totals. All functions are pure; the rates
// come from the settings table at call time so admin changes apply to the
// next computation without a restart.
package pricing

import "github.com/pawshop/pawshop/internal/domain"

const (
	DefaultFreeShippingThreshold = 500000
	DefaultShippingFee           = 25000
	DefaultTaxRate               = 0
)

// Rates holds the pricing constants for one computation.
type Rates struct {
	FreeShippingThreshold float64
	ShippingFee           float64
	TaxRate               float64
}

func DefaultRates() Rates {
	return Rates{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		ShippingFee:           DefaultShippingFee,
		TaxRate:               DefaultTaxRate,
	}
}

// Subtotal sums unit price times quantity over all line items.
func Subtotal(items []domain.CartItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Product.Price * float64(item.Quantity)
	}
	return sum
}

// Shipping applies the free-shipping threshold rule. An empty cart
// (subtotal 0) is never charged shipping.
func (r Rates) Shipping(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	if subtotal >= r.FreeShippingThreshold {
		return 0
	}
	return r.ShippingFee
}

// Tax is a fixed-rate add-on on the subtotal. The default variant runs
// tax-free (rate 0).
func (r Rates) Tax(subtotal float64) float64 {
	return subtotal * r.TaxRate
}

// Quote computes the full derived pricing for a line-item sequence.
func (r Rates) Quote(items []domain.CartItem) domain.Cart {
	subtotal := Subtotal(items)
	shipping := r.Shipping(subtotal)
	tax := r.Tax(subtotal)
	return domain.Cart{
		Items:    items,
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
