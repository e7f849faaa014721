package services

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Khizarkk7/storefront-backend/services/order-service/models"
)

// Pricing holds the shop-wide shipping and tax rules.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingCost      decimal.Decimal
	TaxRate               decimal.Decimal
}

type Totals struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Subtotal sums price x quantity.
func Subtotal(items []models.ItemInput) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

// Compute prices an order. Shipping is free strictly above the threshold
// or with a free-shipping promo; the grand total never goes below zero.
func (p Pricing) Compute(subtotal, discount decimal.Decimal, freeShipping bool) Totals {
	shipping := p.FlatShippingCost
	if freeShipping || subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(p.TaxRate).Round(2)
	grand := subtotal.Add(shipping).Add(tax).Sub(discount)
	if grand.IsNegative() {
		grand = decimal.Zero
	}
	return Totals{
		Subtotal:   subtotal.Round(2),
		Shipping:   shipping.Round(2),
		Tax:        tax,
		Discount:   discount.Round(2),
		GrandTotal: grand.Round(2),
	}
}

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewOrderNumber returns ORD-YYYYMMDD-XXXXXX.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			n = big.NewInt(now.UnixNano() % max.Int64())
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return "ORD-" + now.UTC().Format("20060102") + "-" + string(suffix)
}
