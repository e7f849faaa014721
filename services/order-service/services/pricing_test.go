package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Khizarkk7/storefront-backend/services/order-service/models"
)

var defaultPricing = Pricing{
	FreeShippingThreshold: decimal.NewFromInt(2000),
	FlatShippingCost:      decimal.NewFromInt(200),
	TaxRate:               decimal.Zero,
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSubtotal(t *testing.T) {
	got := Subtotal([]models.ItemInput{
		{ProductID: "a", Price: 499.99, Quantity: 2},
		{ProductID: "b", Price: 0.01, Quantity: 3},
	})
	assert.True(t, got.Equal(dec("1000.01")), got.String())
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		pricing      Pricing
		subtotal     string
		discount     string
		freeShipping bool
		wantShipping string
		wantTax      string
		wantGrand    string
	}{
		{"below threshold pays flat shipping", defaultPricing, "1500", "0", false, "200", "0", "1700"},
		{"threshold itself still pays shipping", defaultPricing, "2000", "0", false, "200", "0", "2200"},
		{"above threshold ships free", defaultPricing, "2000.01", "0", false, "0", "0", "2000.01"},
		{"free shipping promo", defaultPricing, "500", "0", true, "0", "0", "500"},
		{"discount applied", defaultPricing, "1000", "100", false, "200", "0", "1100"},
		{"never below zero", defaultPricing, "50", "500", false, "200", "0", "0"},
		{
			"tax on subtotal",
			Pricing{FreeShippingThreshold: dec("2000"), FlatShippingCost: dec("200"), TaxRate: dec("0.17")},
			"1000", "0", false, "200", "170", "1370",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pricing.Compute(dec(tt.subtotal), dec(tt.discount), tt.freeShipping)
			assert.True(t, got.Shipping.Equal(dec(tt.wantShipping)), "shipping %s", got.Shipping)
			assert.True(t, got.Tax.Equal(dec(tt.wantTax)), "tax %s", got.Tax)
			assert.True(t, got.GrandTotal.Equal(dec(tt.wantGrand)), "grand %s", got.GrandTotal)
		})
	}
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
	n := NewOrderNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^ORD-20260309-[A-Z2-9]{6}$`), n)
	assert.NotEqual(t, n, NewOrderNumber(now))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.StatusPendingCOD, models.StatusConfirmed))
	assert.True(t, CanTransition(models.StatusProcessing, models.StatusCancelled))
	assert.True(t, CanTransition(models.StatusShipped, models.StatusDelivered))
	assert.False(t, CanTransition(models.StatusShipped, models.StatusCancelled))
	assert.False(t, CanTransition(models.StatusDelivered, models.StatusCancelled))
	assert.False(t, CanTransition(models.StatusCancelled, models.StatusConfirmed))
	assert.False(t, CanTransition(models.StatusPendingPayment, models.StatusShipped))
}
