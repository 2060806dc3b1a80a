package catalog

import (
	"errors"
	"testing"
)

func TestNormalizeProductBuildsOrderedSchedule(t *testing.T) {
	raw := rawProduct{
		ID:              "tv-55",
		Title:           "55 inch LED",
		Price:           42000,
		NewPrice:        36999,
		Stock:           12,
		WarrantyMonths:  12,
		WarrantyPricing: map[string]int64{"12": 800, "6": 500, "24": 1500},
	}
	product, err := normalizeProduct(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(product.Warranty) != 3 {
		t.Fatalf("expected 3 warranty options, got %d", len(product.Warranty))
	}
	for i, want := range []int{6, 12, 24} {
		if product.Warranty[i].Months != want {
			t.Fatalf("position %d: expected %d months, got %d", i, want, product.Warranty[i].Months)
		}
	}
	if product.Warranty.Surcharge(12) != 800 {
		t.Fatalf("expected surcharge 800, got %d", product.Warranty.Surcharge(12))
	}
}

func TestNormalizeProductRejectsBadRecords(t *testing.T) {
	cases := []struct {
		name string
		raw  rawProduct
	}{
		{"missing id", rawProduct{Price: 100, NewPrice: 100}},
		{"negative new price", rawProduct{ID: "p", Price: 100, NewPrice: -1}},
		{"new price above price", rawProduct{ID: "p", Price: 100, NewPrice: 150}},
		{"negative stock", rawProduct{ID: "p", Price: 100, NewPrice: 90, Stock: -1}},
		{"non numeric warranty key", rawProduct{ID: "p", Price: 100, NewPrice: 90, WarrantyPricing: map[string]int64{"six": 500}}},
		{"zero warranty key", rawProduct{ID: "p", Price: 100, NewPrice: 90, WarrantyPricing: map[string]int64{"0": 500}}},
		{"negative surcharge", rawProduct{ID: "p", Price: 100, NewPrice: 90, WarrantyPricing: map[string]int64{"6": -500}}},
	}
	for _, tc := range cases {
		if _, err := normalizeProduct(tc.raw); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", tc.name, err)
		}
	}
}

func TestNormalizeWholesaleValidatesBreaks(t *testing.T) {
	max := 9
	raw := rawWholesaleProduct{
		Product: rawProduct{ID: "tv-32", Price: 15000, NewPrice: 13999, Stock: 500},
		PriceBreaks: []rawPriceBreak{
			{MinQuantity: 1, MaxQuantity: &max, Discount: 0},
			{MinQuantity: 10, Discount: 500},
		},
	}
	product, err := normalizeWholesale(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(product.PriceBreaks) != 2 {
		t.Fatalf("expected 2 breaks, got %d", len(product.PriceBreaks))
	}

	raw.PriceBreaks[1].MinQuantity = 0
	if _, err := normalizeWholesale(raw); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for minQuantity 0, got %v", err)
	}

	inverted := 5
	raw.PriceBreaks[1] = rawPriceBreak{MinQuantity: 10, MaxQuantity: &inverted, Discount: 500}
	if _, err := normalizeWholesale(raw); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for inverted range, got %v", err)
	}
}
