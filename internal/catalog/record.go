package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/televista/storefront-api/internal/pricing"
)

// ErrInvalidRecord indicates the upstream backend returned a product record
// that fails boundary validation.
var ErrInvalidRecord = errors.New("catalog: invalid product record")

// Product is a validated catalog record. NewPrice is the backend-computed
// discounted unit price and is treated as ground truth: it is never
// recomputed from Price and DiscountPercentage here.
type Product struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Slug               string           `json:"slug"`
	Price              pricing.Money    `json:"price"`
	DiscountPercentage int              `json:"discount_percentage"`
	NewPrice           pricing.Money    `json:"new_price"`
	Stock              int              `json:"stock"`
	WarrantyMonths     int              `json:"warranty_months"`
	Warranty           pricing.Schedule `json:"warranty_options"`
}

// WholesaleProduct is a catalog record carrying quantity-tiered price breaks.
type WholesaleProduct struct {
	Product     `json:"product"`
	PriceBreaks []pricing.PriceBreak `json:"price_breaks"`
}

type rawProduct struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Slug               string           `json:"slug"`
	Price              int64            `json:"price"`
	DiscountPercentage int              `json:"discount_percentage"`
	NewPrice           int64            `json:"new_price"`
	Stock              int              `json:"stock"`
	WarrantyMonths     int              `json:"warranty_months"`
	WarrantyPricing    map[string]int64 `json:"warranty_pricing"`
}

type rawPriceBreak struct {
	MinQuantity int   `json:"minQuantity"`
	MaxQuantity *int  `json:"maxQuantity,omitempty"`
	Discount    int64 `json:"discount"`
}

type rawWholesaleProduct struct {
	Product     rawProduct      `json:"product_id"`
	PriceBreaks []rawPriceBreak `json:"priceBreaks"`
}

// normalizeProduct validates a raw upstream record and builds the ordered
// warranty schedule from the stringified-month-keyed object. All shape
// problems surface here, once, instead of at every price computation.
func normalizeProduct(raw rawProduct) (Product, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return Product{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if raw.NewPrice < 0 {
		return Product{}, fmt.Errorf("%w: product %s has negative new_price %d", ErrInvalidRecord, raw.ID, raw.NewPrice)
	}
	if raw.Price < 0 {
		return Product{}, fmt.Errorf("%w: product %s has negative price %d", ErrInvalidRecord, raw.ID, raw.Price)
	}
	if raw.NewPrice > raw.Price {
		return Product{}, fmt.Errorf("%w: product %s has new_price %d above price %d", ErrInvalidRecord, raw.ID, raw.NewPrice, raw.Price)
	}
	if raw.Stock < 0 {
		return Product{}, fmt.Errorf("%w: product %s has negative stock %d", ErrInvalidRecord, raw.ID, raw.Stock)
	}

	schedule, err := normalizeWarranty(raw.ID, raw.WarrantyPricing)
	if err != nil {
		return Product{}, err
	}

	return Product{
		ID:                 raw.ID,
		Title:              raw.Title,
		Slug:               raw.Slug,
		Price:              raw.Price,
		DiscountPercentage: raw.DiscountPercentage,
		NewPrice:           raw.NewPrice,
		Stock:              raw.Stock,
		WarrantyMonths:     raw.WarrantyMonths,
		Warranty:           schedule,
	}, nil
}

func normalizeWarranty(productID string, raw map[string]int64) (pricing.Schedule, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	options := make(map[int]pricing.Money, len(raw))
	for key, surcharge := range raw {
		months, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || months <= 0 {
			return nil, fmt.Errorf("%w: product %s has warranty key %q", ErrInvalidRecord, productID, key)
		}
		if surcharge < 0 {
			return nil, fmt.Errorf("%w: product %s has negative warranty surcharge for %d months", ErrInvalidRecord, productID, months)
		}
		options[months] = surcharge
	}
	return pricing.NewSchedule(options), nil
}

func normalizeWholesale(raw rawWholesaleProduct) (WholesaleProduct, error) {
	product, err := normalizeProduct(raw.Product)
	if err != nil {
		return WholesaleProduct{}, err
	}
	breaks := make([]pricing.PriceBreak, 0, len(raw.PriceBreaks))
	for _, b := range raw.PriceBreaks {
		if b.MinQuantity < 1 {
			return WholesaleProduct{}, fmt.Errorf("%w: product %s has price break with minQuantity %d", ErrInvalidRecord, product.ID, b.MinQuantity)
		}
		if b.MaxQuantity != nil && *b.MaxQuantity < b.MinQuantity {
			return WholesaleProduct{}, fmt.Errorf("%w: product %s has inverted price break range [%d,%d]", ErrInvalidRecord, product.ID, b.MinQuantity, *b.MaxQuantity)
		}
		if b.Discount < 0 {
			return WholesaleProduct{}, fmt.Errorf("%w: product %s has negative price break discount", ErrInvalidRecord, product.ID)
		}
		breaks = append(breaks, pricing.PriceBreak{MinQty: b.MinQuantity, MaxQty: b.MaxQuantity, Discount: b.Discount})
	}
	return WholesaleProduct{Product: product, PriceBreaks: breaks}, nil
}
