package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/televista/storefront-api/internal/catalog"
	"github.com/televista/storefront-api/internal/pricing"
)

// ErrNotFound indicates the requested cart could not be located or expired.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Item is one cart line: a product reference, a quantity and the selected
// additional warranty duration (0 = none).
type Item struct {
	ProductID      string `json:"productId"`
	Qty            int    `json:"qty"`
	WarrantyMonths int    `json:"warrantyMonths,omitempty"`
}

// Cart is the session cart document held in Redis.
type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PricedItem is a cart line with its computed price components.
type PricedItem struct {
	Item
	Title             string        `json:"title"`
	UnitPrice         pricing.Money `json:"unitPrice"`
	WarrantySurcharge pricing.Money `json:"warrantySurcharge"`
	LineTotal         pricing.Money `json:"lineTotal"`
}

// Quote is the priced view of a cart.
type Quote struct {
	Items    []PricedItem    `json:"items"`
	Subtotal pricing.Money   `json:"subtotal"`
	Summary  pricing.Summary `json:"-"`
}

// Service encapsulates session cart operations. Carts live in Redis under a
// TTL and every write refreshes it, mirroring how the storefront keeps carts
// server-side rather than across page reloads.
type Service struct {
	R       *redis.Client
	Catalog *catalog.Service
	TTL     time.Duration
	Now     func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cartKey(id string) string { return "cart:" + id }

// Create allocates an empty cart.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	now := s.now()
	cart := Cart{ID: uuid.NewString(), Items: []Item{}, CreatedAt: now, UpdatedAt: now}
	if err := s.save(ctx, cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// Get loads a cart by id.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if id == "" {
		return Cart{}, fmt.Errorf("cart id required: %w", ErrInvalidInput)
	}
	data, err := s.R.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}
	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// AddItem inserts or increments a cart line. The resulting quantity is
// validated against the product's current stock, and the warranty selection
// must exist in the product's schedule.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, qty, warrantyMonths int) (Cart, error) {
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	product, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	if warrantyMonths != 0 && !product.Warranty.Has(warrantyMonths) {
		return Cart{}, fmt.Errorf("warranty duration %d not offered: %w", warrantyMonths, ErrInvalidInput)
	}

	newQty := qty
	idx := cart.find(productID)
	if idx >= 0 {
		newQty += cart.Items[idx].Qty
	}
	if newQty > product.Stock {
		return Cart{}, fmt.Errorf("quantity %d exceeds stock %d: %w", newQty, product.Stock, ErrInvalidInput)
	}

	if idx >= 0 {
		cart.Items[idx].Qty = newQty
		if warrantyMonths != 0 {
			cart.Items[idx].WarrantyMonths = warrantyMonths
		}
	} else {
		cart.Items = append(cart.Items, Item{ProductID: productID, Qty: qty, WarrantyMonths: warrantyMonths})
	}
	cart.UpdatedAt = s.now()
	if err := s.save(ctx, cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// UpdateQty replaces the quantity for a cart line.
func (s *Service) UpdateQty(ctx context.Context, cartID, productID string, qty int) (Cart, error) {
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	idx := cart.find(productID)
	if idx < 0 {
		return Cart{}, ErrNotFound
	}
	product, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	if qty > product.Stock {
		return Cart{}, fmt.Errorf("quantity %d exceeds stock %d: %w", qty, product.Stock, ErrInvalidInput)
	}
	cart.Items[idx].Qty = qty
	cart.UpdatedAt = s.now()
	if err := s.save(ctx, cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// SelectWarranty sets the additional warranty duration for a cart line.
// Months 0 clears the selection; anything else must exist in the product's
// schedule.
func (s *Service) SelectWarranty(ctx context.Context, cartID, productID string, months int) (Cart, error) {
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	idx := cart.find(productID)
	if idx < 0 {
		return Cart{}, ErrNotFound
	}
	if months != 0 {
		product, err := s.Catalog.Product(ctx, productID)
		if err != nil {
			return Cart{}, err
		}
		if !product.Warranty.Has(months) {
			return Cart{}, fmt.Errorf("warranty duration %d not offered: %w", months, ErrInvalidInput)
		}
	}
	cart.Items[idx].WarrantyMonths = months
	cart.UpdatedAt = s.now()
	if err := s.save(ctx, cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// RemoveItem deletes a cart line.
func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (Cart, error) {
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	idx := cart.find(productID)
	if idx < 0 {
		return Cart{}, ErrNotFound
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	cart.UpdatedAt = s.now()
	if err := s.save(ctx, cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// Clear empties the cart, keeping its id alive.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return err
	}
	cart.Items = []Item{}
	cart.UpdatedAt = s.now()
	return s.save(ctx, cart)
}

// QuoteCart prices every line against a fresh catalog snapshot. A warranty
// selection whose option vanished from the product prices as zero surcharge;
// a vanished product fails the whole quote.
func (s *Service) QuoteCart(ctx context.Context, cartID string) (Quote, error) {
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return Quote{}, err
	}
	priced := make([]PricedItem, 0, len(cart.Items))
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, err := s.Catalog.Product(ctx, item.ProductID)
		if err != nil {
			return Quote{}, err
		}
		surcharge := product.Warranty.Surcharge(item.WarrantyMonths)
		priced = append(priced, PricedItem{
			Item:              item,
			Title:             product.Title,
			UnitPrice:         product.NewPrice,
			WarrantySurcharge: surcharge,
			LineTotal:         pricing.LineTotal(product.NewPrice, item.Qty, surcharge),
		})
		lines = append(lines, pricing.Line{Qty: item.Qty, UnitPrice: product.NewPrice, Warranty: surcharge})
	}
	summary := pricing.Compute(lines, 0)
	return Quote{Items: priced, Subtotal: summary.Subtotal, Summary: summary}, nil
}

// Lines converts the cart into pricing lines for checkout.
func (s *Service) Lines(ctx context.Context, cartID string) ([]pricing.Line, error) {
	quote, err := s.QuoteCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	lines := make([]pricing.Line, 0, len(quote.Items))
	for _, item := range quote.Items {
		lines = append(lines, pricing.Line{Qty: item.Qty, UnitPrice: item.UnitPrice, Warranty: item.WarrantySurcharge})
	}
	return lines, nil
}

func (c Cart) find(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Service) save(ctx context.Context, cart Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, cartKey(cart.ID), data, s.ttl()).Err()
}
