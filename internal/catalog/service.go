package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/televista/storefront-api/internal/common"
	"github.com/televista/storefront-api/internal/pricing"
)

// Service orchestrates catalog fetches, boundary validation and caching.
type Service struct {
	client       Client
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Client       Client
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Client == nil {
		return nil, errors.New("catalog client is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &Service{
		client:       cfg.Client,
		cache:        cfg.Cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ListResult is one catalog page with its total size.
type ListResult struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// Quote is the price preview for one product at a given quantity and warranty
// selection.
type Quote struct {
	ProductID         string        `json:"productId"`
	Qty               int           `json:"qty"`
	UnitPrice         pricing.Money `json:"unitPrice"`
	WarrantyMonths    int           `json:"warrantyMonths,omitempty"`
	WarrantySurcharge pricing.Money `json:"warrantySurcharge"`
	LineTotal         pricing.Money `json:"lineTotal"`
}

// Product returns one validated product, cache-aside.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	key := "catalog:product:" + id
	var cached Product
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	product, err := s.client.Product(ctx, id)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.SetJSON(ctx, key, product)
	return product, nil
}

// List returns one validated catalog page, cache-aside.
func (s *Service) List(ctx context.Context, page, limit int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	key := fmt.Sprintf("catalog:products:%d:%d", page, limit)
	var cached ListResult
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	items, total, err := s.client.Products(ctx, page, limit)
	if err != nil {
		return ListResult{}, err
	}
	result := ListResult{Items: items, Total: total, Page: page, Limit: limit}
	_ = s.cache.SetJSON(ctx, key, result)
	return result, nil
}

// Wholesale returns the validated wholesale catalog, cache-aside.
func (s *Service) Wholesale(ctx context.Context) ([]WholesaleProduct, error) {
	key := "catalog:wholesale"
	var cached []WholesaleProduct
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	products, err := s.client.WholesaleProducts(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, products)
	return products, nil
}

// QuoteProduct prices one product for the product page: discounted unit price
// times quantity plus the flat surcharge for the selected additional warranty.
// Unknown warranty selections price as zero surcharge.
func (s *Service) QuoteProduct(ctx context.Context, id string, qty, warrantyMonths int) (Quote, error) {
	product, err := s.Product(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	qty = common.NormalizeQty(qty)
	surcharge := product.Warranty.Surcharge(warrantyMonths)
	return Quote{
		ProductID:         product.ID,
		Qty:               qty,
		UnitPrice:         product.NewPrice,
		WarrantyMonths:    warrantyMonths,
		WarrantySurcharge: surcharge,
		LineTotal:         pricing.LineTotal(product.NewPrice, qty, surcharge),
	}, nil
}
