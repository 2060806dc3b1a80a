package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/televista/storefront-api/internal/catalog"
	"github.com/televista/storefront-api/internal/pricing"
	"github.com/televista/storefront-api/internal/resilience"
)

const productJSON = `{
	"data": {
		"id": "tv-55-uhd",
		"title": "Televista 55 UHD",
		"slug": "televista-55-uhd",
		"price": 42000,
		"discount_percentage": 12,
		"new_price": 36960,
		"stock": 8,
		"warranty_months": 12,
		"warranty_pricing": {"6": 500, "12": 800}
	}
}`

func newRESTClient(baseURL string) *catalog.RESTClient {
	return &catalog.RESTClient{
		BaseURL: baseURL,
		APIKey:  "test-key",
		HTTP: &resilience.HTTPClient{
			Client:      &http.Client{Timeout: time.Second},
			MaxAttempts: 2,
			BaseBackoff: time.Millisecond,
		},
	}
}

func TestRESTClientFetchesAndNormalizes(t *testing.T) {
	var sawKey string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawKey = r.Header.Get("X-API-Key")
		require.Equal(t, "/v1/products/tv-55-uhd", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productJSON))
	}))
	defer upstream.Close()

	client := newRESTClient(upstream.URL)
	product, err := client.Product(context.Background(), "tv-55-uhd")
	require.NoError(t, err)
	require.Equal(t, "test-key", sawKey)
	require.Equal(t, pricing.Money(36960), product.NewPrice)
	require.Equal(t, pricing.Money(800), product.Warranty.Surcharge(12))
	require.Equal(t, pricing.Money(0), product.Warranty.Surcharge(24))
}

func TestRESTClientNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	client := newRESTClient(upstream.URL)
	_, err := client.Product(context.Background(), "ghost")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRESTClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productJSON))
	}))
	defer upstream.Close()

	client := newRESTClient(upstream.URL)
	product, err := client.Product(context.Background(), "tv-55-uhd")
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	require.Equal(t, "tv-55-uhd", product.ID)
}

func TestServiceCachesProducts(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hits := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productJSON))
	}))
	defer upstream.Close()

	svc, err := catalog.NewService(catalog.ServiceConfig{
		Client: newRESTClient(upstream.URL),
		Cache:  catalog.NewCache(rdb, time.Minute),
	})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.Product(ctx, "tv-55-uhd")
	require.NoError(t, err)
	second, err := svc.Product(ctx, "tv-55-uhd")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, hits)
}

func TestServiceQuoteProduct(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Client: catalog.MockClient{Items: []catalog.Product{{
			ID:       "tv-43",
			Price:    25000,
			NewPrice: 22999,
			Stock:    5,
			Warranty: pricing.NewSchedule(map[int]pricing.Money{6: 500, 12: 800}),
		}}},
	})
	require.NoError(t, err)

	ctx := context.Background()

	quote, err := svc.QuoteProduct(ctx, "tv-43", 2, 12)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(22999), quote.UnitPrice)
	require.Equal(t, pricing.Money(800), quote.WarrantySurcharge)
	require.Equal(t, pricing.Money(22999*2+800), quote.LineTotal)

	// unknown warranty selection degrades to zero surcharge
	quote, err = svc.QuoteProduct(ctx, "tv-43", 1, 36)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(0), quote.WarrantySurcharge)
	require.Equal(t, pricing.Money(22999), quote.LineTotal)

	// zero quantity resolves to one unit
	quote, err = svc.QuoteProduct(ctx, "tv-43", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, quote.Qty)
	require.Equal(t, pricing.Money(22999), quote.LineTotal)
}
