package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/televista/storefront-api/internal/cart"
	"github.com/televista/storefront-api/internal/catalog"
	"github.com/televista/storefront-api/internal/pricing"
)

func newFixture(t *testing.T) (*cart.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	client := catalog.MockClient{Items: []catalog.Product{
		{
			ID:       "tv-55-uhd",
			Title:    "55\" UHD TV",
			Price:    42000,
			NewPrice: 36960,
			Stock:    4,
			Warranty: pricing.NewSchedule(map[int]pricing.Money{6: 500, 12: 800}),
		},
		{
			ID:       "soundbar-200",
			Title:    "Soundbar 200W",
			Price:    9000,
			NewPrice: 9000,
			Stock:    10,
		},
	}}
	svc, err := catalog.NewService(catalog.ServiceConfig{Client: client})
	require.NoError(t, err)

	return &cart.Service{R: rdb, Catalog: svc, TTL: time.Hour}, mr
}

func TestCartLifecycle(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Empty(t, c.Items)

	c, err = svc.AddItem(ctx, c.ID, "tv-55-uhd", 2, 12)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	require.Equal(t, 2, c.Items[0].Qty)
	require.Equal(t, 12, c.Items[0].WarrantyMonths)

	c, err = svc.AddItem(ctx, c.ID, "soundbar-200", 1, 0)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)

	c, err = svc.UpdateQty(ctx, c.ID, "tv-55-uhd", 3)
	require.NoError(t, err)
	require.Equal(t, 3, c.Items[0].Qty)

	c, err = svc.RemoveItem(ctx, c.ID, "soundbar-200")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	require.NoError(t, svc.Clear(ctx, c.ID))
	c, err = svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, c.Items)
}

func TestCartStockAndWarrantyValidation(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, "tv-55-uhd", 5, 0)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	_, err = svc.AddItem(ctx, c.ID, "tv-55-uhd", 1, 24)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	c, err = svc.AddItem(ctx, c.ID, "tv-55-uhd", 3, 0)
	require.NoError(t, err)

	// Incrementing past stock is rejected too.
	_, err = svc.AddItem(ctx, c.ID, "tv-55-uhd", 2, 0)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	_, err = svc.AddItem(ctx, c.ID, "no-such-product", 1, 0)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.UpdateQty(ctx, c.ID, "tv-55-uhd", 0)
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}

func TestCartSelectWarranty(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)
	c, err = svc.AddItem(ctx, c.ID, "tv-55-uhd", 1, 0)
	require.NoError(t, err)

	c, err = svc.SelectWarranty(ctx, c.ID, "tv-55-uhd", 6)
	require.NoError(t, err)
	require.Equal(t, 6, c.Items[0].WarrantyMonths)

	_, err = svc.SelectWarranty(ctx, c.ID, "tv-55-uhd", 18)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	c, err = svc.SelectWarranty(ctx, c.ID, "tv-55-uhd", 0)
	require.NoError(t, err)
	require.Equal(t, 0, c.Items[0].WarrantyMonths)
}

func TestCartQuote(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, c.ID, "tv-55-uhd", 2, 12)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, c.ID, "soundbar-200", 1, 0)
	require.NoError(t, err)

	quote, err := svc.QuoteCart(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, quote.Items, 2)

	// 36960*2 + 800 surcharge, plus 9000*1 with no warranty.
	require.Equal(t, pricing.Money(74720), quote.Items[0].LineTotal)
	require.Equal(t, pricing.Money(800), quote.Items[0].WarrantySurcharge)
	require.Equal(t, pricing.Money(9000), quote.Items[1].LineTotal)
	require.Equal(t, pricing.Money(83720), quote.Subtotal)
}

func TestCartExpiresAndTouchesTTL(t *testing.T) {
	svc, mr := newFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(30 * time.Minute)
	_, err = svc.AddItem(ctx, c.ID, "soundbar-200", 1, 0)
	require.NoError(t, err)

	// The write refreshed the TTL, so the cart survives past the original hour.
	mr.FastForward(45 * time.Minute)
	_, err = svc.Get(ctx, c.ID)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = svc.Get(ctx, c.ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCartQuoteWithVanishedWarrantyOption(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	products := []catalog.Product{{
		ID:       "tv-55-uhd",
		Title:    "55\" UHD TV",
		Price:    42000,
		NewPrice: 36960,
		Stock:    4,
		Warranty: pricing.NewSchedule(map[int]pricing.Money{12: 800}),
	}}
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{Client: catalog.MockClient{Items: products}})
	require.NoError(t, err)
	svc := &cart.Service{R: rdb, Catalog: catalogSvc, TTL: time.Hour}
	ctx := context.Background()

	c, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, c.ID, "tv-55-uhd", 2, 0)
	require.NoError(t, err)
	_, err = svc.SelectWarranty(ctx, c.ID, "tv-55-uhd", 12)
	require.NoError(t, err)

	// The upstream drops the 12-month option after it was selected. The
	// stored selection is kept but prices with zero surcharge.
	products[0].Warranty = pricing.NewSchedule(map[int]pricing.Money{6: 500})

	quote, err := svc.QuoteCart(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, quote.Items, 1)
	require.Equal(t, 12, quote.Items[0].WarrantyMonths)
	require.Equal(t, pricing.Money(0), quote.Items[0].WarrantySurcharge)
	require.Equal(t, pricing.Money(73920), quote.Items[0].LineTotal)
	require.Equal(t, pricing.Money(73920), quote.Subtotal)
}
