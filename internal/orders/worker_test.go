package orders_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/televista/storefront-api/internal/orders"
	"github.com/televista/storefront-api/internal/resilience"
)

func newStore(t *testing.T) *orders.StatusStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &orders.StatusStore{R: rdb, TTL: time.Hour}
}

func sampleOrder() orders.Order {
	return orders.Order{
		ID:   "ord-1",
		Kind: orders.KindRetail,
		Contact: orders.Contact{
			Name:    "Rizky",
			Phone:   "+628123456789",
			Address: "Jl. Sudirman 10, Jakarta",
		},
		Lines: []orders.Line{
			{ProductID: "tv-55-uhd", Qty: 2, UnitPrice: 36960, WarrantyMonths: 12, WarrantySurcharge: 800, LineTotal: 74720},
		},
		Subtotal:  74720,
		Shipping:  99,
		Total:     74819,
		Currency:  "INR",
		CreatedAt: time.Now(),
	}
}

func TestStatusStoreRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, orders.ErrNotFound)

	require.NoError(t, store.Set(ctx, "ord-1", orders.StatusQueued))
	status, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.Equal(t, orders.StatusQueued, status)
}

func TestWorkerDeliversOrder(t *testing.T) {
	var received orders.Order
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/orders", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("X-API-Key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer upstream.Close()

	store := newStore(t)
	worker := &orders.Worker{
		Submitter: orders.RESTSubmitter{
			BaseURL: upstream.URL,
			APIKey:  "secret",
			HTTP:    resilience.HTTPClient{Client: upstream.Client(), MaxAttempts: 2, BaseBackoff: time.Millisecond},
		},
		Store: store,
		Log:   zerolog.Nop(),
	}

	order := sampleOrder()
	payload, err := json.Marshal(order)
	require.NoError(t, err)

	err = worker.HandleSubmit(context.Background(), asynq.NewTask(orders.TaskSubmit, payload))
	require.NoError(t, err)
	require.Equal(t, order.ID, received.ID)
	require.Equal(t, order.Total, received.Total)

	status, err := store.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, orders.StatusSubmitted, status)
}

func TestWorkerReturnsErrorOnBackendFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	store := newStore(t)
	worker := &orders.Worker{
		Submitter: orders.RESTSubmitter{
			BaseURL: upstream.URL,
			HTTP:    resilience.HTTPClient{Client: upstream.Client(), MaxAttempts: 1},
		},
		Store: store,
		Log:   zerolog.Nop(),
	}

	payload, err := json.Marshal(sampleOrder())
	require.NoError(t, err)

	err = worker.HandleSubmit(context.Background(), asynq.NewTask(orders.TaskSubmit, payload))
	require.Error(t, err)
}

func TestWorkerSkipsRetryOnMalformedPayload(t *testing.T) {
	worker := &orders.Worker{Store: newStore(t), Log: zerolog.Nop()}
	err := worker.HandleSubmit(context.Background(), asynq.NewTask(orders.TaskSubmit, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
