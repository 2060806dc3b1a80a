package orders

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ErrNotFound indicates no status record exists for the order id.
var ErrNotFound = errors.New("order not found")

// StatusStore tracks order submission state in Redis. Records are short-lived
// progress markers for the storefront, not the durable order ledger, which
// the commerce backend owns.
type StatusStore struct {
	R   *redis.Client
	TTL time.Duration
}

func statusKey(orderID string) string { return "order:status:" + orderID }

func (s *StatusStore) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 72 * time.Hour
	}
	return s.TTL
}

// Set records the current status for an order.
func (s *StatusStore) Set(ctx context.Context, orderID string, status Status) error {
	if s == nil || s.R == nil {
		return errors.New("status store not configured")
	}
	return s.R.Set(ctx, statusKey(orderID), string(status), s.ttl()).Err()
}

// Get returns the last recorded status for an order.
func (s *StatusStore) Get(ctx context.Context, orderID string) (Status, error) {
	if s == nil || s.R == nil {
		return "", errors.New("status store not configured")
	}
	val, err := s.R.Get(ctx, statusKey(orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return Status(val), nil
}
