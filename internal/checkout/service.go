package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/televista/storefront-api/internal/cart"
	"github.com/televista/storefront-api/internal/orders"
	"github.com/televista/storefront-api/internal/pricing"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no items.
var ErrEmptyCart = errors.New("cart is empty")

// Service turns a priced cart into an order submission. The grand total is
// the cart subtotal plus the buyer-visible shipping cost; there is no tax
// component anywhere in the total.
type Service struct {
	Carts    *cart.Service
	Enqueuer orders.Enqueuer
	Currency string
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// QuoteResult is the priced preview returned before the buyer commits.
type QuoteResult struct {
	Items    []cart.PricedItem `json:"items"`
	Subtotal pricing.Money     `json:"subtotal"`
	Shipping pricing.Money     `json:"shipping"`
	Total    pricing.Money     `json:"total"`
}

// Quote prices the cart with the given shipping cost applied.
func (s *Service) Quote(ctx context.Context, cartID string, shipping pricing.Money) (QuoteResult, error) {
	cq, err := s.Carts.QuoteCart(ctx, cartID)
	if err != nil {
		return QuoteResult{}, err
	}
	return QuoteResult{
		Items:    cq.Items,
		Subtotal: cq.Subtotal,
		Shipping: shipping,
		Total:    pricing.GrandTotal(cq.Subtotal, shipping),
	}, nil
}

// SubmitResult identifies the queued order and echoes its totals.
type SubmitResult struct {
	OrderID  string        `json:"orderId"`
	Status   orders.Status `json:"status"`
	Subtotal pricing.Money `json:"subtotal"`
	Shipping pricing.Money `json:"shipping"`
	Total    pricing.Money `json:"total"`
}

// Submit snapshots the cart into an order, enqueues it for delivery and
// clears the cart. The cart is cleared only after the enqueue succeeds.
func (s *Service) Submit(ctx context.Context, cartID string, shipping pricing.Money, contact orders.Contact) (SubmitResult, error) {
	cq, err := s.Carts.QuoteCart(ctx, cartID)
	if err != nil {
		return SubmitResult{}, err
	}
	if len(cq.Items) == 0 {
		return SubmitResult{}, ErrEmptyCart
	}

	lines := make([]orders.Line, 0, len(cq.Items))
	for _, item := range cq.Items {
		lines = append(lines, orders.Line{
			ProductID:         item.ProductID,
			Title:             item.Title,
			Qty:               item.Qty,
			UnitPrice:         item.UnitPrice,
			WarrantyMonths:    item.WarrantyMonths,
			WarrantySurcharge: item.WarrantySurcharge,
			LineTotal:         item.LineTotal,
		})
	}

	order := orders.Order{
		ID:        uuid.NewString(),
		Kind:      orders.KindRetail,
		Contact:   contact,
		Lines:     lines,
		Subtotal:  cq.Subtotal,
		Shipping:  shipping,
		Total:     pricing.GrandTotal(cq.Subtotal, shipping),
		Currency:  s.Currency,
		CreatedAt: s.now(),
	}
	if err := s.Enqueuer.Enqueue(ctx, order); err != nil {
		return SubmitResult{}, fmt.Errorf("queue order: %w", err)
	}
	if err := s.Carts.Clear(ctx, cartID); err != nil {
		// The order is already queued; a stale cart is recoverable.
		return SubmitResult{
			OrderID: order.ID, Status: orders.StatusQueued,
			Subtotal: order.Subtotal, Shipping: order.Shipping, Total: order.Total,
		}, nil
	}
	return SubmitResult{
		OrderID: order.ID, Status: orders.StatusQueued,
		Subtotal: order.Subtotal, Shipping: order.Shipping, Total: order.Total,
	}, nil
}
