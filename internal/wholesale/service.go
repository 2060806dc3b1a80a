package wholesale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/televista/storefront-api/internal/catalog"
	"github.com/televista/storefront-api/internal/common"
	"github.com/televista/storefront-api/internal/orders"
	"github.com/televista/storefront-api/internal/pricing"
)

// ErrNoSelection is returned when an order is submitted with no line selected.
var ErrNoSelection = errors.New("no lines selected")

// LineRequest is one requested wholesale line. A non-positive quantity is
// normalized to 1 before pricing.
type LineRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
	Selected  bool   `json:"selected"`
}

// QuotedLine is a priced wholesale line. The unit price reflects the last
// matching price break and may go negative when a discount exceeds the base
// price; it is surfaced as-is so the buyer sees the configured schedule.
type QuotedLine struct {
	ProductID    string              `json:"productId"`
	Title        string              `json:"title"`
	Qty          int                 `json:"qty"`
	Selected     bool                `json:"selected"`
	BasePrice    pricing.Money       `json:"basePrice"`
	UnitPrice    pricing.Money       `json:"unitPrice"`
	LineTotal    pricing.Money       `json:"lineTotal"`
	AppliedBreak *pricing.PriceBreak `json:"appliedBreak,omitempty"`
}

// QuoteResult is the priced wholesale order preview. OrderTotal covers the
// selected lines only.
type QuoteResult struct {
	Lines      []QuotedLine  `json:"lines"`
	OrderTotal pricing.Money `json:"orderTotal"`
}

// Service prices wholesale orders against the tiered price breaks the
// catalog publishes per product.
type Service struct {
	Catalog  *catalog.Service
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

// Products lists the wholesale catalog.
func (s *Service) Products(ctx context.Context) ([]catalog.WholesaleProduct, error) {
	return s.Catalog.Wholesale(ctx)
}

// Quote prices the requested lines.
func (s *Service) Quote(ctx context.Context, reqs []LineRequest) (QuoteResult, error) {
	products, err := s.Catalog.Wholesale(ctx)
	if err != nil {
		return QuoteResult{}, err
	}
	byID := make(map[string]catalog.WholesaleProduct, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	quoted := make([]QuotedLine, 0, len(reqs))
	selected := make([]pricing.WholesaleLine, 0, len(reqs))
	for _, req := range reqs {
		product, ok := byID[req.ProductID]
		if !ok {
			return QuoteResult{}, fmt.Errorf("wholesale product %s: %w", req.ProductID, catalog.ErrNotFound)
		}
		qty := common.NormalizeQty(req.Qty)
		unit := pricing.WholesaleUnitPrice(product.NewPrice, qty, product.PriceBreaks)
		line := QuotedLine{
			ProductID: product.ID,
			Title:     product.Title,
			Qty:       qty,
			Selected:  req.Selected,
			BasePrice: product.NewPrice,
			UnitPrice: unit,
			LineTotal: unit * pricing.Money(qty),
		}
		if br, ok := pricing.ApplicableBreak(qty, product.PriceBreaks); ok {
			b := br
			line.AppliedBreak = &b
		}
		quoted = append(quoted, line)
		selected = append(selected, pricing.WholesaleLine{
			UnitPrice: product.NewPrice,
			Qty:       qty,
			Breaks:    product.PriceBreaks,
			Selected:  req.Selected,
		})
	}
	return QuoteResult{Lines: quoted, OrderTotal: pricing.WholesaleOrderTotal(selected)}, nil
}

// SubmitResult identifies the queued wholesale order.
type SubmitResult struct {
	OrderID string        `json:"orderId"`
	Status  orders.Status `json:"status"`
	Total   pricing.Money `json:"total"`
}

// Submit quotes the selected lines and enqueues a wholesale order snapshot.
func (s *Service) Submit(ctx context.Context, reqs []LineRequest, contact orders.Contact) (SubmitResult, error) {
	quote, err := s.Quote(ctx, reqs)
	if err != nil {
		return SubmitResult{}, err
	}
	lines := make([]orders.Line, 0, len(quote.Lines))
	for _, ql := range quote.Lines {
		if !ql.Selected {
			continue
		}
		lines = append(lines, orders.Line{
			ProductID: ql.ProductID,
			Title:     ql.Title,
			Qty:       ql.Qty,
			UnitPrice: ql.UnitPrice,
			LineTotal: ql.LineTotal,
		})
	}
	if len(lines) == 0 {
		return SubmitResult{}, ErrNoSelection
	}

	order := orders.Order{
		ID:        uuid.NewString(),
		Kind:      orders.KindWholesale,
		Contact:   contact,
		Lines:     lines,
		Subtotal:  quote.OrderTotal,
		Shipping:  0,
		Total:     quote.OrderTotal,
		Currency:  s.Currency,
		CreatedAt: s.now(),
	}
	if err := s.Enqueuer.Enqueue(ctx, order); err != nil {
		return SubmitResult{}, fmt.Errorf("queue wholesale order: %w", err)
	}
	return SubmitResult{OrderID: order.ID, Status: orders.StatusQueued, Total: order.Total}, nil
}
