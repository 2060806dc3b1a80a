package orders

import (
	"time"

	"github.com/televista/storefront-api/internal/pricing"
)

// Kind distinguishes the two order surfaces.
type Kind string

const (
	KindRetail    Kind = "retail"
	KindWholesale Kind = "wholesale"
)

// Status is the lifecycle of an order submission.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

// Contact is the buyer's delivery details captured at checkout.
type Contact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

// Line is a priced order line frozen at submission time. Quantities and
// prices are snapshotted so a later catalog change cannot alter the order.
type Line struct {
	ProductID         string        `json:"productId"`
	Title             string        `json:"title,omitempty"`
	Qty               int           `json:"qty"`
	UnitPrice         pricing.Money `json:"unitPrice"`
	WarrantyMonths    int           `json:"warrantyMonths,omitempty"`
	WarrantySurcharge pricing.Money `json:"warrantySurcharge,omitempty"`
	LineTotal         pricing.Money `json:"lineTotal"`
}

// Order is the immutable snapshot handed to the delivery pipeline.
type Order struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Contact   Contact       `json:"contact"`
	Lines     []Line        `json:"lines"`
	Subtotal  pricing.Money `json:"subtotal"`
	Shipping  pricing.Money `json:"shipping"`
	Total     pricing.Money `json:"total"`
	Currency  string        `json:"currency"`
	CreatedAt time.Time     `json:"createdAt"`
}
