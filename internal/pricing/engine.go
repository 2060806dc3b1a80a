package pricing

// Money represents a monetary amount in whole rupees.
type Money = int64

// Line describes a priced cart line: unit price, quantity, and the flat
// extended-warranty surcharge selected for the line.
type Line struct {
	Qty       int
	UnitPrice Money
	Warranty  Money
}

// PriceBreak is a quantity-tiered wholesale discount rule. The range is
// inclusive; a nil MaxQty means the tier is unbounded above. Discount is a
// flat amount subtracted from the unit price.
type PriceBreak struct {
	MinQty   int
	MaxQty   *int
	Discount Money
}

// WholesaleLine describes one entry of a wholesale bulk order. Deselected
// lines keep their quantity but do not contribute to order totals.
type WholesaleLine struct {
	UnitPrice Money
	Qty       int
	Breaks    []PriceBreak
	Selected  bool
}

// Summary aggregates computed pricing components for a cart or order.
type Summary struct {
	Subtotal Money
	Shipping Money
	Total    Money
}

// LineTotal computes unitPrice*qty plus the warranty surcharge. The surcharge
// is applied once per line, not per unit. The result is clamped at zero.
func LineTotal(unitPrice Money, qty int, warranty Money) Money {
	total := unitPrice*Money(qty) + warranty
	if total < 0 {
		return 0
	}
	return total
}

// CartSubtotal sums line totals. Lines with non-positive quantities are
// skipped. An empty slice yields zero.
func CartSubtotal(lines []Line) Money {
	var subtotal Money
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		subtotal += LineTotal(l.UnitPrice, l.Qty, l.Warranty)
	}
	return subtotal
}

// ApplicableBreak returns the price break that applies to qty. Breaks are
// scanned in slice order and the last matching break wins, so overlapping
// ranges resolve by position, not by tightness.
func ApplicableBreak(qty int, breaks []PriceBreak) (PriceBreak, bool) {
	var (
		applied PriceBreak
		found   bool
	)
	for _, b := range breaks {
		if qty < b.MinQty {
			continue
		}
		if b.MaxQty != nil && qty > *b.MaxQty {
			continue
		}
		applied = b
		found = true
	}
	return applied, found
}

// WholesaleUnitPrice subtracts the applicable break's discount from the base
// unit price. No matching break leaves the base price unchanged. The result
// is not floored at zero: a discount larger than the base price yields a
// negative unit price and the caller decides whether to surface or clamp it.
func WholesaleUnitPrice(base Money, qty int, breaks []PriceBreak) Money {
	b, ok := ApplicableBreak(qty, breaks)
	if !ok {
		return base
	}
	return base - b.Discount
}

// WholesaleLineTotal computes the tiered unit price times quantity for one
// wholesale line.
func WholesaleLineTotal(l WholesaleLine) Money {
	return WholesaleUnitPrice(l.UnitPrice, l.Qty, l.Breaks) * Money(l.Qty)
}

// WholesaleOrderTotal sums line totals over selected lines only. Deselecting
// a line removes it from the total without touching its quantity.
func WholesaleOrderTotal(lines []WholesaleLine) Money {
	var total Money
	for _, l := range lines {
		if !l.Selected || l.Qty <= 0 {
			continue
		}
		total += WholesaleLineTotal(l)
	}
	return total
}

// GrandTotal combines a subtotal with shipping cost. There is no tax term:
// tax is disabled for this storefront and intentionally absent here.
func GrandTotal(subtotal, shipping Money) Money {
	return subtotal + shipping
}

// Compute calculates the full summary for a set of priced lines.
func Compute(lines []Line, shipping Money) Summary {
	subtotal := CartSubtotal(lines)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    GrandTotal(subtotal, shipping),
	}
}
