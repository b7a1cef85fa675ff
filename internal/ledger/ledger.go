// Package ledger holds the pure stock/consignment reconciliation arithmetic:
// per-product quantity deltas for a sale and the batch allocation policy for
// consigned stock. Nothing here performs I/O; the service layer reads current
// records, asks this package what should change, and writes the results back.
package ledger

import "studioluzi/backoffice/internal/domain"

// ProductDelta is the signed quantity change to apply to one product.
// A direct sale touches Stock, a consignment sale touches Consigned.
type ProductDelta struct {
	ProductID string
	Stock     int
	Consigned int
}

// SaleDeltas computes the per-product deltas of applying a sale's inventory
// effect: stock (or consigned) quantities decrease by the item quantities.
// Items referencing the same product are aggregated into one delta.
func SaleDeltas(sale domain.Sale) []ProductDelta {
	return deltas(sale, -1)
}

// ReversalDeltas computes the sign-inverted deltas used when a sale is
// deleted or when the "before" half of an edit is undone.
func ReversalDeltas(sale domain.Sale) []ProductDelta {
	return deltas(sale, +1)
}

func deltas(sale domain.Sale, sign int) []ProductDelta {
	byProduct := make(map[string]int, len(sale.Items))
	order := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		if _, seen := byProduct[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		byProduct[item.ProductID] += item.Quantity
	}

	result := make([]ProductDelta, 0, len(order))
	for _, productID := range order {
		delta := ProductDelta{ProductID: productID}
		qty := sign * byProduct[productID]
		if sale.Type == domain.SaleTypeConsignment {
			delta.Consigned = qty
		} else {
			delta.Stock = qty
		}
		result = append(result, delta)
	}
	return result
}

// SaleTotals sums item value and cost the way totals are denormalized onto a
// sale at creation time. Plain float accumulation; rounding happens only at
// display time.
func SaleTotals(items []domain.SaleItem) (totalValue float64, totalCost float64) {
	for _, item := range items {
		totalValue += float64(item.Quantity) * item.UnitPrice
		totalCost += float64(item.Quantity) * item.UnitCost
	}
	return totalValue, totalCost
}
