package ledger

import (
	"sort"

	"studioluzi/backoffice/internal/domain"
)

// Allocation assigns part of a sold (or reverted) quantity to one
// consignment batch.
type Allocation struct {
	ConsignmentID string
	Amount        int
}

// AllocateSale distributes a consignment sale quantity across the salon's
// active batches of the product, oldest delivery first. Each batch absorbs up
// to its available quantity (quantity - sold - returned). If the batches
// cannot absorb everything the remainder is returned; the caller records it
// but does not fail the sale.
func AllocateSale(consignments []domain.Consignment, salonID, productID string, quantity int) ([]Allocation, int) {
	batches := filterBatches(consignments, salonID, productID, true)
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].Date.Before(batches[j].Date)
	})

	remaining := quantity
	var allocs []Allocation
	for _, batch := range batches {
		if remaining <= 0 {
			break
		}
		available := batch.Available()
		if available <= 0 {
			continue
		}
		take := available
		if remaining < take {
			take = remaining
		}
		allocs = append(allocs, Allocation{ConsignmentID: batch.ID, Amount: take})
		remaining -= take
	}
	return allocs, remaining
}

// AllocateReversal walks back a previously recorded consignment sale
// quantity, newest delivery first, decrementing sold counts. Settled batches
// are included so that reverting a sale can reach batches settled after the
// sale was recorded. Each batch gives back at most its current sold quantity.
func AllocateReversal(consignments []domain.Consignment, salonID, productID string, quantity int) ([]Allocation, int) {
	batches := filterBatches(consignments, salonID, productID, false)
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].Date.After(batches[j].Date)
	})

	remaining := quantity
	var allocs []Allocation
	for _, batch := range batches {
		if remaining <= 0 {
			break
		}
		if batch.SoldQuantity <= 0 {
			continue
		}
		give := batch.SoldQuantity
		if remaining < give {
			give = remaining
		}
		allocs = append(allocs, Allocation{ConsignmentID: batch.ID, Amount: give})
		remaining -= give
	}
	return allocs, remaining
}

func filterBatches(consignments []domain.Consignment, salonID, productID string, activeOnly bool) []domain.Consignment {
	var out []domain.Consignment
	for _, c := range consignments {
		if c.SalonID != salonID || c.ProductID != productID {
			continue
		}
		if activeOnly && c.Status != domain.ConsignmentStatusActive {
			continue
		}
		out = append(out, c)
	}
	return out
}
