// Package reporting computes dashboard aggregates from full entity snapshots.
// Every report is recomputed from scratch on each call; amounts accumulate as
// plain floats and are rounded to cents only here, at the presentation edge.
package reporting

import (
	"math"
	"sort"
	"time"

	"studioluzi/backoffice/internal/domain"
)

type Summary struct {
	Revenue        float64 `json:"revenue"`
	Cost           float64 `json:"cost"`
	Commission     float64 `json:"commission"`
	Profit         float64 `json:"profit"`
	MarginPercent  float64 `json:"margin_percent"`
	AverageTicket  float64 `json:"average_ticket"`
	SalesCount     int     `json:"sales_count"`
	ItemsSold      int     `json:"items_sold"`
	InventoryValue float64 `json:"inventory_value"`
	ConsignedValue float64 `json:"consigned_value"`
}

type ProductRanking struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

type SalonPerformance struct {
	SalonID    string  `json:"salon_id"`
	SalonName  string  `json:"salon_name"`
	SalesCount int     `json:"sales_count"`
	ItemsSold  int     `json:"items_sold"`
	Revenue    float64 `json:"revenue"`
	Commission float64 `json:"commission"`
}

type PendingCommission struct {
	SalonID   string   `json:"salon_id"`
	SalonName string   `json:"salon_name"`
	Rate      float64  `json:"rate"`
	Revenue   float64  `json:"revenue"`
	Amount    float64  `json:"amount"`
	SaleIDs   []string `json:"sale_ids"`
}

type PaymentSlice struct {
	Method     string  `json:"method"`
	SalesCount int     `json:"sales_count"`
	Revenue    float64 `json:"revenue"`
}

type RevenuePoint struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// Round2 rounds to cents. Applied only to report output, never to stored
// amounts.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Commission is the salon's cut of a consignment sale. Direct sales carry no
// commission.
func Commission(sale domain.Sale, rates map[string]float64) float64 {
	if sale.Type != domain.SaleTypeConsignment {
		return 0
	}
	return sale.TotalValue * rates[sale.OriginSalonID] / 100
}

// CommissionRates indexes salons by id for commission lookups.
func CommissionRates(salons []domain.Salon) map[string]float64 {
	rates := make(map[string]float64, len(salons))
	for _, s := range salons {
		rates[s.ID] = s.CommissionRate
	}
	return rates
}

// FilterPeriod keeps sales with from <= date < to. Zero bounds are open.
func FilterPeriod(sales []domain.Sale, from, to time.Time) []domain.Sale {
	out := make([]domain.Sale, 0, len(sales))
	for _, s := range sales {
		if !from.IsZero() && s.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !s.Date.Before(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func BuildSummary(sales []domain.Sale, products []domain.Product, salons []domain.Salon) Summary {
	rates := CommissionRates(salons)

	var sum Summary
	for _, sale := range sales {
		sum.Revenue += sale.TotalValue
		sum.Cost += sale.TotalCost
		sum.Commission += Commission(sale, rates)
		sum.SalesCount++
		for _, item := range sale.Items {
			sum.ItemsSold += item.Quantity
		}
	}
	sum.Profit = sum.Revenue - sum.Cost - sum.Commission
	if sum.Revenue != 0 {
		sum.MarginPercent = sum.Profit / sum.Revenue * 100
	}
	if sum.SalesCount > 0 {
		sum.AverageTicket = sum.Revenue / float64(sum.SalesCount)
	}

	for _, p := range products {
		sum.InventoryValue += float64(p.StockQuantity) * p.CostPrice
		sum.ConsignedValue += float64(p.ConsignedQuantity) * p.CostPrice
	}

	sum.Revenue = Round2(sum.Revenue)
	sum.Cost = Round2(sum.Cost)
	sum.Commission = Round2(sum.Commission)
	sum.Profit = Round2(sum.Profit)
	sum.MarginPercent = Round2(sum.MarginPercent)
	sum.AverageTicket = Round2(sum.AverageTicket)
	sum.InventoryValue = Round2(sum.InventoryValue)
	sum.ConsignedValue = Round2(sum.ConsignedValue)
	return sum
}

// TopProducts ranks products by quantity sold in the given sales, revenue as
// tie-break. Items keep their snapshot names, so deleted products still rank.
func TopProducts(sales []domain.Sale, limit int) []ProductRanking {
	byProduct := make(map[string]*ProductRanking)
	for _, sale := range sales {
		for _, item := range sale.Items {
			r, ok := byProduct[item.ProductID]
			if !ok {
				r = &ProductRanking{ProductID: item.ProductID, ProductName: item.ProductName}
				byProduct[item.ProductID] = r
			}
			r.Quantity += item.Quantity
			r.Revenue += float64(item.Quantity) * item.UnitPrice
		}
	}

	rankings := make([]ProductRanking, 0, len(byProduct))
	for _, r := range byProduct {
		r.Revenue = Round2(r.Revenue)
		rankings = append(rankings, *r)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Quantity != rankings[j].Quantity {
			return rankings[i].Quantity > rankings[j].Quantity
		}
		if rankings[i].Revenue != rankings[j].Revenue {
			return rankings[i].Revenue > rankings[j].Revenue
		}
		return rankings[i].ProductName < rankings[j].ProductName
	})
	if limit > 0 && len(rankings) > limit {
		rankings = rankings[:limit]
	}
	return rankings
}

func BuildSalonPerformance(sales []domain.Sale, salons []domain.Salon) []SalonPerformance {
	rates := CommissionRates(salons)
	names := make(map[string]string, len(salons))
	for _, s := range salons {
		names[s.ID] = s.Name
	}

	byID := make(map[string]*SalonPerformance)
	for _, sale := range sales {
		if sale.Type != domain.SaleTypeConsignment || sale.OriginSalonID == "" {
			continue
		}
		p, ok := byID[sale.OriginSalonID]
		if !ok {
			p = &SalonPerformance{SalonID: sale.OriginSalonID, SalonName: names[sale.OriginSalonID]}
			byID[sale.OriginSalonID] = p
		}
		p.SalesCount++
		p.Revenue += sale.TotalValue
		p.Commission += Commission(sale, rates)
		for _, item := range sale.Items {
			p.ItemsSold += item.Quantity
		}
	}

	out := make([]SalonPerformance, 0, len(byID))
	for _, p := range byID {
		p.Revenue = Round2(p.Revenue)
		p.Commission = Round2(p.Commission)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].SalonName < out[j].SalonName
	})
	return out
}

// BuildPendingCommissions lists, per salon, the consignment sales whose
// commission has not been paid out yet and the amount owed.
func BuildPendingCommissions(sales []domain.Sale, salons []domain.Salon) []PendingCommission {
	byID := make(map[string]*PendingCommission)
	for _, s := range salons {
		byID[s.ID] = &PendingCommission{SalonID: s.ID, SalonName: s.Name, Rate: s.CommissionRate}
	}

	for _, sale := range sales {
		if sale.Type != domain.SaleTypeConsignment || sale.CommissionPaid {
			continue
		}
		p, ok := byID[sale.OriginSalonID]
		if !ok {
			continue
		}
		p.Revenue += sale.TotalValue
		p.SaleIDs = append(p.SaleIDs, sale.ID)
	}

	out := make([]PendingCommission, 0, len(byID))
	for _, p := range byID {
		if len(p.SaleIDs) == 0 {
			continue
		}
		sort.Strings(p.SaleIDs)
		p.Amount = Round2(p.Revenue * p.Rate / 100)
		p.Revenue = Round2(p.Revenue)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].SalonName < out[j].SalonName
	})
	return out
}

func BuildPaymentBreakdown(sales []domain.Sale) []PaymentSlice {
	byMethod := make(map[string]*PaymentSlice)
	for _, sale := range sales {
		p, ok := byMethod[sale.PaymentMethod]
		if !ok {
			p = &PaymentSlice{Method: sale.PaymentMethod}
			byMethod[sale.PaymentMethod] = p
		}
		p.SalesCount++
		p.Revenue += sale.TotalValue
	}

	out := make([]PaymentSlice, 0, len(byMethod))
	for _, p := range byMethod {
		p.Revenue = Round2(p.Revenue)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// BuildRevenueSeries buckets sales into calendar days (UTC), ascending.
// Profit here is revenue minus cost minus commission per day.
func BuildRevenueSeries(sales []domain.Sale, salons []domain.Salon) []RevenuePoint {
	rates := CommissionRates(salons)

	byDay := make(map[string]*RevenuePoint)
	for _, sale := range sales {
		day := sale.Date.UTC().Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &RevenuePoint{Day: day}
			byDay[day] = p
		}
		p.Revenue += sale.TotalValue
		p.Profit += sale.TotalValue - sale.TotalCost - Commission(sale, rates)
	}

	out := make([]RevenuePoint, 0, len(byDay))
	for _, p := range byDay {
		p.Revenue = Round2(p.Revenue)
		p.Profit = Round2(p.Profit)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Day < out[j].Day
	})
	return out
}
