package reporting

import (
	"testing"
	"time"

	"studioluzi/backoffice/internal/domain"
)

var testSalons = []domain.Salon{
	{ID: "sal-1", Name: "Espaço Bella", CommissionRate: 20},
	{ID: "sal-2", Name: "Studio Glam", CommissionRate: 10},
}

func consignmentSale(id, salonID string, value, cost float64, paid bool, date time.Time) domain.Sale {
	return domain.Sale{
		ID:             id,
		Date:           date,
		Type:           domain.SaleTypeConsignment,
		OriginSalonID:  salonID,
		TotalValue:     value,
		TotalCost:      cost,
		PaymentMethod:  domain.PaymentPix,
		CommissionPaid: paid,
		Items:          []domain.SaleItem{{ProductID: "p-1", ProductName: "Base", Quantity: 1, UnitPrice: value, UnitCost: cost}},
	}
}

func TestCommission(t *testing.T) {
	rates := CommissionRates(testSalons)

	sale := consignmentSale("s-1", "sal-1", 1000, 0, false, time.Now())
	if got := Commission(sale, rates); got != 200 {
		t.Fatalf("expected commission 200, got %v", got)
	}

	direct := domain.Sale{Type: domain.SaleTypeDirect, TotalValue: 1000}
	if got := Commission(direct, rates); got != 0 {
		t.Fatalf("expected no commission on direct sale, got %v", got)
	}
}

func TestBuildSummaryProfitNetOfCostAndCommission(t *testing.T) {
	date := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		consignmentSale("s-1", "sal-1", 100, 60, false, date),
	}
	products := []domain.Product{
		{ID: "p-1", CostPrice: 10, StockQuantity: 5, ConsignedQuantity: 3},
	}

	sum := BuildSummary(sales, products, testSalons)
	if sum.Revenue != 100 || sum.Cost != 60 || sum.Commission != 20 {
		t.Fatalf("unexpected totals: %+v", sum)
	}
	if sum.Profit != 20 {
		t.Fatalf("expected profit 20 (100 - 60 - 20), got %v", sum.Profit)
	}
	if sum.MarginPercent != 20 {
		t.Fatalf("expected margin 20%%, got %v", sum.MarginPercent)
	}
	if sum.InventoryValue != 50 || sum.ConsignedValue != 30 {
		t.Fatalf("unexpected stock valuation: %+v", sum)
	}
	if sum.ItemsSold != 1 || sum.SalesCount != 1 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	sum := BuildSummary(nil, nil, nil)
	if sum.Revenue != 0 || sum.MarginPercent != 0 || sum.AverageTicket != 0 {
		t.Fatalf("expected zero summary, got %+v", sum)
	}
}

func TestTopProductsRanksByQuantity(t *testing.T) {
	sales := []domain.Sale{
		{Type: domain.SaleTypeDirect, Items: []domain.SaleItem{
			{ProductID: "p-1", ProductName: "Base", Quantity: 2, UnitPrice: 80},
			{ProductID: "p-2", ProductName: "Batom", Quantity: 5, UnitPrice: 30},
		}},
		{Type: domain.SaleTypeDirect, Items: []domain.SaleItem{
			{ProductID: "p-1", ProductName: "Base", Quantity: 1, UnitPrice: 80},
		}},
	}

	got := TopProducts(sales, 10)
	if len(got) != 2 {
		t.Fatalf("expected two rankings, got %+v", got)
	}
	if got[0].ProductID != "p-2" || got[0].Quantity != 5 || got[0].Revenue != 150 {
		t.Fatalf("unexpected leader: %+v", got[0])
	}
	if got[1].ProductID != "p-1" || got[1].Quantity != 3 || got[1].Revenue != 240 {
		t.Fatalf("unexpected runner-up: %+v", got[1])
	}

	limited := TopProducts(sales, 1)
	if len(limited) != 1 || limited[0].ProductID != "p-2" {
		t.Fatalf("expected limit applied, got %+v", limited)
	}
}

func TestBuildSalonPerformanceSkipsDirectSales(t *testing.T) {
	date := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		consignmentSale("s-1", "sal-1", 200, 100, false, date),
		consignmentSale("s-2", "sal-1", 100, 50, true, date),
		{Type: domain.SaleTypeDirect, TotalValue: 999, Items: []domain.SaleItem{{Quantity: 1}}},
	}

	got := BuildSalonPerformance(sales, testSalons)
	if len(got) != 1 {
		t.Fatalf("expected one salon row, got %+v", got)
	}
	row := got[0]
	if row.SalonName != "Espaço Bella" || row.SalesCount != 2 || row.ItemsSold != 2 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.Revenue != 300 || row.Commission != 60 {
		t.Fatalf("unexpected money: %+v", row)
	}
}

func TestBuildPendingCommissions(t *testing.T) {
	date := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		consignmentSale("s-unpaid-1", "sal-1", 100, 0, false, date),
		consignmentSale("s-unpaid-2", "sal-1", 50, 0, false, date),
		consignmentSale("s-paid", "sal-1", 999, 0, true, date),
		consignmentSale("s-glam", "sal-2", 200, 0, false, date),
	}

	got := BuildPendingCommissions(sales, testSalons)
	if len(got) != 2 {
		t.Fatalf("expected two salons owed, got %+v", got)
	}
	if got[0].SalonID != "sal-1" || got[0].Amount != 30 || got[0].Revenue != 150 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if len(got[0].SaleIDs) != 2 {
		t.Fatalf("expected two pending sale ids, got %+v", got[0].SaleIDs)
	}
	if got[1].SalonID != "sal-2" || got[1].Amount != 20 {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
}

func TestBuildPaymentBreakdown(t *testing.T) {
	sales := []domain.Sale{
		{PaymentMethod: domain.PaymentPix, TotalValue: 100},
		{PaymentMethod: domain.PaymentPix, TotalValue: 50},
		{PaymentMethod: domain.PaymentCash, TotalValue: 30},
	}

	got := BuildPaymentBreakdown(sales)
	if len(got) != 2 {
		t.Fatalf("expected two methods, got %+v", got)
	}
	if got[0].Method != domain.PaymentPix || got[0].SalesCount != 2 || got[0].Revenue != 150 {
		t.Fatalf("unexpected pix slice: %+v", got[0])
	}
	if got[1].Method != domain.PaymentCash || got[1].Revenue != 30 {
		t.Fatalf("unexpected cash slice: %+v", got[1])
	}
}

func TestBuildRevenueSeriesBucketsByDay(t *testing.T) {
	sales := []domain.Sale{
		consignmentSale("s-1", "sal-1", 100, 60, false, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
		consignmentSale("s-2", "sal-1", 50, 20, false, time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)),
		consignmentSale("s-3", "sal-1", 40, 10, false, time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)),
	}

	got := BuildRevenueSeries(sales, testSalons)
	if len(got) != 2 {
		t.Fatalf("expected two days, got %+v", got)
	}
	if got[0].Day != "2026-05-01" || got[0].Revenue != 150 {
		t.Fatalf("unexpected first day: %+v", got[0])
	}
	// profit = 150 - 80 - 30 commission
	if got[0].Profit != 40 {
		t.Fatalf("expected first-day profit 40, got %v", got[0].Profit)
	}
	if got[1].Day != "2026-05-02" || got[1].Revenue != 40 {
		t.Fatalf("unexpected second day: %+v", got[1])
	}
}

func TestFilterPeriod(t *testing.T) {
	mk := func(day int) domain.Sale {
		return domain.Sale{ID: string(rune('a' + day)), Date: time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC)}
	}
	sales := []domain.Sale{mk(1), mk(5), mk(9)}

	got := FilterPeriod(sales, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC))
	if len(got) != 1 || !got[0].Date.Equal(sales[1].Date) {
		t.Fatalf("expected only the middle sale, got %+v", got)
	}

	open := FilterPeriod(sales, time.Time{}, time.Time{})
	if len(open) != 3 {
		t.Fatalf("expected open bounds to keep all, got %+v", open)
	}
}
