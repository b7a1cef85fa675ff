package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"studioluzi/backoffice/internal/domain"
	"studioluzi/backoffice/internal/store"
)

func TestSaleRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("LUZI_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set LUZI_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	productID := fmt.Sprintf("prod-it-%d", stamp)
	saleID := fmt.Sprintf("sale-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	})

	product := domain.Product{
		ID:            productID,
		Code:          fmt.Sprintf("IT-%d", stamp),
		Name:          "Produto Integração",
		CostPrice:     10,
		SellPrice:     25,
		StockQuantity: 8,
	}
	if err := s.CreateProduct(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	sale := domain.Sale{
		ID:            saleID,
		Date:          time.Now().UTC().Truncate(time.Second),
		TotalValue:    50,
		TotalCost:     20,
		PaymentMethod: domain.PaymentPix,
		Type:          domain.SaleTypeDirect,
		Items: []domain.SaleItem{
			{ProductID: productID, ProductName: product.Name, Quantity: 2, UnitPrice: 25, UnitCost: 10},
		},
	}
	if err := s.CreateSale(ctx, sale); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	got, err := s.GetSale(ctx, saleID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 || got.Items[0].ProductName != product.Name {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if got.TotalValue != 50 || got.PaymentMethod != domain.PaymentPix {
		t.Fatalf("unexpected sale: %+v", got)
	}

	got.Items = append(got.Items, domain.SaleItem{ProductID: productID, ProductName: product.Name, Quantity: 1, UnitPrice: 25, UnitCost: 10})
	got.TotalValue = 75
	got.TotalCost = 30
	if err := s.UpdateSale(ctx, got); err != nil {
		t.Fatalf("update sale: %v", err)
	}
	got, err = s.GetSale(ctx, saleID)
	if err != nil {
		t.Fatalf("get updated sale: %v", err)
	}
	if len(got.Items) != 2 || got.TotalValue != 75 {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := s.DeleteSale(ctx, saleID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	if _, err := s.GetSale(ctx, saleID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	var orphans int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM sale_items WHERE sale_id = $1`, saleID).Scan(&orphans); err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("expected no orphaned items, got %d", orphans)
	}
}
