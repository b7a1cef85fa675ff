package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"studioluzi/backoffice/internal/domain"
	"studioluzi/backoffice/internal/store"
)

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := domain.Product{ID: "prod-1", Code: "FM-900", Name: "Gloss Labial", CostPrice: 10, SellPrice: 25, StockQuantity: 5}
	if err := s.CreateProduct(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateProduct(ctx, p); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on repeat create, got %v", err)
	}

	got, err := s.GetProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Gloss Labial" || got.StockQuantity != 5 {
		t.Fatalf("unexpected product: %+v", got)
	}

	byCode, err := s.GetProductByCode(ctx, "FM-900")
	if err != nil || byCode.ID != "prod-1" {
		t.Fatalf("get by code: %v %+v", err, byCode)
	}

	got.StockQuantity = -2
	if err := s.UpdateProduct(ctx, got); err != nil {
		t.Fatalf("update with negative stock should be allowed: %v", err)
	}

	if err := s.DeleteProduct(ctx, "prod-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetProduct(ctx, "prod-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListConsignmentsBySalonProductSortsByDate(t *testing.T) {
	ctx := context.Background()
	s := New()

	newer := domain.Consignment{ID: "c-2", SalonID: "sal-1", ProductID: "prod-1", Quantity: 5, Status: domain.ConsignmentStatusActive, Date: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)}
	older := domain.Consignment{ID: "c-1", SalonID: "sal-1", ProductID: "prod-1", Quantity: 5, Status: domain.ConsignmentStatusActive, Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}
	other := domain.Consignment{ID: "c-3", SalonID: "sal-2", ProductID: "prod-1", Quantity: 5, Status: domain.ConsignmentStatusActive, Date: time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)}
	for _, c := range []domain.Consignment{newer, older, other} {
		if err := s.CreateConsignment(ctx, c); err != nil {
			t.Fatalf("create %s: %v", c.ID, err)
		}
	}

	got, err := s.ListConsignmentsBySalonProduct(ctx, "sal-1", "prod-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c-1" || got[1].ID != "c-2" {
		t.Fatalf("expected [c-1 c-2], got %+v", got)
	}
}

func TestSaleCloneIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()

	sale := domain.Sale{
		ID:   "sale-1",
		Date: time.Now().UTC(),
		Type: domain.SaleTypeDirect,
		Items: []domain.SaleItem{
			{ProductID: "prod-1", ProductName: "Gloss", Quantity: 1, UnitPrice: 25, UnitCost: 10},
		},
	}
	if err := s.CreateSale(ctx, sale); err != nil {
		t.Fatalf("create: %v", err)
	}

	sale.Items[0].Quantity = 99
	got, err := s.GetSale(ctx, "sale-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Items[0].Quantity != 1 {
		t.Fatalf("stored sale mutated through caller slice: %+v", got.Items)
	}
}

func TestMarkCommissionPaidFilters(t *testing.T) {
	ctx := context.Background()
	s := New()

	sales := []domain.Sale{
		{ID: "s-match", Type: domain.SaleTypeConsignment, OriginSalonID: "sal-1", Items: []domain.SaleItem{{ProductID: "p", Quantity: 1}}},
		{ID: "s-paid", Type: domain.SaleTypeConsignment, OriginSalonID: "sal-1", CommissionPaid: true, Items: []domain.SaleItem{{ProductID: "p", Quantity: 1}}},
		{ID: "s-other-salon", Type: domain.SaleTypeConsignment, OriginSalonID: "sal-2", Items: []domain.SaleItem{{ProductID: "p", Quantity: 1}}},
		{ID: "s-direct", Type: domain.SaleTypeDirect, Items: []domain.SaleItem{{ProductID: "p", Quantity: 1}}},
	}
	for _, sale := range sales {
		if err := s.CreateSale(ctx, sale); err != nil {
			t.Fatalf("create %s: %v", sale.ID, err)
		}
	}

	changed, err := s.MarkCommissionPaid(ctx, "sal-1", []string{"s-match", "s-paid", "s-other-salon", "s-direct", "s-missing"})
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 changed, got %d", changed)
	}
	got, _ := s.GetSale(ctx, "s-match")
	if !got.CommissionPaid {
		t.Fatal("expected s-match marked paid")
	}
	other, _ := s.GetSale(ctx, "s-other-salon")
	if other.CommissionPaid {
		t.Fatal("did not expect other salon's sale marked paid")
	}
}

func TestUserApprovalFlow(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := domain.UserAccount{Email: "new@studioluzi.local", Password: "hash", CreatedAt: time.Now().UTC()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateUser(ctx, u); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := s.GetUserByEmail(ctx, u.Email)
	if err != nil || got.Approved {
		t.Fatalf("expected pending account, got %+v err %v", got, err)
	}

	if err := s.ApproveUser(ctx, u.Email); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, _ = s.GetUserByEmail(ctx, u.Email)
	if !got.Approved {
		t.Fatal("expected approved account")
	}

	if err := s.ApproveUser(ctx, "missing@studioluzi.local"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewSeededHasDemoData(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()

	products, err := s.ListProducts(ctx)
	if err != nil || len(products) == 0 {
		t.Fatalf("expected seeded products, got %d err %v", len(products), err)
	}
	salons, err := s.ListSalons(ctx)
	if err != nil || len(salons) == 0 {
		t.Fatalf("expected seeded salons, got %d err %v", len(salons), err)
	}
	users, err := s.ListUsers(ctx)
	if err != nil || len(users) != 1 || !users[0].Approved {
		t.Fatalf("expected one approved seed account, got %+v err %v", users, err)
	}
}
