// Package service sequences business operations over the repository: sale
// lifecycle, consignment shipments, commission payout, catalog CRUD. Writes
// to different entities are independent; there is no cross-entity rollback,
// so helpers here apply effects in a fixed order and log what they skip.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"studioluzi/backoffice/internal/domain"
	"studioluzi/backoffice/internal/ledger"
	"studioluzi/backoffice/internal/notify"
	"studioluzi/backoffice/internal/store"
	"studioluzi/backoffice/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo     store.Repository
	notifier notify.Notifier
}

func New(repo store.Repository, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) notifyChange(ctx context.Context, entity, action, id string) {
	err := s.notifier.EntityChanged(ctx, notify.Event{Entity: entity, Action: action, ID: id})
	if err != nil {
		log.Printf("[service] WARN: change notification failed entity=%s action=%s: %v", entity, action, err)
	}
}

// Products

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}

	product := domain.Product{
		ID:            xid.New("prod"),
		Code:          req.Code,
		Name:          req.Name,
		CostPrice:     req.CostPrice,
		SellPrice:     req.SellPrice,
		StockQuantity: req.StockQuantity,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	s.notifyChange(ctx, "products", "create", product.ID)
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if req.Code != nil {
		existing.Code = strings.TrimSpace(*req.Code)
	}
	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.CostPrice != nil {
		existing.CostPrice = *req.CostPrice
	}
	if req.SellPrice != nil {
		existing.SellPrice = *req.SellPrice
	}
	if req.StockQuantity != nil {
		existing.StockQuantity = *req.StockQuantity
	}
	if existing.Name == "" {
		return domain.Product{}, store.ErrInvalidRecord
	}

	if err := s.repo.UpdateProduct(ctx, existing); err != nil {
		return domain.Product{}, err
	}
	s.notifyChange(ctx, "products", "update", existing.ID)
	return existing, nil
}

// DeleteProduct removes the catalog row unconditionally. Historical sales
// keep their item snapshots, so they stay priceable afterwards.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.notifyChange(ctx, "products", "delete", id)
	return nil
}

// ImportProducts upserts already-parsed spreadsheet rows by product code.
// Known codes refresh name, prices, and stock in place; unknown codes insert.
func (s *Service) ImportProducts(ctx context.Context, req domain.ProductImportRequest) (domain.ProductImportResult, error) {
	if len(req.Rows) == 0 {
		return domain.ProductImportResult{}, store.ErrInvalidRecord
	}

	var result domain.ProductImportResult
	for _, row := range req.Rows {
		code := strings.TrimSpace(row.Code)
		name := strings.TrimSpace(row.Name)
		if code == "" || name == "" {
			log.Printf("[service] WARN: import row skipped, missing code or name (code=%q)", row.Code)
			continue
		}

		existing, err := s.repo.GetProductByCode(ctx, code)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return result, err
		}
		if errors.Is(err, store.ErrNotFound) {
			product := domain.Product{
				ID:            xid.New("prod"),
				Code:          code,
				Name:          name,
				CostPrice:     row.CostPrice,
				SellPrice:     row.SellPrice,
				StockQuantity: row.StockQuantity,
			}
			if err := s.repo.CreateProduct(ctx, product); err != nil {
				return result, err
			}
			result.Inserted++
			continue
		}

		existing.Name = name
		existing.CostPrice = row.CostPrice
		existing.SellPrice = row.SellPrice
		existing.StockQuantity = row.StockQuantity
		if err := s.repo.UpdateProduct(ctx, existing); err != nil {
			return result, err
		}
		result.Updated++
	}
	s.notifyChange(ctx, "products", "import", "")
	return result, nil
}

// Clients

func (s *Service) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *Service) CreateClient(ctx context.Context, req domain.ClientCreateRequest) (domain.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Client{}, store.ErrInvalidRecord
	}

	client := domain.Client{
		ID:        xid.New("cli"),
		Name:      req.Name,
		Phone:     strings.TrimSpace(req.Phone),
		Instagram: strings.TrimSpace(req.Instagram),
	}
	if err := s.repo.CreateClient(ctx, client); err != nil {
		return domain.Client{}, err
	}
	s.notifyChange(ctx, "clients", "create", client.ID)
	return client, nil
}

func (s *Service) UpdateClient(ctx context.Context, client domain.Client) (domain.Client, error) {
	client.Name = strings.TrimSpace(client.Name)
	if client.ID == "" || client.Name == "" {
		return domain.Client{}, store.ErrInvalidRecord
	}
	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return domain.Client{}, err
	}
	s.notifyChange(ctx, "clients", "update", client.ID)
	return client, nil
}

func (s *Service) DeleteClient(ctx context.Context, id string) error {
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.notifyChange(ctx, "clients", "delete", id)
	return nil
}

// Salons

func (s *Service) ListSalons(ctx context.Context) ([]domain.Salon, error) {
	return s.repo.ListSalons(ctx)
}

func (s *Service) CreateSalon(ctx context.Context, req domain.SalonCreateRequest) (domain.Salon, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CommissionRate < 0 || req.CommissionRate > 100 {
		return domain.Salon{}, store.ErrInvalidRecord
	}

	salon := domain.Salon{
		ID:             xid.New("salon"),
		Name:           req.Name,
		ContactPerson:  strings.TrimSpace(req.ContactPerson),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		CommissionRate: req.CommissionRate,
	}
	if err := s.repo.CreateSalon(ctx, salon); err != nil {
		return domain.Salon{}, err
	}
	s.notifyChange(ctx, "salons", "create", salon.ID)
	return salon, nil
}

func (s *Service) UpdateSalon(ctx context.Context, salon domain.Salon) (domain.Salon, error) {
	salon.Name = strings.TrimSpace(salon.Name)
	if salon.ID == "" || salon.Name == "" || salon.CommissionRate < 0 || salon.CommissionRate > 100 {
		return domain.Salon{}, store.ErrInvalidRecord
	}
	if err := s.repo.UpdateSalon(ctx, salon); err != nil {
		return domain.Salon{}, err
	}
	s.notifyChange(ctx, "salons", "update", salon.ID)
	return salon, nil
}

func (s *Service) DeleteSalon(ctx context.Context, id string) error {
	if err := s.repo.DeleteSalon(ctx, id); err != nil {
		return err
	}
	s.notifyChange(ctx, "salons", "delete", id)
	return nil
}

// Consignments

func (s *Service) ListConsignments(ctx context.Context) ([]domain.Consignment, error) {
	return s.repo.ListConsignments(ctx)
}

// CreateConsignment ships stock to a salon: the shipped quantity moves from
// the product's central stock into its consigned count. No check prevents
// stock from going negative; the owner sometimes records the shipment before
// the purchase that covers it.
func (s *Service) CreateConsignment(ctx context.Context, req domain.ConsignmentCreateRequest) (domain.Consignment, error) {
	if req.SalonID == "" || req.ProductID == "" || req.Quantity <= 0 {
		return domain.Consignment{}, store.ErrInvalidRecord
	}
	if _, err := s.repo.GetSalon(ctx, req.SalonID); err != nil {
		return domain.Consignment{}, err
	}
	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.Consignment{}, err
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	consignment := domain.Consignment{
		ID:        xid.New("cons"),
		SalonID:   req.SalonID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Status:    domain.ConsignmentStatusActive,
		Date:      date,
	}
	if err := s.repo.CreateConsignment(ctx, consignment); err != nil {
		return domain.Consignment{}, err
	}

	product.StockQuantity -= req.Quantity
	product.ConsignedQuantity += req.Quantity
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return domain.Consignment{}, err
	}

	s.notifyChange(ctx, "consignments", "create", consignment.ID)
	return consignment, nil
}

// DeleteConsignment removes the batch record only. Product quantities and
// past sales are left untouched.
func (s *Service) DeleteConsignment(ctx context.Context, id string) error {
	if err := s.repo.DeleteConsignment(ctx, id); err != nil {
		return err
	}
	s.notifyChange(ctx, "consignments", "delete", id)
	return nil
}

// Sales

func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx)
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func validPaymentMethod(m string) bool {
	switch m {
	case domain.PaymentCash, domain.PaymentPix, domain.PaymentCredit, domain.PaymentDebit:
		return true
	}
	return false
}

// buildSale validates a request and snapshots item names and prices. Items
// whose product still exists take the product's current values; items whose
// product is gone keep whatever the request carried.
func (s *Service) buildSale(ctx context.Context, id string, req domain.SaleCreateRequest) (domain.Sale, error) {
	if len(req.Items) == 0 {
		return domain.Sale{}, store.ErrInvalidRecord
	}
	if req.Type != domain.SaleTypeDirect && req.Type != domain.SaleTypeConsignment {
		return domain.Sale{}, store.ErrInvalidRecord
	}
	if req.Type == domain.SaleTypeConsignment && req.OriginSalonID == "" {
		return domain.Sale{}, store.ErrInvalidRecord
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return domain.Sale{}, store.ErrInvalidRecord
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return domain.Sale{}, store.ErrInvalidRecord
		}
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	sale := domain.Sale{
		ID:            id,
		Date:          date,
		ClientID:      req.ClientID,
		PaymentMethod: req.PaymentMethod,
		Type:          req.Type,
		OriginSalonID: req.OriginSalonID,
		Items:         make([]domain.SaleItem, 0, len(req.Items)),
	}
	for _, input := range req.Items {
		item := domain.SaleItem{
			ProductID:   input.ProductID,
			ProductName: input.ProductName,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			UnitCost:    input.UnitCost,
		}
		product, err := s.repo.GetProduct(ctx, input.ProductID)
		switch {
		case err == nil:
			item.ProductName = product.Name
			item.UnitPrice = product.SellPrice
			item.UnitCost = product.CostPrice
		case errors.Is(err, store.ErrNotFound):
			log.Printf("[service] WARN: sale references missing product id=%s, keeping request snapshot", input.ProductID)
		default:
			return domain.Sale{}, err
		}
		sale.Items = append(sale.Items, item)
	}

	sale.TotalValue, sale.TotalCost = ledger.SaleTotals(sale.Items)
	return sale, nil
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	sale, err := s.buildSale(ctx, xid.New("sale"), req)
	if err != nil {
		return domain.Sale{}, err
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return domain.Sale{}, err
	}
	if err := s.applyInventoryEffect(ctx, sale); err != nil {
		return domain.Sale{}, err
	}
	s.notifyChange(ctx, "sales", "create", sale.ID)
	return sale, nil
}

// EditSale replaces a sale wholesale: the old sale's inventory effect is
// reverted, then the new one applied. Changing type or salon between the two
// halves therefore migrates quantities correctly.
func (s *Service) EditSale(ctx context.Context, id string, req domain.SaleCreateRequest) (domain.Sale, error) {
	existing, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}

	sale, err := s.buildSale(ctx, id, req)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.CommissionPaid = existing.CommissionPaid

	if err := s.revertInventoryEffect(ctx, existing); err != nil {
		return domain.Sale{}, err
	}
	if err := s.repo.UpdateSale(ctx, sale); err != nil {
		return domain.Sale{}, err
	}
	if err := s.applyInventoryEffect(ctx, sale); err != nil {
		return domain.Sale{}, err
	}
	s.notifyChange(ctx, "sales", "update", sale.ID)
	return sale, nil
}

// DeleteSale reverts the sale's inventory effect first, then removes the
// record, so a failure between the two leaves quantities restored and the
// record present.
func (s *Service) DeleteSale(ctx context.Context, id string) error {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return err
	}

	if err := s.revertInventoryEffect(ctx, sale); err != nil {
		return err
	}
	if err := s.repo.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.notifyChange(ctx, "sales", "delete", id)
	return nil
}

func (s *Service) PayCommission(ctx context.Context, req domain.PayCommissionRequest) (domain.PayCommissionResponse, error) {
	if req.SalonID == "" || len(req.SaleIDs) == 0 {
		return domain.PayCommissionResponse{}, store.ErrInvalidRecord
	}

	paid, err := s.repo.MarkCommissionPaid(ctx, req.SalonID, req.SaleIDs)
	if err != nil {
		return domain.PayCommissionResponse{}, err
	}
	s.notifyChange(ctx, "sales", "pay_commission", req.SalonID)
	return domain.PayCommissionResponse{SalonID: req.SalonID, Paid: paid}, nil
}

// applyInventoryEffect walks the sale's per-product deltas and writes them.
// Missing products are skipped with a warning. Consignment sales additionally
// spread sold counts across the salon's batches, oldest first; if the batches
// cannot absorb the whole quantity the remainder is logged and dropped while
// the product's consigned count still moves by the full amount.
func (s *Service) applyInventoryEffect(ctx context.Context, sale domain.Sale) error {
	for _, delta := range ledger.SaleDeltas(sale) {
		if err := s.applyProductDelta(ctx, delta); err != nil {
			return err
		}
		if sale.Type != domain.SaleTypeConsignment {
			continue
		}
		quantity := -delta.Consigned
		if err := s.allocateSold(ctx, sale.OriginSalonID, delta.ProductID, quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) revertInventoryEffect(ctx context.Context, sale domain.Sale) error {
	for _, delta := range ledger.ReversalDeltas(sale) {
		if err := s.applyProductDelta(ctx, delta); err != nil {
			return err
		}
		if sale.Type != domain.SaleTypeConsignment {
			continue
		}
		quantity := delta.Consigned
		if err := s.revertSold(ctx, sale.OriginSalonID, delta.ProductID, quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyProductDelta(ctx context.Context, delta ledger.ProductDelta) error {
	product, err := s.repo.GetProduct(ctx, delta.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[service] WARN: inventory delta skipped, product missing id=%s", delta.ProductID)
		return nil
	}
	if err != nil {
		return err
	}

	product.StockQuantity += delta.Stock
	product.ConsignedQuantity += delta.Consigned
	return s.repo.UpdateProduct(ctx, product)
}

func (s *Service) allocateSold(ctx context.Context, salonID, productID string, quantity int) error {
	batches, err := s.repo.ListConsignmentsBySalonProduct(ctx, salonID, productID)
	if err != nil {
		return err
	}

	allocs, remainder := ledger.AllocateSale(batches, salonID, productID, quantity)
	if remainder > 0 {
		log.Printf("[service] WARN: consignment under-allocation salon=%s product=%s unallocated=%d", salonID, productID, remainder)
	}
	return s.applyAllocations(ctx, batches, allocs, +1)
}

func (s *Service) revertSold(ctx context.Context, salonID, productID string, quantity int) error {
	batches, err := s.repo.ListConsignmentsBySalonProduct(ctx, salonID, productID)
	if err != nil {
		return err
	}

	allocs, remainder := ledger.AllocateReversal(batches, salonID, productID, quantity)
	if remainder > 0 {
		log.Printf("[service] WARN: consignment reversal under-allocation salon=%s product=%s unallocated=%d", salonID, productID, remainder)
	}
	return s.applyAllocations(ctx, batches, allocs, -1)
}

func (s *Service) applyAllocations(ctx context.Context, batches []domain.Consignment, allocs []ledger.Allocation, sign int) error {
	byID := make(map[string]domain.Consignment, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}
	for _, alloc := range allocs {
		batch, ok := byID[alloc.ConsignmentID]
		if !ok {
			continue
		}
		batch.SoldQuantity += sign * alloc.Amount
		if err := s.repo.UpdateConsignment(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}
