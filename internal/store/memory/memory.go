package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"studioluzi/backoffice/internal/domain"
	"studioluzi/backoffice/internal/store"
	"studioluzi/backoffice/internal/xid"
)

type Store struct {
	mu           sync.RWMutex
	products     map[string]domain.Product
	clients      map[string]domain.Client
	salons       map[string]domain.Salon
	consignments map[string]domain.Consignment
	sales        map[string]domain.Sale
	usersByEmail map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		products:     make(map[string]domain.Product),
		clients:      make(map[string]domain.Client),
		salons:       make(map[string]domain.Salon),
		consignments: make(map[string]domain.Consignment),
		sales:        make(map[string]domain.Sale),
		usersByEmail: make(map[string]domain.UserAccount),
	}
}

// seedOwner builds the initial owner account for dev/demo mode. Credentials
// come from SEED_OWNER_EMAIL and SEED_OWNER_PASSWORD; without them a
// hardcoded dev default is used with a warning printed to stdout. These
// credentials are never used in production (the backend uses PostgreSQL when
// DATABASE_URL is set).
func seedOwner() map[string]domain.UserAccount {
	email := envOr("SEED_OWNER_EMAIL", "owner@studioluzi.local")
	password := envOr("SEED_OWNER_PASSWORD", "luzi123")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_PASSWORD to override.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[memory-store] failed to hash seed password: %v", err)
	}
	return map[string]domain.UserAccount{
		email: {
			Email:     email,
			Password:  string(hash),
			Approved:  true,
			CreatedAt: time.Now().UTC(),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewSeeded returns a store pre-loaded with demo catalog data and an
// approved owner account.
func NewSeeded() *Store {
	products := []domain.Product{
		{ID: xid.New("prod"), Code: "FM-501", Name: "Base Líquida Matte 30ml", CostPrice: 38.50, SellPrice: 89.90, StockQuantity: 24},
		{ID: xid.New("prod"), Code: "FM-502", Name: "Batom Hidratante Nude", CostPrice: 14.20, SellPrice: 39.90, StockQuantity: 40},
		{ID: xid.New("prod"), Code: "FM-503", Name: "Máscara de Cílios Volume", CostPrice: 19.80, SellPrice: 54.90, StockQuantity: 30},
		{ID: xid.New("prod"), Code: "FM-510", Name: "Sérum Facial Vitamina C", CostPrice: 42.00, SellPrice: 119.90, StockQuantity: 18},
		{ID: xid.New("prod"), Code: "FM-511", Name: "Creme Hidratante Corporal", CostPrice: 21.50, SellPrice: 59.90, StockQuantity: 26},
		{ID: xid.New("prod"), Code: "FM-520", Name: "Perfume Feminino 50ml", CostPrice: 68.00, SellPrice: 169.90, StockQuantity: 12},
		{ID: xid.New("prod"), Code: "FM-530", Name: "Shampoo Reconstrutor 300ml", CostPrice: 16.40, SellPrice: 44.90, StockQuantity: 32},
		{ID: xid.New("prod"), Code: "FM-531", Name: "Condicionador Nutritivo 300ml", CostPrice: 16.90, SellPrice: 46.90, StockQuantity: 28},
	}
	salons := []domain.Salon{
		{ID: xid.New("salon"), Name: "Espaço Bella Hair", ContactPerson: "Fernanda", Phone: "+55 11 98811-2301", Address: "Rua das Acácias 120", CommissionRate: 20},
		{ID: xid.New("salon"), Name: "Studio Glam", ContactPerson: "Patrícia", Phone: "+55 11 97654-8820", Address: "Av. Paulista 1530", CommissionRate: 15},
	}
	clients := []domain.Client{
		{ID: xid.New("cli"), Name: "Mariana Souza", Phone: "+55 11 99123-4567", Instagram: "@mari.souza"},
		{ID: xid.New("cli"), Name: "Juliana Prado", Phone: "+55 11 98876-1122", Instagram: "@juprado"},
		{ID: xid.New("cli"), Name: "Carla Mendes", Phone: "+55 11 97340-9981"},
	}

	s := New()
	for _, p := range products {
		s.products[p.ID] = p
	}
	for _, sl := range salons {
		s.salons[sl.ID] = sl
	}
	for _, c := range clients {
		s.clients[c.ID] = c
	}
	s.usersByEmail = seedOwner()
	return s
}

func cmpString(a, b string) int {
	return strings.Compare(a, b)
}

// Products

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetProductByCode(_ context.Context, code string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Code == code {
			return p, nil
		}
	}
	return domain.Product{}, store.ErrNotFound
}

func (s *Store) CreateProduct(_ context.Context, p domain.Product) error {
	if p.ID == "" || p.Name == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; exists {
		return store.ErrDuplicate
	}
	if p.Code != "" {
		for _, existing := range s.products {
			if existing.Code == p.Code {
				return store.ErrDuplicate
			}
		}
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, p domain.Product) error {
	if p.ID == "" || p.Name == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; !exists {
		return store.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Clients

func (s *Store) ListClients(_ context.Context) ([]domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	slices.SortFunc(clients, func(a, b domain.Client) int {
		return cmpString(a.Name, b.Name)
	})
	return clients, nil
}

func (s *Store) GetClient(_ context.Context, id string) (domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return domain.Client{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateClient(_ context.Context, c domain.Client) error {
	if c.ID == "" || c.Name == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[c.ID]; exists {
		return store.ErrDuplicate
	}
	s.clients[c.ID] = c
	return nil
}

func (s *Store) UpdateClient(_ context.Context, c domain.Client) error {
	if c.ID == "" || c.Name == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[c.ID]; !exists {
		return store.ErrNotFound
	}
	s.clients[c.ID] = c
	return nil
}

func (s *Store) DeleteClient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

// Salons

func (s *Store) ListSalons(_ context.Context) ([]domain.Salon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	salons := make([]domain.Salon, 0, len(s.salons))
	for _, sl := range s.salons {
		salons = append(salons, sl)
	}
	slices.SortFunc(salons, func(a, b domain.Salon) int {
		return cmpString(a.Name, b.Name)
	})
	return salons, nil
}

func (s *Store) GetSalon(_ context.Context, id string) (domain.Salon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.salons[id]
	if !ok {
		return domain.Salon{}, store.ErrNotFound
	}
	return sl, nil
}

func (s *Store) CreateSalon(_ context.Context, sl domain.Salon) error {
	if sl.ID == "" || sl.Name == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.salons[sl.ID]; exists {
		return store.ErrDuplicate
	}
	s.salons[sl.ID] = sl
	return nil
}

func (s *Store) UpdateSalon(_ context.Context, sl domain.Salon) error {
	if sl.ID == "" || sl.Name == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.salons[sl.ID]; !exists {
		return store.ErrNotFound
	}
	s.salons[sl.ID] = sl
	return nil
}

func (s *Store) DeleteSalon(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.salons[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.salons, id)
	return nil
}

// Consignments

func (s *Store) ListConsignments(_ context.Context) ([]domain.Consignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	consignments := make([]domain.Consignment, 0, len(s.consignments))
	for _, c := range s.consignments {
		consignments = append(consignments, c)
	}
	sortConsignments(consignments)
	return consignments, nil
}

func (s *Store) ListConsignmentsBySalonProduct(_ context.Context, salonID, productID string) ([]domain.Consignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var consignments []domain.Consignment
	for _, c := range s.consignments {
		if c.SalonID == salonID && c.ProductID == productID {
			consignments = append(consignments, c)
		}
	}
	sortConsignments(consignments)
	return consignments, nil
}

func sortConsignments(consignments []domain.Consignment) {
	slices.SortFunc(consignments, func(a, b domain.Consignment) int {
		if a.Date.Equal(b.Date) {
			return cmpString(a.ID, b.ID)
		}
		if a.Date.Before(b.Date) {
			return -1
		}
		return 1
	})
}

func (s *Store) GetConsignment(_ context.Context, id string) (domain.Consignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.consignments[id]
	if !ok {
		return domain.Consignment{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateConsignment(_ context.Context, c domain.Consignment) error {
	if c.ID == "" || c.SalonID == "" || c.ProductID == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.consignments[c.ID]; exists {
		return store.ErrDuplicate
	}
	s.consignments[c.ID] = c
	return nil
}

func (s *Store) UpdateConsignment(_ context.Context, c domain.Consignment) error {
	if c.ID == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.consignments[c.ID]; !exists {
		return store.ErrNotFound
	}
	s.consignments[c.ID] = c
	return nil
}

func (s *Store) DeleteConsignment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.consignments[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.consignments, id)
	return nil
}

// Sales

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		sales = append(sales, cloneSale(sale))
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.Date.Equal(b.Date) {
			return cmpString(b.ID, a.ID)
		}
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	})
	return sales, nil
}

func (s *Store) GetSale(_ context.Context, id string) (domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return domain.Sale{}, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) error {
	if sale.ID == "" || len(sale.Items) == 0 {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sales[sale.ID]; exists {
		return store.ErrDuplicate
	}
	s.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (s *Store) UpdateSale(_ context.Context, sale domain.Sale) error {
	if sale.ID == "" || len(sale.Items) == 0 {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sales[sale.ID]; !exists {
		return store.ErrNotFound
	}
	s.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sales[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.sales, id)
	return nil
}

func (s *Store) MarkCommissionPaid(_ context.Context, salonID string, saleIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, id := range saleIDs {
		sale, ok := s.sales[id]
		if !ok {
			continue
		}
		if sale.Type != domain.SaleTypeConsignment || sale.OriginSalonID != salonID {
			continue
		}
		if sale.CommissionPaid {
			continue
		}
		sale.CommissionPaid = true
		s.sales[id] = sale
		changed++
	}
	return changed, nil
}

func cloneSale(sale domain.Sale) domain.Sale {
	out := sale
	out.Items = make([]domain.SaleItem, len(sale.Items))
	copy(out.Items, sale.Items)
	return out
}

// Users

func (s *Store) CreateUser(_ context.Context, u domain.UserAccount) error {
	if u.Email == "" || u.Password == "" {
		return store.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return store.ErrDuplicate
	}
	s.usersByEmail[u.Email] = u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByEmail[email]
	if !ok {
		return domain.UserAccount{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByEmail))
	for _, u := range s.usersByEmail {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Email, b.Email)
	})
	return users, nil
}

func (s *Store) ApproveUser(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByEmail[email]
	if !ok {
		return store.ErrNotFound
	}
	u.Approved = true
	s.usersByEmail[email] = u
	return nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
