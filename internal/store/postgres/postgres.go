package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"studioluzi/backoffice/internal/domain"
	"studioluzi/backoffice/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Products

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, cost_price, sell_price, stock_quantity, consigned_quantity
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.CostPrice, &p.SellPrice, &p.StockQuantity, &p.ConsignedQuantity); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, cost_price, sell_price, stock_quantity, consigned_quantity
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Code, &p.Name, &p.CostPrice, &p.SellPrice, &p.StockQuantity, &p.ConsignedQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, store.ErrNotFound
		}
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Store) GetProductByCode(ctx context.Context, code string) (domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, cost_price, sell_price, stock_quantity, consigned_quantity
		FROM products
		WHERE code = $1
	`, code).Scan(&p.ID, &p.Code, &p.Name, &p.CostPrice, &p.SellPrice, &p.StockQuantity, &p.ConsignedQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, store.ErrNotFound
		}
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) error {
	if p.ID == "" || p.Name == "" {
		return store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, code, name, cost_price, sell_price, stock_quantity, consigned_quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
	`, p.ID, p.Code, p.Name, p.CostPrice, p.SellPrice, p.StockQuantity, p.ConsignedQuantity)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) error {
	if p.ID == "" || p.Name == "" {
		return store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET code = $2, name = $3, cost_price = $4, sell_price = $5,
		    stock_quantity = $6, consigned_quantity = $7, updated_at = now()
		WHERE id = $1
	`, p.ID, p.Code, p.Name, p.CostPrice, p.SellPrice, p.StockQuantity, p.ConsignedQuantity)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Clients

func (s *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, instagram
		FROM clients
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]domain.Client, 0, 32)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Instagram); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id string) (domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, instagram FROM clients WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Instagram)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Client{}, store.ErrNotFound
		}
		return domain.Client{}, err
	}
	return c, nil
}

func (s *Store) CreateClient(ctx context.Context, c domain.Client) error {
	if c.ID == "" || c.Name == "" {
		return store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, phone, instagram, created_at)
		VALUES ($1,$2,$3,$4,now())
	`, c.ID, c.Name, c.Phone, c.Instagram)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) UpdateClient(ctx context.Context, c domain.Client) error {
	if c.ID == "" || c.Name == "" {
		return store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE clients SET name = $2, phone = $3, instagram = $4 WHERE id = $1
	`, c.ID, c.Name, c.Phone, c.Instagram)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Salons

func (s *Store) ListSalons(ctx context.Context) ([]domain.Salon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, contact_person, phone, address, commission_rate
		FROM salons
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	salons := make([]domain.Salon, 0, 16)
	for rows.Next() {
		var sl domain.Salon
		if err := rows.Scan(&sl.ID, &sl.Name, &sl.ContactPerson, &sl.Phone, &sl.Address, &sl.CommissionRate); err != nil {
			return nil, err
		}
		salons = append(salons, sl)
	}
	return salons, rows.Err()
}

func (s *Store) GetSalon(ctx context.Context, id string) (domain.Salon, error) {
	var sl domain.Salon
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, contact_person, phone, address, commission_rate
		FROM salons WHERE id = $1
	`, id).Scan(&sl.ID, &sl.Name, &sl.ContactPerson, &sl.Phone, &sl.Address, &sl.CommissionRate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Salon{}, store.ErrNotFound
		}
		return domain.Salon{}, err
	}
	return sl, nil
}

func (s *Store) CreateSalon(ctx context.Context, sl domain.Salon) error {
	if sl.ID == "" || sl.Name == "" {
		return store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salons (id, name, contact_person, phone, address, commission_rate, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, sl.ID, sl.Name, sl.ContactPerson, sl.Phone, sl.Address, sl.CommissionRate)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) UpdateSalon(ctx context.Context, sl domain.Salon) error {
	if sl.ID == "" || sl.Name == "" {
		return store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE salons
		SET name = $2, contact_person = $3, phone = $4, address = $5, commission_rate = $6
		WHERE id = $1
	`, sl.ID, sl.Name, sl.ContactPerson, sl.Phone, sl.Address, sl.CommissionRate)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteSalon(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM salons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Consignments

const consignmentColumns = `id, salon_id, product_id, quantity, sold_quantity, returned_quantity, status, date`

func (s *Store) ListConsignments(ctx context.Context) ([]domain.Consignment, error) {
	return s.queryConsignments(ctx, `
		SELECT `+consignmentColumns+` FROM consignments ORDER BY date, id
	`)
}

func (s *Store) ListConsignmentsBySalonProduct(ctx context.Context, salonID, productID string) ([]domain.Consignment, error) {
	return s.queryConsignments(ctx, `
		SELECT `+consignmentColumns+`
		FROM consignments
		WHERE salon_id = $1 AND product_id = $2
		ORDER BY date, id
	`, salonID, productID)
}

func (s *Store) queryConsignments(ctx context.Context, query string, args ...any) ([]domain.Consignment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	consignments := make([]domain.Consignment, 0, 32)
	for rows.Next() {
		var c domain.Consignment
		if err := rows.Scan(&c.ID, &c.SalonID, &c.ProductID, &c.Quantity, &c.SoldQuantity, &c.ReturnedQuantity, &c.Status, &c.Date); err != nil {
			return nil, err
		}
		consignments = append(consignments, c)
	}
	return consignments, rows.Err()
}

func (s *Store) GetConsignment(ctx context.Context, id string) (domain.Consignment, error) {
	var c domain.Consignment
	err := s.db.QueryRowContext(ctx, `
		SELECT `+consignmentColumns+` FROM consignments WHERE id = $1
	`, id).Scan(&c.ID, &c.SalonID, &c.ProductID, &c.Quantity, &c.SoldQuantity, &c.ReturnedQuantity, &c.Status, &c.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Consignment{}, store.ErrNotFound
		}
		return domain.Consignment{}, err
	}
	return c, nil
}

func (s *Store) CreateConsignment(ctx context.Context, c domain.Consignment) error {
	if c.ID == "" || c.SalonID == "" || c.ProductID == "" {
		return store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consignments (id, salon_id, product_id, quantity, sold_quantity, returned_quantity, status, date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, c.ID, c.SalonID, c.ProductID, c.Quantity, c.SoldQuantity, c.ReturnedQuantity, c.Status, c.Date)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) UpdateConsignment(ctx context.Context, c domain.Consignment) error {
	if c.ID == "" {
		return store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE consignments
		SET quantity = $2, sold_quantity = $3, returned_quantity = $4, status = $5, date = $6
		WHERE id = $1
	`, c.ID, c.Quantity, c.SoldQuantity, c.ReturnedQuantity, c.Status, c.Date)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteConsignment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM consignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Sales. A sale and its items are one logical write, so they share a
// transaction; everything across entities stays independent.

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, client_id, total_value, total_cost, payment_method, type, origin_salon_id, commission_paid
		FROM sales
		ORDER BY date DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	index := make(map[string]int)
	for rows.Next() {
		var sale domain.Sale
		var clientID, salonID sql.NullString
		if err := rows.Scan(&sale.ID, &sale.Date, &clientID, &sale.TotalValue, &sale.TotalCost, &sale.PaymentMethod, &sale.Type, &salonID, &sale.CommissionPaid); err != nil {
			return nil, err
		}
		sale.ClientID = clientID.String
		sale.OriginSalonID = salonID.String
		index[sale.ID] = len(sales)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, product_id, product_name, quantity, unit_price, unit_cost
		FROM sale_items
		ORDER BY sale_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var saleID string
		var item domain.SaleItem
		if err := itemRows.Scan(&saleID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.UnitCost); err != nil {
			return nil, err
		}
		if i, ok := index[saleID]; ok {
			sales[i].Items = append(sales[i].Items, item)
		}
	}
	return sales, itemRows.Err()
}

func (s *Store) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	var sale domain.Sale
	var clientID, salonID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, client_id, total_value, total_cost, payment_method, type, origin_salon_id, commission_paid
		FROM sales WHERE id = $1
	`, id).Scan(&sale.ID, &sale.Date, &clientID, &sale.TotalValue, &sale.TotalCost, &sale.PaymentMethod, &sale.Type, &salonID, &sale.CommissionPaid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sale{}, store.ErrNotFound
		}
		return domain.Sale{}, err
	}
	sale.ClientID = clientID.String
	sale.OriginSalonID = salonID.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, quantity, unit_price, unit_cost
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return domain.Sale{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.UnitCost); err != nil {
			return domain.Sale{}, err
		}
		sale.Items = append(sale.Items, item)
	}
	return sale, rows.Err()
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) error {
	if sale.ID == "" || len(sale.Items) == 0 {
		return store.ErrInvalidRecord
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, date, client_id, total_value, total_cost, payment_method, type, origin_salon_id, commission_paid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, sale.ID, sale.Date, nullable(sale.ClientID), sale.TotalValue, sale.TotalCost, sale.PaymentMethod, sale.Type, nullable(sale.OriginSalonID), sale.CommissionPaid)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}

	if err := insertSaleItems(ctx, tx, sale); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) UpdateSale(ctx context.Context, sale domain.Sale) error {
	if sale.ID == "" || len(sale.Items) == 0 {
		return store.ErrInvalidRecord
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE sales
		SET date = $2, client_id = $3, total_value = $4, total_cost = $5,
		    payment_method = $6, type = $7, origin_salon_id = $8, commission_paid = $9
		WHERE id = $1
	`, sale.ID, sale.Date, nullable(sale.ClientID), sale.TotalValue, sale.TotalCost, sale.PaymentMethod, sale.Type, nullable(sale.OriginSalonID), sale.CommissionPaid)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, sale.ID); err != nil {
		return err
	}
	if err := insertSaleItems(ctx, tx, sale); err != nil {
		return err
	}
	return tx.Commit()
}

func insertSaleItems(ctx context.Context, tx *sql.Tx, sale domain.Sale) error {
	for i, item := range sale.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, position, product_id, product_name, quantity, unit_price, unit_cost)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, sale.ID, i, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.UnitCost)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) MarkCommissionPaid(ctx context.Context, salonID string, saleIDs []string) (int, error) {
	if len(saleIDs) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(saleIDs))
	args := make([]any, 0, len(saleIDs)+1)
	args = append(args, salonID)
	for i, id := range saleIDs {
		placeholders[i] = "$" + strconv.Itoa(i+2)
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET commission_paid = true
		WHERE origin_salon_id = $1
		  AND type = 'consignment'
		  AND commission_paid = false
		  AND id IN (`+strings.Join(placeholders, ",")+`)
	`, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, u domain.UserAccount) error {
	if u.Email == "" || u.Password == "" {
		return store.ErrInvalidRecord
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (email, password_hash, approved, created_at)
		VALUES ($1,$2,$3,$4)
	`, u.Email, u.Password, u.Approved, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.UserAccount, error) {
	var u domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT email, password_hash, approved, created_at FROM accounts WHERE email = $1
	`, email).Scan(&u.Email, &u.Password, &u.Approved, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserAccount{}, store.ErrNotFound
		}
		return domain.UserAccount{}, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT email, password_hash, approved, created_at FROM accounts ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Email, &u.Password, &u.Approved, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) ApproveUser(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET approved = true WHERE email = $1
	`, email)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
