package domain

import "time"

// Product is a catalog entry. StockQuantity counts units held centrally,
// ConsignedQuantity counts units currently out at partner salons that have
// been neither sold nor returned yet.
type Product struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	CostPrice         float64 `json:"cost_price"`
	SellPrice         float64 `json:"sell_price"`
	StockQuantity     int     `json:"stock_quantity"`
	ConsignedQuantity int     `json:"consigned_quantity"`
}

type ProductCreateRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	CostPrice     float64 `json:"cost_price"`
	SellPrice     float64 `json:"sell_price"`
	StockQuantity int     `json:"stock_quantity"`
}

// ProductUpdateRequest carries only the fields to change. StockQuantity is a
// direct replacement of the central count (a miscount correction or restock),
// not a ledger movement; consigned quantity is never edited directly.
type ProductUpdateRequest struct {
	Code          *string  `json:"code,omitempty"`
	Name          *string  `json:"name,omitempty"`
	CostPrice     *float64 `json:"cost_price,omitempty"`
	SellPrice     *float64 `json:"sell_price,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty"`
}

// ProductImportRow is one already-parsed spreadsheet row. Import upserts by
// code: known codes refresh name/prices/stock, unknown codes insert.
type ProductImportRow struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	CostPrice     float64 `json:"cost_price"`
	SellPrice     float64 `json:"sell_price"`
	StockQuantity int     `json:"stock_quantity"`
}

type ProductImportRequest struct {
	Rows []ProductImportRow `json:"rows"`
}

type ProductImportResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram,omitempty"`
}

type ClientCreateRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram,omitempty"`
}

// Salon is a partner salon that receives consigned stock. CommissionRate is a
// percentage (0-100) applied to consignment sale revenue.
type Salon struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ContactPerson  string  `json:"contact_person"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	CommissionRate float64 `json:"commission_rate"`
}

type SalonCreateRequest struct {
	Name           string  `json:"name"`
	ContactPerson  string  `json:"contact_person"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	CommissionRate float64 `json:"commission_rate"`
}

// Consignment is one shipment batch of a product to a salon.
// Available units = Quantity - SoldQuantity - ReturnedQuantity.
type Consignment struct {
	ID               string    `json:"id"`
	SalonID          string    `json:"salon_id"`
	ProductID        string    `json:"product_id"`
	Quantity         int       `json:"quantity"`
	SoldQuantity     int       `json:"sold_quantity"`
	ReturnedQuantity int       `json:"returned_quantity"`
	Status           string    `json:"status"`
	Date             time.Time `json:"date"`
}

// Available reports the batch's remaining unsold, unreturned units.
func (c Consignment) Available() int {
	return c.Quantity - c.SoldQuantity - c.ReturnedQuantity
}

type ConsignmentCreateRequest struct {
	SalonID   string     `json:"salon_id"`
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Date      *time.Time `json:"date,omitempty"`
}

// SaleItem snapshots product name and prices at sale time, decoupled from the
// product's current values. Historical sales stay priceable even after the
// referenced product is deleted.
type SaleItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	UnitCost    float64 `json:"unit_cost"`
}

type Sale struct {
	ID             string     `json:"id"`
	Date           time.Time  `json:"date"`
	ClientID       string     `json:"client_id,omitempty"`
	Items          []SaleItem `json:"items"`
	TotalValue     float64    `json:"total_value"`
	TotalCost      float64    `json:"total_cost"`
	PaymentMethod  string     `json:"payment_method"`
	Type           string     `json:"type"`
	OriginSalonID  string     `json:"origin_salon_id,omitempty"`
	CommissionPaid bool       `json:"commission_paid"`
}

// SaleItemInput may carry explicit snapshot values. When the referenced
// product exists its current name/prices win; explicit values keep an item
// usable when the product is already gone.
type SaleItemInput struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price,omitempty"`
	UnitCost    float64 `json:"unit_cost,omitempty"`
}

type SaleCreateRequest struct {
	Date          *time.Time      `json:"date,omitempty"`
	ClientID      string          `json:"client_id,omitempty"`
	Items         []SaleItemInput `json:"items"`
	PaymentMethod string          `json:"payment_method"`
	Type          string          `json:"type"`
	OriginSalonID string          `json:"origin_salon_id,omitempty"`
}

type PayCommissionRequest struct {
	SalonID string   `json:"salon_id"`
	SaleIDs []string `json:"sale_ids"`
}

type PayCommissionResponse struct {
	SalonID string `json:"salon_id"`
	Paid    int    `json:"paid"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Actor struct {
	Email string
}

// UserAccount is the persistence model for auth credentials. Approved gates
// login: freshly registered accounts stay pending until approved.
type UserAccount struct {
	Email     string
	Password  string
	Approved  bool
	CreatedAt time.Time
}

type UserView struct {
	Email     string    `json:"email"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SaleTypeDirect      = "direct"
	SaleTypeConsignment = "consignment"
)

const (
	ConsignmentStatusActive  = "active"
	ConsignmentStatusSettled = "settled"
)

const (
	PaymentCash   = "cash"
	PaymentPix    = "pix"
	PaymentCredit = "credit"
	PaymentDebit  = "debit"
)
