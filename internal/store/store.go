// Package store defines the persistence contract shared by the in-memory and
// postgres implementations.
package store

import (
	"context"
	"errors"

	"studioluzi/backoffice/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("record already exists")
	// ErrInvalidRecord is returned when a write carries data the store
	// cannot persist.
	ErrInvalidRecord = errors.New("invalid record")
)

// Repository is the full persistence surface. Every write is an independent
// operation; callers sequence multi-entity updates themselves and do not get
// cross-entity rollback.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	GetProductByCode(ctx context.Context, code string) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) error
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListClients(ctx context.Context) ([]domain.Client, error)
	GetClient(ctx context.Context, id string) (domain.Client, error)
	CreateClient(ctx context.Context, c domain.Client) error
	UpdateClient(ctx context.Context, c domain.Client) error
	DeleteClient(ctx context.Context, id string) error

	ListSalons(ctx context.Context) ([]domain.Salon, error)
	GetSalon(ctx context.Context, id string) (domain.Salon, error)
	CreateSalon(ctx context.Context, s domain.Salon) error
	UpdateSalon(ctx context.Context, s domain.Salon) error
	DeleteSalon(ctx context.Context, id string) error

	ListConsignments(ctx context.Context) ([]domain.Consignment, error)
	ListConsignmentsBySalonProduct(ctx context.Context, salonID, productID string) ([]domain.Consignment, error)
	GetConsignment(ctx context.Context, id string) (domain.Consignment, error)
	CreateConsignment(ctx context.Context, c domain.Consignment) error
	UpdateConsignment(ctx context.Context, c domain.Consignment) error
	DeleteConsignment(ctx context.Context, id string) error

	ListSales(ctx context.Context) ([]domain.Sale, error)
	GetSale(ctx context.Context, id string) (domain.Sale, error)
	CreateSale(ctx context.Context, s domain.Sale) error
	UpdateSale(ctx context.Context, s domain.Sale) error
	DeleteSale(ctx context.Context, id string) error
	// MarkCommissionPaid flips commission_paid on the given consignment
	// sales of one salon and reports how many records changed.
	MarkCommissionPaid(ctx context.Context, salonID string, saleIDs []string) (int, error)

	CreateUser(ctx context.Context, u domain.UserAccount) error
	GetUserByEmail(ctx context.Context, email string) (domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	ApproveUser(ctx context.Context, email string) error

	Ping(ctx context.Context) error
	Close() error
}
