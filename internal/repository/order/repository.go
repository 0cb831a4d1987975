package order

import (
	"context"

	"dutyfree/internal/domain"
	"github.com/shopspring/decimal"
)

// Repository persists placed orders together with their item snapshots.
type Repository interface {
	// Place writes o and its items in one transaction. When clearCartOf is
	// non-empty the user's cart rows are deleted in the same transaction.
	Place(ctx context.Context, o domain.Order, clearCartOf string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListForCustomer returns orders owned by userID or placed as a guest with email.
	ListForCustomer(ctx context.Context, userID, email string) ([]domain.Order, error)
	// ListAll returns every order, newest first. An empty status means any.
	ListAll(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	// UpdateStatus sets the status. When from is given the row must currently
	// hold one of those statuses, otherwise ErrNotFound is returned.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, from ...domain.OrderStatus) error
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
}
