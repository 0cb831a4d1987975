package cart

import (
	"context"

	"dutyfree/internal/domain"
)

// Repository stores the carts of signed-in users, one row per (user, product).
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)
	// AddOrIncrement adds quantity to the user's line for productID, creating it if needed.
	AddOrIncrement(ctx context.Context, userID, productID string, quantity int) error
	SetQuantity(ctx context.Context, userID, lineID string, quantity int) error
	Delete(ctx context.Context, userID, lineID string) error
	Clear(ctx context.Context, userID string) error
}
