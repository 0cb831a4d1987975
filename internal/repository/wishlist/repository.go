package wishlist

import (
	"context"

	"dutyfree/internal/domain"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	// Add is idempotent per (user, product).
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}
