package wishlist

import (
	"context"
	"strings"

	"dutyfree/internal/domain"
)

type wishlistRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}

// Service manages saved products of signed-in users.
type Service struct {
	repo wishlistRepo
}

func New(repo wishlistRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, id domain.Identity) ([]domain.WishlistItem, error) {
	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, id.UserID)
}

// Add saves the product. Saving it twice is not an error.
func (s *Service) Add(ctx context.Context, id domain.Identity, productID string) error {
	if !id.Authenticated() {
		return domain.ErrUnauthenticated
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Validation("product_id required")
	}
	return s.repo.Add(ctx, id.UserID, productID)
}

func (s *Service) Remove(ctx context.Context, id domain.Identity, productID string) error {
	if !id.Authenticated() {
		return domain.ErrUnauthenticated
	}
	return s.repo.Remove(ctx, id.UserID, strings.TrimSpace(productID))
}
