package cart

import (
	"context"
	"fmt"

	"dutyfree/internal/domain"
	"go.uber.org/zap"
)

// userStore surfaces every repository error to the caller.
type userStore struct {
	svc    *Service
	userID string
}

func (u *userStore) List(ctx context.Context) ([]domain.CartLine, error) {
	lines, err := u.svc.repo.ListByUser(ctx, u.userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return lines, nil
}

func (u *userStore) Add(ctx context.Context, product domain.ProductSnapshot, quantity int) error {
	if product.ID == "" {
		return domain.Validation("product required")
	}
	qty, err := normalizeQuantity(quantity)
	if err != nil {
		return err
	}
	if err := u.svc.repo.AddOrIncrement(ctx, u.userID, product.ID, qty); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	u.notify(ctx)
	return nil
}

// UpdateQuantity rejects quantities below 1 without touching the store.
func (u *userStore) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 1 {
		return domain.Validation("quantity must be positive")
	}
	if err := u.svc.repo.SetQuantity(ctx, u.userID, lineID, quantity); err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	u.notify(ctx)
	return nil
}

func (u *userStore) Remove(ctx context.Context, lineID string) error {
	if err := u.svc.repo.Delete(ctx, u.userID, lineID); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	u.notify(ctx)
	return nil
}

func (u *userStore) Clear(ctx context.Context) error {
	if err := u.svc.repo.Clear(ctx, u.userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	u.svc.publish("user:"+u.userID, 0)
	return nil
}

func (u *userStore) Count(ctx context.Context) (int, error) {
	lines, err := u.List(ctx)
	if err != nil {
		return 0, err
	}
	return domain.CountItems(lines), nil
}

func (u *userStore) notify(ctx context.Context) {
	if u.svc.notifier == nil {
		return
	}
	n, err := u.Count(ctx)
	if err != nil {
		u.svc.logger.Warn("cart count for notification failed", zap.String("user_id", u.userID), zap.Error(err))
		return
	}
	u.svc.publish("user:"+u.userID, n)
}
