// Package cart presents one cart API over two backends: Postgres rows for
// signed-in users and a serialized list in a blob store for guests.
package cart

import (
	"context"

	"dutyfree/internal/domain"
	"dutyfree/internal/events"
	"go.uber.org/zap"
)

// Store is the cart of one owner. Guest and user stores behave the same
// except where noted on the implementations.
type Store interface {
	List(ctx context.Context) ([]domain.CartLine, error)
	// Add merges into the product's existing line or appends a new one.
	// A zero quantity means 1.
	Add(ctx context.Context, product domain.ProductSnapshot, quantity int) error
	UpdateQuantity(ctx context.Context, lineID string, quantity int) error
	Remove(ctx context.Context, lineID string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type cartRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)
	AddOrIncrement(ctx context.Context, userID, productID string, quantity int) error
	SetQuantity(ctx context.Context, userID, lineID string, quantity int) error
	Delete(ctx context.Context, userID, lineID string) error
	Clear(ctx context.Context, userID string) error
}

type blobStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type publisher interface {
	Publish(ev events.CartChanged)
}

type Service struct {
	repo     cartRepo
	blobs    blobStore
	notifier publisher
	logger   *zap.Logger
}

func New(repo cartRepo, blobs blobStore, notifier publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, blobs: blobs, notifier: notifier, logger: logger.Named("cart")}
}

// For picks the store for the caller: the user's rows when signed in,
// otherwise the guest list of guestID. The two are never combined.
func (s *Service) For(id domain.Identity, guestID string) Store {
	if id.Authenticated() {
		return &userStore{svc: s, userID: id.UserID}
	}
	return &guestStore{svc: s, guestID: guestID}
}

// Owner is the notification channel name of a cart.
func Owner(id domain.Identity, guestID string) string {
	if id.Authenticated() {
		return "user:" + id.UserID
	}
	return "guest:" + guestID
}

func (s *Service) publish(owner string, count int) {
	if s.notifier != nil {
		s.notifier.Publish(events.CartChanged{Owner: owner, Count: count})
	}
}

func normalizeQuantity(q int) (int, error) {
	if q == 0 {
		return 1, nil
	}
	if q < 0 {
		return 0, domain.Validation("quantity must be positive")
	}
	return q, nil
}
