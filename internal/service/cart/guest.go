package cart

import (
	"context"
	"encoding/json"

	"dutyfree/internal/domain"
	"go.uber.org/zap"
)

// GuestKeyPrefix prefixes the blob key of every guest cart.
const GuestKeyPrefix = "guest_cart:"

// EncodeGuestCart serializes lines as a JSON array of {id, quantity, products}.
func EncodeGuestCart(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(lines)
}

// DecodeGuestCart parses a stored guest cart. Missing or unreadable data is an empty cart.
func DecodeGuestCart(data []byte) []domain.CartLine {
	var lines []domain.CartLine
	if len(data) == 0 || json.Unmarshal(data, &lines) != nil || lines == nil {
		return []domain.CartLine{}
	}
	return lines
}

// guestStore never fails on storage: unreadable carts read as empty and
// failed writes are logged and dropped.
type guestStore struct {
	svc     *Service
	guestID string
}

func (g *guestStore) key() string {
	return GuestKeyPrefix + g.guestID
}

func (g *guestStore) load(ctx context.Context) []domain.CartLine {
	data, ok, err := g.svc.blobs.Get(ctx, g.key())
	if err != nil {
		g.svc.logger.Warn("guest cart read failed", zap.String("guest_id", g.guestID), zap.Error(err))
		return []domain.CartLine{}
	}
	if !ok {
		return []domain.CartLine{}
	}
	return DecodeGuestCart(data)
}

func (g *guestStore) save(ctx context.Context, lines []domain.CartLine) {
	data, err := EncodeGuestCart(lines)
	if err == nil {
		err = g.svc.blobs.Set(ctx, g.key(), data)
	}
	if err != nil {
		g.svc.logger.Warn("guest cart not persisted", zap.String("guest_id", g.guestID), zap.Error(err))
	}
	g.svc.publish("guest:"+g.guestID, domain.CountItems(lines))
}

func (g *guestStore) List(ctx context.Context) ([]domain.CartLine, error) {
	return g.load(ctx), nil
}

func (g *guestStore) Add(ctx context.Context, product domain.ProductSnapshot, quantity int) error {
	if product.ID == "" {
		return domain.Validation("product required")
	}
	qty, err := normalizeQuantity(quantity)
	if err != nil {
		return err
	}
	lines := g.load(ctx)
	id := domain.GuestLineID(product.ID)
	merged := false
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, domain.CartLine{ID: id, Quantity: qty, Product: product})
	}
	g.save(ctx, lines)
	return nil
}

// UpdateQuantity sets the line's quantity; zero or less drops the line.
// Unknown line ids are ignored.
func (g *guestStore) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	lines := g.load(ctx)
	kept := lines[:0]
	for _, l := range lines {
		if l.ID == lineID {
			l.Quantity = quantity
		}
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	g.save(ctx, kept)
	return nil
}

func (g *guestStore) Remove(ctx context.Context, lineID string) error {
	lines := g.load(ctx)
	kept := lines[:0]
	for _, l := range lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	g.save(ctx, kept)
	return nil
}

func (g *guestStore) Clear(ctx context.Context) error {
	if err := g.svc.blobs.Delete(ctx, g.key()); err != nil {
		g.svc.logger.Warn("guest cart not cleared", zap.String("guest_id", g.guestID), zap.Error(err))
	}
	g.svc.publish("guest:"+g.guestID, 0)
	return nil
}

func (g *guestStore) Count(ctx context.Context) (int, error) {
	return domain.CountItems(g.load(ctx)), nil
}
