// Package collection edits CMS-curated lists ordered by display_order:
// featured products, duty-free products, products within a category and brand logos.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dutyfree/internal/domain"
	"dutyfree/internal/repository/ordered"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrDuplicate rejects adding a product that is already in the collection.
	ErrDuplicate = errors.New("product is already in this collection")
	// ErrSwapFailed wraps the store error of a failed move. With two-step swaps the
	// first update may already be applied.
	ErrSwapFailed = errors.New("failed to reorder item")
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", domain.Validation("direction must be up or down")
}

type orderedRepo interface {
	List(ctx context.Context, group string) ([]domain.OrderableItem, error)
	Get(ctx context.Context, id string) (*domain.OrderableItem, error)
	SetDisplayOrder(ctx context.Context, id string, order int) error
	SetActive(ctx context.Context, id string, active bool) error
	HasRef(ctx context.Context, refID string) (bool, error)
	Insert(ctx context.Context, in ordered.InsertInput) (*domain.OrderableItem, error)
	Delete(ctx context.Context, id string) error
}

type Editor struct {
	repo       orderedRepo
	table      ordered.Table
	atomicSwap bool
	logger     *zap.Logger
}

type Option func(*Editor)

// WithAtomicSwap runs both updates of a move in one transaction when the
// repository supports it.
func WithAtomicSwap(enabled bool) Option {
	return func(e *Editor) { e.atomicSwap = enabled }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(repo orderedRepo, table ordered.Table, opts ...Option) *Editor {
	e := &Editor{repo: repo, table: table, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("collection").With(zap.String("table", table.Name))
	return e
}

// SortItems orders items by display_order ascending, then by id.
func SortItems(items []domain.OrderableItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DisplayOrder != items[j].DisplayOrder {
			return items[i].DisplayOrder < items[j].DisplayOrder
		}
		return items[i].ID < items[j].ID
	})
}

// NextDisplayOrder is max(existing orders, -1) + 1.
func NextDisplayOrder(items []domain.OrderableItem) int {
	highest := -1
	for _, it := range items {
		if it.DisplayOrder > highest {
			highest = it.DisplayOrder
		}
	}
	return highest + 1
}

// List re-reads the collection (or one group of it) in rendering order.
func (e *Editor) List(ctx context.Context, group string) ([]domain.OrderableItem, error) {
	items, err := e.repo.List(ctx, group)
	if err != nil {
		return nil, err
	}
	SortItems(items)
	return items, nil
}

// Move swaps the item's display_order with its neighbour in direction and
// returns the re-read collection. Moving the first item up or the last item
// down changes nothing. For grouped tables the neighbour is taken from the
// item's own group unless group is given.
func (e *Editor) Move(ctx context.Context, itemID string, dir Direction, group string) ([]domain.OrderableItem, error) {
	if dir != Up && dir != Down {
		return nil, domain.Validation("direction must be up or down")
	}
	if e.table.GroupColumn != "" && group == "" {
		item, err := e.repo.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		group = item.Group
	}

	items, err := e.List(ctx, group)
	if err != nil {
		return nil, err
	}
	i := indexOf(items, itemID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(items) {
		return items, nil
	}

	if err := e.swap(ctx, items[i], items[j]); err != nil {
		e.logger.Error("move failed", zap.String("id", itemID), zap.String("direction", string(dir)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSwapFailed, err)
	}
	e.logger.Info("moved", zap.String("id", itemID), zap.String("direction", string(dir)),
		zap.Int("from", items[i].DisplayOrder), zap.Int("to", items[j].DisplayOrder))
	return e.List(ctx, group)
}

func (e *Editor) swap(ctx context.Context, a, b domain.OrderableItem) error {
	if e.atomicSwap {
		if s, ok := e.repo.(ordered.Swapper); ok {
			return s.Swap(ctx, a, b)
		}
	}
	if err := e.repo.SetDisplayOrder(ctx, a.ID, b.DisplayOrder); err != nil {
		return err
	}
	return e.repo.SetDisplayOrder(ctx, b.ID, a.DisplayOrder)
}

func indexOf(items []domain.OrderableItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// ToggleActive stores !current. current is the flag as the operator last saw it.
func (e *Editor) ToggleActive(ctx context.Context, itemID string, current bool) error {
	return e.repo.SetActive(ctx, itemID, !current)
}

type AddInput struct {
	RefID   string
	Payload map[string]interface{}
	// Inactive adds the item hidden; new items are active by default.
	Inactive bool
}

// Add appends an item after the current last one.
func (e *Editor) Add(ctx context.Context, in AddInput) (*domain.OrderableItem, error) {
	if e.table.GroupColumn != "" {
		return nil, domain.Validation("items of this collection are created through the product editor")
	}
	if e.table.RefColumn != "" {
		refID := strings.TrimSpace(in.RefID)
		if refID == "" {
			return nil, domain.Validation("product_id required")
		}
		if _, err := uuid.Parse(refID); err != nil {
			return nil, domain.Validation("product_id must be a uuid")
		}
		exists, err := e.repo.HasRef(ctx, refID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicate
		}
		in.RefID = refID
	}
	for _, c := range e.table.PayloadColumns {
		v, ok := in.Payload[c]
		if s, isStr := v.(string); !ok || (isStr && strings.TrimSpace(s) == "") {
			return nil, domain.Validation(c + " required")
		}
	}

	items, err := e.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	item, err := e.repo.Insert(ctx, ordered.InsertInput{
		RefID:        in.RefID,
		Payload:      in.Payload,
		DisplayOrder: NextDisplayOrder(items),
		Active:       !in.Inactive,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, ErrDuplicate
	}
	return item, err
}

func (e *Editor) Remove(ctx context.Context, itemID string) error {
	return e.repo.Delete(ctx, itemID)
}

// Active lists the active items in rendering order, for the public site.
func (e *Editor) Active(ctx context.Context) ([]domain.OrderableItem, error) {
	items, err := e.List(ctx, "")
	if err != nil {
		return nil, err
	}
	active := items[:0]
	for _, it := range items {
		if it.Active {
			active = append(active, it)
		}
	}
	return active, nil
}
