package ordered

import (
	"context"

	"dutyfree/internal/domain"
)

// Table describes a table whose rows are ordered by an integer display_order column.
type Table struct {
	Name string
	// ActiveColumn is the boolean visibility flag, e.g. is_active or is_visible.
	ActiveColumn string
	// GroupColumn partitions the ordering when set (products are ordered per category).
	GroupColumn string
	// RefColumn points at a product. Collections with a ref column reject duplicate refs.
	RefColumn string
	// PayloadColumns are copied into OrderableItem.Payload and accepted by Insert.
	PayloadColumns []string
}

var (
	Featured = Table{Name: "featured_products", ActiveColumn: "is_active", RefColumn: "product_id"}
	DutyFree = Table{Name: "duty_free_products", ActiveColumn: "is_active", RefColumn: "product_id"}
	Catalog  = Table{
		Name:           "products",
		ActiveColumn:   "is_visible",
		GroupColumn:    "category",
		PayloadColumns: []string{"name", "image_url", "in_stock"},
	}
	BrandLogos = Table{Name: "brand_logos", ActiveColumn: "is_active", PayloadColumns: []string{"name", "image_url"}}
)

type Repository interface {
	// List returns the rows of group (all rows when the table is ungrouped)
	// ordered by display_order then id.
	List(ctx context.Context, group string) ([]domain.OrderableItem, error)
	Get(ctx context.Context, id string) (*domain.OrderableItem, error)
	SetDisplayOrder(ctx context.Context, id string, order int) error
	SetActive(ctx context.Context, id string, active bool) error
	HasRef(ctx context.Context, refID string) (bool, error)
	Insert(ctx context.Context, in InsertInput) (*domain.OrderableItem, error)
	Delete(ctx context.Context, id string) error
}

type InsertInput struct {
	RefID        string
	Payload      map[string]interface{}
	DisplayOrder int
	Active       bool
}

// Swapper is implemented by repositories that can exchange two display orders atomically.
type Swapper interface {
	Swap(ctx context.Context, a, b domain.OrderableItem) error
}
