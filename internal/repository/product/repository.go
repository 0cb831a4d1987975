package product

import (
	"context"

	"dutyfree/internal/domain"
)

// ListFilter narrows catalog listings. Empty fields do not filter.
type ListFilter struct {
	Category    string
	VisibleOnly bool
}

// Collection names a curated product list table.
type Collection string

const (
	Featured Collection = "featured_products"
	DutyFree Collection = "duty_free_products"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)

	// ListCollection returns the active entries of c whose product is visible, in display order.
	ListCollection(ctx context.Context, c Collection) ([]domain.CollectionEntry, error)

	ListImages(ctx context.Context, productID string) ([]domain.ProductImage, error)
	AddImage(ctx context.Context, img domain.ProductImage) (*domain.ProductImage, error)
	DeleteImage(ctx context.Context, imageID string) error
}
