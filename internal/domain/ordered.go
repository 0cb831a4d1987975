package domain

import "time"

// OrderableItem is a row of any table carrying a display_order column.
// Group partitions the ordering (the catalog orders products within a category).
// RefID is the product the entry points at, empty for standalone rows.
type OrderableItem struct {
	ID           string                 `json:"id"`
	DisplayOrder int                    `json:"display_order"`
	Active       bool                   `json:"is_active"`
	Group        string                 `json:"group,omitempty"`
	RefID        string                 `json:"product_id,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// CollectionEntry is an active featured or duty-free entry joined to its product.
type CollectionEntry struct {
	ID           string  `json:"id"`
	DisplayOrder int     `json:"display_order"`
	Product      Product `json:"products"`
}

type BrandLogo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
