package domain

import "time"

type Product struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description,omitempty"`
	Category       string                 `json:"category"`
	ImageURL       string                 `json:"image_url,omitempty"`
	Insight        string                 `json:"insight,omitempty"`
	Rating         *float64               `json:"rating,omitempty"`
	ReviewsCount   *int                   `json:"reviews_count,omitempty"`
	InStock        bool                   `json:"in_stock"`
	IsVisible      bool                   `json:"is_visible"`
	DisplayOrder   int                    `json:"display_order"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	Images         []ProductImage         `json:"images,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type ProductImage struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductSnapshot is the denormalized copy of a product stored with a cart line.
type ProductSnapshot struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	ImageURL     string   `json:"image_url"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewsCount *int     `json:"reviews_count,omitempty"`
	InStock      *bool    `json:"in_stock,omitempty"`
}

// Snapshot captures the cart-relevant fields of p.
func (p Product) Snapshot() ProductSnapshot {
	inStock := p.InStock
	return ProductSnapshot{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		ImageURL:     p.ImageURL,
		Rating:       p.Rating,
		ReviewsCount: p.ReviewsCount,
		InStock:      &inStock,
	}
}
