package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	ID           string
	Name         string
	Description  string
	Category     string
	ImageURL     string
	Rating       float64
	ReviewsCount int
	DisplayOrder int
}

type logoSeed struct {
	ID       string
	Name     string
	ImageURL string
}

var products = []productSeed{
	{
		ID:           "5b1f6a52-4a3e-4c55-9d6e-0a9f1c000001",
		Name:         "Hennessy XO Cognac 70cl",
		Description:  "Extra old cognac with notes of candied fruit and spice",
		Category:     "Spirits",
		ImageURL:     "https://images.unsplash.com/photo-1569529465841-dfecdab7503b",
		Rating:       4.8,
		ReviewsCount: 214,
		DisplayOrder: 0,
	},
	{
		ID:           "5b1f6a52-4a3e-4c55-9d6e-0a9f1c000002",
		Name:         "Johnnie Walker Blue Label 1L",
		Description:  "Blended Scotch whisky, travel retail exclusive size",
		Category:     "Spirits",
		ImageURL:     "https://images.unsplash.com/photo-1527281400683-1aae777175f8",
		Rating:       4.7,
		ReviewsCount: 168,
		DisplayOrder: 1,
	},
	{
		ID:           "5b1f6a52-4a3e-4c55-9d6e-0a9f1c000003",
		Name:         "Chanel No. 5 Eau de Parfum 100ml",
		Description:  "The classic floral aldehyde fragrance",
		Category:     "Fragrances & Beauty",
		ImageURL:     "https://images.unsplash.com/photo-1541643600914-78b084683601",
		Rating:       4.9,
		ReviewsCount: 342,
		DisplayOrder: 0,
	},
	{
		ID:           "5b1f6a52-4a3e-4c55-9d6e-0a9f1c000004",
		Name:         "Toblerone Gold Bar 360g",
		Description:  "Swiss milk chocolate with honey and almond nougat",
		Category:     "Confectionery",
		ImageURL:     "https://images.unsplash.com/photo-1549007994-cb92caebd54b",
		Rating:       4.5,
		ReviewsCount: 87,
		DisplayOrder: 0,
	},
	{
		ID:           "5b1f6a52-4a3e-4c55-9d6e-0a9f1c000005",
		Name:         "Apple AirPods Pro",
		Description:  "Active noise cancelling earbuds",
		Category:     "Electronics & Appliances",
		ImageURL:     "https://images.unsplash.com/photo-1600294037681-c80b4cb5b434",
		Rating:       4.6,
		ReviewsCount: 512,
		DisplayOrder: 0,
	},
}

var (
	featured = []string{products[0].ID, products[2].ID, products[4].ID}
	dutyFree = []string{products[1].ID, products[3].ID}
	logos    = []logoSeed{
		{ID: "8c7d0f3e-2b61-4f0a-a1d4-7e5f00000001", Name: "Chanel", ImageURL: "https://logo.example/chanel.svg"},
		{ID: "8c7d0f3e-2b61-4f0a-a1d4-7e5f00000002", Name: "Hennessy", ImageURL: "https://logo.example/hennessy.svg"},
		{ID: "8c7d0f3e-2b61-4f0a-a1d4-7e5f00000003", Name: "Apple", ImageURL: "https://logo.example/apple.svg"},
	}
)

// Apply inserts a demo catalog for manual testing. It is idempotent via ON CONFLICT.
// A non-empty adminUserID is granted the admin role.
func Apply(ctx context.Context, pool *pgxpool.Pool, adminUserID string) error {
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}
	for i, id := range featured {
		if err := addToCollection(ctx, pool, "featured_products", id, i); err != nil {
			return fmt.Errorf("feature product %s: %w", id, err)
		}
	}
	for i, id := range dutyFree {
		if err := addToCollection(ctx, pool, "duty_free_products", id, i); err != nil {
			return fmt.Errorf("add duty-free product %s: %w", id, err)
		}
	}
	for i, l := range logos {
		if err := upsertLogo(ctx, pool, l, i); err != nil {
			return fmt.Errorf("upsert brand logo %s: %w", l.Name, err)
		}
	}
	if _, err := pool.Exec(ctx, `
INSERT INTO website_content (section, title, content, image_url)
VALUES ('hero_image_desktop', 'Desktop Hero Image', 'Shop tax free before you fly',
        'https://images.unsplash.com/photo-1436491865332-7a61a109cc05')
ON CONFLICT (section) DO NOTHING
`); err != nil {
		return fmt.Errorf("seed hero content: %w", err)
	}
	if adminUserID != "" {
		if _, err := pool.Exec(ctx, `
INSERT INTO user_roles (user_id, role) VALUES ($1, 'admin')
ON CONFLICT DO NOTHING
`, adminUserID); err != nil {
			return fmt.Errorf("grant admin: %w", err)
		}
	}
	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (id, name, description, category, image_url, rating, reviews_count, display_order)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    image_url = EXCLUDED.image_url,
    rating = EXCLUDED.rating,
    reviews_count = EXCLUDED.reviews_count,
    display_order = EXCLUDED.display_order,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, p.ID, p.Name, p.Description, p.Category, p.ImageURL, p.Rating, p.ReviewsCount, p.DisplayOrder)
	return err
}

// addToCollection only supports the two fixed collection tables.
func addToCollection(ctx context.Context, pool *pgxpool.Pool, table, productID string, order int) error {
	q := `
INSERT INTO ` + table + ` (product_id, display_order)
VALUES ($1::uuid, $2)
ON CONFLICT (product_id) DO NOTHING
`
	_, err := pool.Exec(ctx, q, productID, order)
	return err
}

func upsertLogo(ctx context.Context, pool *pgxpool.Pool, l logoSeed, order int) error {
	const q = `
INSERT INTO brand_logos (id, name, image_url, display_order)
VALUES ($1::uuid, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    image_url = EXCLUDED.image_url,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, l.ID, l.Name, l.ImageURL, order)
	return err
}
