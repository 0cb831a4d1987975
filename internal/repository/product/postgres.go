package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dutyfree/internal/db"
	"dutyfree/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

// Columns lists the product projection in the order ScanProduct expects.
// alias qualifies every column, e.g. "p".
func Columns(alias string) string {
	a := ""
	if alias != "" {
		a = alias + "."
	}
	return strings.Join([]string{
		a + "id::text",
		a + "name",
		"COALESCE(" + a + "description, '')",
		a + "category",
		"COALESCE(" + a + "image_url, '')",
		"COALESCE(" + a + "insight, '')",
		a + "rating::float8",
		a + "reviews_count",
		a + "in_stock",
		a + "is_visible",
		"COALESCE(" + a + "display_order, 0)",
		a + "specifications",
		a + "created_at",
		a + "updated_at",
	}, ", ")
}

// ScanDest returns scan targets for Columns into p, followed by extra.
func ScanDest(p *domain.Product, extra ...any) []any {
	dest := []any{
		&p.ID, &p.Name, &p.Description, &p.Category, &p.ImageURL, &p.Insight,
		&p.Rating, &p.ReviewsCount, &p.InStock, &p.IsVisible, &p.DisplayOrder,
		&p.Specifications, &p.CreatedAt, &p.UpdatedAt,
	}
	return append(extra, dest...)
}

func collect(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	result := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(ScanDest(&p)...); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, error) {
	q := `SELECT ` + Columns("") + `
FROM products
WHERE ($1 = '' OR lower(category) = lower($1))
  AND (NOT $2 OR is_visible)
ORDER BY category, COALESCE(display_order, 0), id
`
	rows, err := r.pool.Query(ctx, q, f.Category, f.VisibleOnly)
	if err != nil {
		r.logger.Error("list failed", zap.String("category", f.Category), zap.Error(err))
		return nil, err
	}
	result, err := collect(rows)
	if err != nil {
		r.logger.Error("list rows failed", zap.String("category", f.Category), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.String("category", f.Category), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + Columns("") + ` FROM products WHERE id::text = $1`
	var p domain.Product
	if err := r.pool.QueryRow(ctx, q, id).Scan(ScanDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// Search matches the substring against name, description and category.
// Only visible products are returned.
func (r *postgresRepo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	q := `SELECT ` + Columns("") + `
FROM products
WHERE is_visible
  AND (name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1)
ORDER BY name, id
`
	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.pool.Query(ctx, q, pattern)
	if err != nil {
		r.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	result, err := collect(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("search", zap.String("query", query), zap.Int("count", len(result)))
	return result, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (name, description, category, image_url, insight, rating, reviews_count,
                      in_stock, is_visible, display_order, specifications)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9,
        COALESCE((SELECT max(display_order) + 1 FROM products WHERE category = $3), 0),
        COALESCE($10, '{}'::jsonb))
RETURNING ` + Columns("")
	var res domain.Product
	err := r.pool.QueryRow(ctx, q,
		p.Name, p.Description, p.Category, p.ImageURL, p.Insight, p.Rating, p.ReviewsCount,
		p.InStock, p.IsVisible, p.Specifications,
	).Scan(ScanDest(&res)...)
	if err != nil {
		r.logger.Error("create failed", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Info("created", zap.String("id", res.ID), zap.String("name", res.Name))
	return &res, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
UPDATE products
SET name = $2,
    description = NULLIF($3, ''),
    category = $4,
    image_url = NULLIF($5, ''),
    insight = NULLIF($6, ''),
    rating = $7,
    reviews_count = $8,
    in_stock = $9,
    is_visible = $10,
    specifications = COALESCE($11, '{}'::jsonb),
    updated_at = now()
WHERE id::text = $1
RETURNING ` + Columns("")
	var res domain.Product
	err := r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Description, p.Category, p.ImageURL, p.Insight, p.Rating, p.ReviewsCount,
		p.InStock, p.IsVisible, p.Specifications,
	).Scan(ScanDest(&res)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("update failed", zap.String("id", p.ID), zap.Error(err))
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id::text = $1`, id)
	if err != nil {
		r.logger.Error("delete failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Upsert inserts p, or overwrites the row with the same id. Used by the importer and seed.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (id, name, description, category, image_url, insight, rating, reviews_count,
                      in_stock, is_visible, display_order, specifications)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, NULLIF($3, ''), $4, NULLIF($5, ''),
        NULLIF($6, ''), $7, $8, $9, $10, $11, COALESCE($12, '{}'::jsonb))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    image_url = EXCLUDED.image_url,
    insight = EXCLUDED.insight,
    rating = EXCLUDED.rating,
    reviews_count = EXCLUDED.reviews_count,
    in_stock = EXCLUDED.in_stock,
    is_visible = EXCLUDED.is_visible,
    display_order = EXCLUDED.display_order,
    specifications = EXCLUDED.specifications,
    updated_at = now()
RETURNING ` + Columns("")
	var res domain.Product
	err := r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Description, p.Category, p.ImageURL, p.Insight, p.Rating, p.ReviewsCount,
		p.InStock, p.IsVisible, p.DisplayOrder, p.Specifications,
	).Scan(ScanDest(&res)...)
	if err != nil {
		r.logger.Error("upsert failed", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	if p.ID != "" && res.ID != p.ID {
		return nil, fmt.Errorf("product repo: id mismatch for name=%s import_id=%s stored_id=%s", p.Name, p.ID, res.ID)
	}
	r.logger.Debug("upserted", zap.String("id", res.ID), zap.String("name", res.Name))
	return &res, nil
}

func (r *postgresRepo) ListImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	const q = `
SELECT id::text, product_id::text, image_url, display_order, is_primary, created_at
FROM product_images
WHERE product_id::text = $1
ORDER BY is_primary DESC, display_order, id
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []domain.ProductImage{}
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.DisplayOrder, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// AddImage appends an image after the existing ones. Marking it primary clears
// the flag on the product's other images in the same transaction.
func (r *postgresRepo) AddImage(ctx context.Context, img domain.ProductImage) (*domain.ProductImage, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if img.IsPrimary {
		if _, err := tx.Exec(ctx, `UPDATE product_images SET is_primary = false WHERE product_id::text = $1`, img.ProductID); err != nil {
			return nil, err
		}
	}
	const q = `
INSERT INTO product_images (product_id, image_url, display_order, is_primary)
VALUES ($1::uuid, $2,
        COALESCE((SELECT max(display_order) + 1 FROM product_images WHERE product_id = $1::uuid), 0),
        $3)
RETURNING id::text, product_id::text, image_url, display_order, is_primary, created_at
`
	var res domain.ProductImage
	if err := tx.QueryRow(ctx, q, img.ProductID, img.ImageURL, img.IsPrimary).Scan(
		&res.ID, &res.ProductID, &res.ImageURL, &res.DisplayOrder, &res.IsPrimary, &res.CreatedAt,
	); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) DeleteImage(ctx context.Context, imageID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM product_images WHERE id::text = $1`, imageID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListCollection(ctx context.Context, c Collection) ([]domain.CollectionEntry, error) {
	if c != Featured && c != DutyFree {
		return nil, fmt.Errorf("product repo: unknown collection %q", c)
	}
	q := `SELECT c.id::text, COALESCE(c.display_order, 0), ` + Columns("p") + `
FROM ` + pgx.Identifier{string(c)}.Sanitize() + ` c
JOIN products p ON p.id = c.product_id
WHERE c.is_active AND p.is_visible
ORDER BY COALESCE(c.display_order, 0), c.id
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("list collection failed", zap.String("collection", string(c)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	entries := []domain.CollectionEntry{}
	for rows.Next() {
		var e domain.CollectionEntry
		if err := rows.Scan(ScanDest(&e.Product, &e.ID, &e.DisplayOrder)...); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
