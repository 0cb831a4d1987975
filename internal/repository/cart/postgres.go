package cart

import (
	"context"
	"errors"

	"dutyfree/internal/db"
	"dutyfree/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const q = `
SELECT ci.id::text, ci.quantity,
       p.id::text, p.name, COALESCE(p.description, ''), p.category, COALESCE(p.image_url, ''),
       p.rating::float8, p.reviews_count, p.in_stock
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.created_at, ci.id
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		var inStock bool
		if err := rows.Scan(
			&l.ID, &l.Quantity,
			&l.Product.ID, &l.Product.Name, &l.Product.Description, &l.Product.Category, &l.Product.ImageURL,
			&l.Product.Rating, &l.Product.ReviewsCount, &inStock,
		); err != nil {
			return nil, err
		}
		l.Product.InStock = &inStock
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) AddOrIncrement(ctx context.Context, userID, productID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var lineID string
	var existingQty int
	err = tx.QueryRow(ctx, `
SELECT id::text, quantity
FROM cart_items
WHERE user_id = $1 AND product_id::text = $2
FOR UPDATE
`, userID, productID).Scan(&lineID, &existingQty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if err == nil {
		if _, err := tx.Exec(ctx, `
UPDATE cart_items
SET quantity = $1, updated_at = now()
WHERE id = $2::uuid
`, existingQty+quantity, lineID); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2::uuid, $3)
`, userID, productID, quantity); err != nil {
			if db.IsForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			if db.IsUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) SetQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_items
SET quantity = $1, updated_at = now()
WHERE id::text = $2 AND user_id = $3
`, quantity, lineID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, lineID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id::text = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
