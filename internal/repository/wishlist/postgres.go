package wishlist

import (
	"context"

	"dutyfree/internal/db"
	"dutyfree/internal/domain"
	"dutyfree/internal/repository/product"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT w.id::text, w.user_id, w.created_at, `+product.Columns("p")+`
FROM wishlist w
JOIN products p ON p.id = w.product_id
WHERE w.user_id = $1
ORDER BY w.created_at DESC, w.id
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.WishlistItem{}
	for rows.Next() {
		var it domain.WishlistItem
		if err := rows.Scan(product.ScanDest(&it.Product, &it.ID, &it.UserID, &it.CreatedAt)...); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) Add(ctx context.Context, userID, productID string) error {
	if _, err := uuid.Parse(productID); err != nil {
		return domain.ErrNotFound
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO wishlist (user_id, product_id)
VALUES ($1, $2::uuid)
ON CONFLICT (user_id, product_id) DO NOTHING
`, userID, productID)
	if db.IsForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

func (r *postgresRepo) Remove(ctx context.Context, userID, productID string) error {
	if _, err := uuid.Parse(productID); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2::uuid`, userID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
