package order

import (
	"context"
	"errors"

	"dutyfree/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
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
	return &postgresRepo{pool: pool, logger: logger.Named("order_repo")}
}

const orderColumns = `
id::text, COALESCE(user_id, ''), customer_email, COALESCE(guest_email, ''),
passport_number, arrival_flight_number, surname, other_names, contact_number, arrival_date, arrival_time,
subtotal, tax, total, status, created_at, updated_at`

const itemColumns = `
id::text, order_id::text, COALESCE(product_id::text, ''), quantity,
product_name, COALESCE(product_category, ''), COALESCE(product_description, ''), COALESCE(product_image_url, ''),
product_in_stock, product_price, product_rating::float8, product_reviews_count`

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID, &o.UserID, &o.CustomerEmail, &o.GuestEmail,
		&o.PassportNumber, &o.ArrivalFlightNumber, &o.Surname, &o.OtherNames, &o.ContactNumber,
		&o.ArrivalDate, &o.ArrivalTime,
		&o.Subtotal, &o.Tax, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
}

func scanItem(row pgx.Row, it *domain.OrderItem) error {
	return row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
		&it.ProductName, &it.ProductCategory, &it.ProductDescription, &it.ProductImageURL,
		&it.ProductInStock, &it.ProductPrice, &it.ProductRating, &it.ProductReviewsCount,
	)
}

func (r *postgresRepo) Place(ctx context.Context, o domain.Order, clearCartOf string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	var placed domain.Order
	err = scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (
    user_id, customer_email, guest_email,
    passport_number, arrival_flight_number, surname, other_names, contact_number, arrival_date, arrival_time,
    subtotal, tax, total, status)
VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING `+orderColumns,
		o.UserID, o.CustomerEmail, o.GuestEmail,
		o.PassportNumber, o.ArrivalFlightNumber, o.Surname, o.OtherNames, o.ContactNumber, o.ArrivalDate, o.ArrivalTime,
		o.Subtotal, o.Tax, o.Total, o.Status,
	), &placed)
	if err != nil {
		r.logger.Error("insert order failed", zap.Error(err))
		return nil, err
	}

	placed.Items = make([]domain.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		var productID *string
		if _, perr := uuid.Parse(it.ProductID); perr == nil {
			productID = &it.ProductID
		}
		var saved domain.OrderItem
		err := scanItem(tx.QueryRow(ctx, `
INSERT INTO order_items (
    order_id, product_id, quantity, product_name, product_category, product_description,
    product_image_url, product_in_stock, product_price, product_rating, product_reviews_count)
VALUES ($1::uuid, $2::uuid, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11)
RETURNING `+itemColumns,
			placed.ID, productID, it.Quantity, it.ProductName, it.ProductCategory, it.ProductDescription,
			it.ProductImageURL, it.ProductInStock, it.ProductPrice, it.ProductRating, it.ProductReviewsCount,
		), &saved)
		if err != nil {
			r.logger.Error("insert order item failed", zap.String("order_id", placed.ID), zap.Error(err))
			return nil, err
		}
		placed.Items = append(placed.Items, saved)
	}

	if clearCartOf != "" {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, clearCartOf); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("order placed", zap.String("order_id", placed.ID), zap.Int("items", len(placed.Items)))
	return &placed, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var o domain.Order
	err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1::uuid`, id), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) ListForCustomer(ctx context.Context, userID, email string) ([]domain.Order, error) {
	const where = `
WHERE ($1 <> '' AND user_id = $1)
   OR ($2 <> '' AND lower(guest_email) = lower($2))
ORDER BY created_at DESC, id`
	return r.list(ctx, where, userID, email)
}

func (r *postgresRepo) ListAll(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	const where = `
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC, id`
	return r.list(ctx, where, string(status))
}

func (r *postgresRepo) list(ctx context.Context, where string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	r.logger.Debug("listed orders", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+itemColumns+`
FROM order_items
WHERE order_id::text = ANY($1)
ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := scanItem(rows, &it); err != nil {
			return err
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, from ...domain.OrderStatus) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1::uuid
  AND (cardinality($3::text[]) = 0 OR status = ANY($3::text[]))
`, id, string(status), allowed)
	if err != nil {
		r.logger.Error("update order status failed", zap.String("order_id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET total = $2, updated_at = now()
WHERE id = $1::uuid
`, id, total)
	if err != nil {
		r.logger.Error("update order total failed", zap.String("order_id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
