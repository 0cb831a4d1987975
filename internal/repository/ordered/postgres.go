package ordered

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dutyfree/internal/db"
	"dutyfree/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	table  Table
	logger *zap.Logger
	// precomputed SQL fragments
	name   string
	active string
	sel    string
}

// NewPostgres returns a Repository over table. The result also implements Swapper.
func NewPostgres(pool *pgxpool.Pool, table Table, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &postgresRepo{
		pool:   pool,
		table:  table,
		logger: logger.Named("ordered_repo").With(zap.String("table", table.Name)),
		name:   ident(table.Name),
		active: ident(table.ActiveColumn),
	}
	r.sel = r.selectList()
	return r
}

func ident(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

func (r *postgresRepo) selectList() string {
	cols := []string{"id::text", "COALESCE(display_order, 0)", r.active}
	if r.table.GroupColumn != "" {
		cols = append(cols, ident(r.table.GroupColumn)+"::text")
	} else {
		cols = append(cols, "''")
	}
	if r.table.RefColumn != "" {
		cols = append(cols, ident(r.table.RefColumn)+"::text")
	} else {
		cols = append(cols, "''")
	}
	if len(r.table.PayloadColumns) > 0 {
		pairs := make([]string, 0, len(r.table.PayloadColumns)*2)
		for _, c := range r.table.PayloadColumns {
			pairs = append(pairs, "'"+c+"'", ident(c))
		}
		cols = append(cols, "jsonb_build_object("+strings.Join(pairs, ", ")+")")
	} else {
		cols = append(cols, "NULL::jsonb")
	}
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

func scanItem(row pgx.Row, it *domain.OrderableItem) error {
	return row.Scan(&it.ID, &it.DisplayOrder, &it.Active, &it.Group, &it.RefID, &it.Payload, &it.CreatedAt, &it.UpdatedAt)
}

func (r *postgresRepo) List(ctx context.Context, group string) ([]domain.OrderableItem, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if r.table.GroupColumn != "" && group != "" {
		q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY COALESCE(display_order, 0), id`,
			r.sel, r.name, ident(r.table.GroupColumn))
		rows, err = r.pool.Query(ctx, q, group)
	} else {
		q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY COALESCE(display_order, 0), id`, r.sel, r.name)
		rows, err = r.pool.Query(ctx, q)
	}
	if err != nil {
		r.logger.Error("list failed", zap.String("group", group), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderableItem{}
	for rows.Next() {
		var it domain.OrderableItem
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("list", zap.String("group", group), zap.Int("count", len(items)))
	return items, nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.OrderableItem, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id::text = $1`, r.sel, r.name)
	var it domain.OrderableItem
	if err := scanItem(r.pool.QueryRow(ctx, q, id), &it); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// queryer is satisfied by both the pool and a transaction.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *postgresRepo) setOrder(ctx context.Context, q queryer, id string, order int) error {
	stmt := fmt.Sprintf(`UPDATE %s SET display_order = $1, updated_at = now() WHERE id::text = $2`, r.name)
	cmd, err := q.Exec(ctx, stmt, order, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetDisplayOrder(ctx context.Context, id string, order int) error {
	if err := r.setOrder(ctx, r.pool, id, order); err != nil {
		r.logger.Error("set display order failed", zap.String("id", id), zap.Int("order", order), zap.Error(err))
		return err
	}
	return nil
}

// Swap writes b's order to a and a's order to b in one transaction.
func (r *postgresRepo) Swap(ctx context.Context, a, b domain.OrderableItem) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.setOrder(ctx, tx, a.ID, b.DisplayOrder); err != nil {
		return err
	}
	if err := r.setOrder(ctx, tx, b.ID, a.DisplayOrder); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) error {
	stmt := fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = now() WHERE id::text = $2`, r.name, r.active)
	cmd, err := r.pool.Exec(ctx, stmt, active, id)
	if err != nil {
		r.logger.Error("set active failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) HasRef(ctx context.Context, refID string) (bool, error) {
	if r.table.RefColumn == "" {
		return false, nil
	}
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s::text = $1)`, r.name, ident(r.table.RefColumn))
	var exists bool
	if err := r.pool.QueryRow(ctx, q, refID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) Insert(ctx context.Context, in InsertInput) (*domain.OrderableItem, error) {
	cols := []string{"display_order", r.active}
	args := []any{in.DisplayOrder, in.Active}
	if r.table.RefColumn != "" {
		cols = append(cols, ident(r.table.RefColumn))
		args = append(args, in.RefID)
	}
	for _, c := range r.table.PayloadColumns {
		if v, ok := in.Payload[c]; ok {
			cols = append(cols, ident(c))
			args = append(args, v)
		}
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	if r.table.RefColumn != "" {
		placeholders[2] += "::uuid"
	}
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.name, strings.Join(cols, ", "), strings.Join(placeholders, ", "), r.sel)

	var it domain.OrderableItem
	if err := scanItem(r.pool.QueryRow(ctx, q, args...), &it); err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, domain.ErrAlreadyExists
		case db.IsForeignKeyViolation(err):
			return nil, domain.ErrNotFound
		}
		r.logger.Error("insert failed", zap.String("ref", in.RefID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("inserted", zap.String("id", it.ID), zap.Int("display_order", it.DisplayOrder))
	return &it, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id::text = $1`, r.name), id)
	if err != nil {
		r.logger.Error("delete failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
