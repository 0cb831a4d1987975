package role

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)
`, userID, role).Scan(&ok)
	return ok, err
}

func (r *postgresRepo) Grant(ctx context.Context, userID, role string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, userID, role)
	return err
}
