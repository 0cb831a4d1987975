// Package testdb provides a migrated Postgres pool for repository tests.
// TEST_DB_DSN points the tests at an existing database; otherwise a
// postgres:16-alpine container is started once per test binary.
package testdb

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"dutyfree/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once   sync.Once
	dsn    string
	dsnErr error
)

func containerDSN(ctx context.Context) (string, error) {
	once.Do(func() {
		if v := os.Getenv("TEST_DB_DSN"); v != "" {
			dsn = v
			return
		}
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("dutyfree_test"),
			tcpostgres.WithUsername("dutyfree"),
			tcpostgres.WithPassword("dutyfree"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			dsnErr = err
			return
		}
		dsn, dsnErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	return dsn, dsnErr
}

// Pool returns a pool on a freshly truncated, migrated database.
// The test is skipped under -short or when no database can be started.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	ctx := context.Background()
	conn, err := containerDSN(ctx)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `
TRUNCATE order_items, orders, cart_items, wishlist, featured_products, duty_free_products,
         product_images, brand_logos, website_content, user_roles, products
RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

// InsertProduct adds a visible product and returns its id.
func InsertProduct(t *testing.T, pool *pgxpool.Pool, name, category string, displayOrder int) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
INSERT INTO products (name, description, category, image_url, display_order)
VALUES ($1, $1 || ' description', $2, 'https://img.example/' || $1, $3)
RETURNING id::text`, name, category, displayOrder).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}
