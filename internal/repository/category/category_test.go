package category

import (
	"context"
	"testing"

	"dutyfree/internal/testdb"
)

func TestPostgres_ListDerivesFromVisibleProducts(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	testdb.InsertProduct(t, pool, "TV", "Electronics & Appliances", 0)
	testdb.InsertProduct(t, pool, "Radio", "Electronics & Appliances", 1)
	testdb.InsertProduct(t, pool, "Rum", "Spirits", 0)
	if _, err := pool.Exec(ctx, `UPDATE products SET is_visible = false WHERE name = 'Rum'`); err != nil {
		t.Fatalf("hide product: %v", err)
	}

	got, err := NewPostgres(pool).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 category, got %+v", got)
	}
	if got[0].Slug != "electronics-appliances" || got[0].ProductCount != 2 {
		t.Fatalf("unexpected category %+v", got[0])
	}
}
