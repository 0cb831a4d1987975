package seed

import (
	"context"
	"testing"

	"dutyfree/internal/testdb"
)

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)

	for i := 0; i < 2; i++ {
		if err := Apply(ctx, pool, "admin-1"); err != nil {
			t.Fatalf("Apply #%d: %v", i+1, err)
		}
	}

	counts := map[string]int{
		"products":           len(products),
		"featured_products":  len(featured),
		"duty_free_products": len(dutyFree),
		"brand_logos":        len(logos),
		"user_roles":         1,
		"website_content":    1,
	}
	for table, want := range counts {
		var got int
		if err := pool.QueryRow(ctx, `SELECT count(*) FROM `+table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Fatalf("expected %d rows in %s, got %d", want, table, got)
		}
	}
}
