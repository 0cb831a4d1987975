package cart

import (
	"context"
	"errors"
	"testing"

	"dutyfree/internal/domain"
	"dutyfree/internal/testdb"
)

func TestPostgres_AddMergesByProduct(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	pid := testdb.InsertProduct(t, pool, "Cognac", "Spirits", 0)
	repo := NewPostgres(pool)

	if err := repo.AddOrIncrement(ctx, "user-1", pid, 1); err != nil {
		t.Fatalf("AddOrIncrement: %v", err)
	}
	if err := repo.AddOrIncrement(ctx, "user-1", pid, 2); err != nil {
		t.Fatalf("AddOrIncrement: %v", err)
	}

	lines, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line with quantity 3, got %+v", lines)
	}
	if lines[0].Product.Name != "Cognac" || lines[0].Product.InStock == nil || !*lines[0].Product.InStock {
		t.Fatalf("product not joined: %+v", lines[0].Product)
	}

	other, err := repo.ListByUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty cart for other user, got %+v", other)
	}
}

func TestPostgres_SetQuantityAndDeleteAreUserScoped(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	pid := testdb.InsertProduct(t, pool, "Cognac", "Spirits", 0)
	repo := NewPostgres(pool)

	if err := repo.AddOrIncrement(ctx, "user-1", pid, 1); err != nil {
		t.Fatalf("AddOrIncrement: %v", err)
	}
	lines, _ := repo.ListByUser(ctx, "user-1")
	lineID := lines[0].ID

	if err := repo.SetQuantity(ctx, "user-2", lineID, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign line, got %v", err)
	}
	if err := repo.SetQuantity(ctx, "user-1", lineID, 5); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if err := repo.Delete(ctx, "user-2", lineID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := repo.Delete(ctx, "user-1", lineID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestPostgres_AddUnknownProduct(t *testing.T) {
	pool := testdb.Pool(t)
	err := NewPostgres(pool).AddOrIncrement(context.Background(), "user-1", "00000000-0000-0000-0000-000000000000", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_Clear(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	a := testdb.InsertProduct(t, pool, "A", "X", 0)
	b := testdb.InsertProduct(t, pool, "B", "X", 1)
	repo := NewPostgres(pool)
	_ = repo.AddOrIncrement(ctx, "user-1", a, 1)
	_ = repo.AddOrIncrement(ctx, "user-1", b, 1)
	_ = repo.AddOrIncrement(ctx, "user-2", a, 1)

	if err := repo.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	mine, _ := repo.ListByUser(ctx, "user-1")
	theirs, _ := repo.ListByUser(ctx, "user-2")
	if len(mine) != 0 || len(theirs) != 1 {
		t.Fatalf("clear leaked across users: mine=%d theirs=%d", len(mine), len(theirs))
	}
}
