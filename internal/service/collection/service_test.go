package collection

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dutyfree/internal/domain"
	"dutyfree/internal/repository/ordered"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory ordered table. failOnSet makes the n-th
// SetDisplayOrder call (1-based) fail.
type memRepo struct {
	items     map[string]*domain.OrderableItem
	seq       int
	setCalls  int
	failOnSet int
	swaps     int
	inserts   int
	lastInput ordered.InsertInput
}

func newMemRepo(items ...domain.OrderableItem) *memRepo {
	r := &memRepo{items: map[string]*domain.OrderableItem{}}
	for i := range items {
		it := items[i]
		r.items[it.ID] = &it
	}
	return r
}

func (r *memRepo) List(_ context.Context, group string) ([]domain.OrderableItem, error) {
	out := []domain.OrderableItem{}
	for _, it := range r.items {
		if group == "" || it.Group == group {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *memRepo) Get(_ context.Context, id string) (*domain.OrderableItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *memRepo) SetDisplayOrder(_ context.Context, id string, order int) error {
	r.setCalls++
	if r.failOnSet == r.setCalls {
		return errors.New("connection reset")
	}
	it, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.DisplayOrder = order
	return nil
}

func (r *memRepo) SetActive(_ context.Context, id string, active bool) error {
	it, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.Active = active
	return nil
}

func (r *memRepo) HasRef(_ context.Context, refID string) (bool, error) {
	for _, it := range r.items {
		if it.RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Insert(_ context.Context, in ordered.InsertInput) (*domain.OrderableItem, error) {
	r.inserts++
	r.lastInput = in
	r.seq++
	it := &domain.OrderableItem{ID: fmt.Sprintf("new-%d", r.seq), RefID: in.RefID, DisplayOrder: in.DisplayOrder, Active: in.Active, Payload: in.Payload}
	r.items[it.ID] = it
	return it, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// swapRepo adds transactional swaps on top of memRepo.
type swapRepo struct {
	*memRepo
	swapErr error
}

func (r *swapRepo) Swap(_ context.Context, a, b domain.OrderableItem) error {
	r.swaps++
	if r.swapErr != nil {
		return r.swapErr
	}
	r.items[a.ID].DisplayOrder = b.DisplayOrder
	r.items[b.ID].DisplayOrder = a.DisplayOrder
	return nil
}

func abc() *memRepo {
	return newMemRepo(
		domain.OrderableItem{ID: "A", DisplayOrder: 0, RefID: "11111111-1111-1111-1111-111111111111"},
		domain.OrderableItem{ID: "B", DisplayOrder: 1, RefID: "22222222-2222-2222-2222-222222222222"},
		domain.OrderableItem{ID: "C", DisplayOrder: 2, RefID: "33333333-3333-3333-3333-333333333333"},
	)
}

func ids(items []domain.OrderableItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func orders(r *memRepo) map[string]int {
	out := map[string]int{}
	for id, it := range r.items {
		out[id] = it.DisplayOrder
	}
	return out
}

func TestMoveUpSwapsWithPrevious(t *testing.T) {
	repo := abc()
	ed := New(repo, ordered.Featured)

	got, err := ed.Move(context.Background(), "B", Up, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A", "C"}, ids(got))
	assert.Equal(t, map[string]int{"A": 1, "B": 0, "C": 2}, orders(repo))
	assert.Equal(t, 2, repo.setCalls)
}

func TestMoveDownSwapsWithNext(t *testing.T) {
	repo := abc()
	got, err := New(repo, ordered.Featured).Move(context.Background(), "A", Down, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, ids(got))
}

func TestMoveAtBoundaryIsNoop(t *testing.T) {
	for _, tc := range []struct {
		id  string
		dir Direction
	}{{"A", Up}, {"C", Down}} {
		repo := abc()
		got, err := New(repo, ordered.Featured).Move(context.Background(), tc.id, tc.dir, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, ids(got))
		assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2}, orders(repo))
		assert.Zero(t, repo.setCalls, "no update may be issued at the boundary")
	}
}

func TestMoveSingleItemIsNoop(t *testing.T) {
	repo := newMemRepo(domain.OrderableItem{ID: "only", DisplayOrder: 7})
	ed := New(repo, ordered.BrandLogos)
	for _, dir := range []Direction{Up, Down} {
		_, err := ed.Move(context.Background(), "only", dir, "")
		require.NoError(t, err)
	}
	assert.Equal(t, 7, repo.items["only"].DisplayOrder)
}

func TestMovePartialFailureLeavesDuplicateOrders(t *testing.T) {
	repo := abc()
	repo.failOnSet = 2

	_, err := New(repo, ordered.Featured).Move(context.Background(), "B", Up, "")

	assert.ErrorIs(t, err, ErrSwapFailed)
	// first update applied, second not: A and B now share order 0
	assert.Equal(t, map[string]int{"A": 0, "B": 0, "C": 2}, orders(repo))
}

func TestMoveAtomicUsesSwapper(t *testing.T) {
	repo := &swapRepo{memRepo: abc()}
	got, err := New(repo, ordered.Featured, WithAtomicSwap(true)).Move(context.Background(), "C", Up, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, ids(got))
	assert.Equal(t, 1, repo.swaps)
	assert.Zero(t, repo.setCalls)
}

func TestMoveAtomicFailureChangesNothing(t *testing.T) {
	repo := &swapRepo{memRepo: abc(), swapErr: errors.New("tx aborted")}
	_, err := New(repo, ordered.Featured, WithAtomicSwap(true)).Move(context.Background(), "B", Down, "")
	assert.ErrorIs(t, err, ErrSwapFailed)
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2}, orders(repo.memRepo))
}

func TestMoveWithoutAtomicIgnoresSwapper(t *testing.T) {
	repo := &swapRepo{memRepo: abc()}
	_, err := New(repo, ordered.Featured).Move(context.Background(), "B", Up, "")
	require.NoError(t, err)
	assert.Zero(t, repo.swaps)
	assert.Equal(t, 2, repo.setCalls)
}

func TestMoveWithinItemGroup(t *testing.T) {
	repo := newMemRepo(
		domain.OrderableItem{ID: "gin", Group: "Spirits", DisplayOrder: 0},
		domain.OrderableItem{ID: "serum", Group: "Beauty", DisplayOrder: 1},
		domain.OrderableItem{ID: "rum", Group: "Spirits", DisplayOrder: 5},
	)
	got, err := New(repo, ordered.Catalog).Move(context.Background(), "rum", Up, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"rum", "gin"}, ids(got))
	assert.Equal(t, 1, repo.items["serum"].DisplayOrder)
	assert.Equal(t, 5, repo.items["gin"].DisplayOrder)
	assert.Equal(t, 0, repo.items["rum"].DisplayOrder)
}

func TestMoveTiesBrokenByID(t *testing.T) {
	repo := newMemRepo(
		domain.OrderableItem{ID: "b", DisplayOrder: 0},
		domain.OrderableItem{ID: "a", DisplayOrder: 0},
	)
	items, err := New(repo, ordered.BrandLogos).List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(items))
}

func TestMoveUnknownItem(t *testing.T) {
	_, err := New(abc(), ordered.Featured).Move(context.Background(), "Z", Up, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoveInvalidDirection(t *testing.T) {
	_, err := New(abc(), ordered.Featured).Move(context.Background(), "A", Direction("left"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" UP ")
	require.NoError(t, err)
	assert.Equal(t, Up, d)
	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestToggleActiveFlipsCurrent(t *testing.T) {
	repo := abc()
	repo.items["A"].Active = true
	ed := New(repo, ordered.Featured)

	require.NoError(t, ed.ToggleActive(context.Background(), "A", true))
	assert.False(t, repo.items["A"].Active)
	require.NoError(t, ed.ToggleActive(context.Background(), "A", false))
	assert.True(t, repo.items["A"].Active)
}

func TestAddRejectsDuplicateRef(t *testing.T) {
	repo := abc()
	before := orders(repo)

	_, err := New(repo, ordered.Featured).Add(context.Background(), AddInput{RefID: "22222222-2222-2222-2222-222222222222"})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, "product is already in this collection", err.Error())
	assert.Zero(t, repo.inserts)
	assert.Equal(t, before, orders(repo))
}

func TestAddAppendsAfterMax(t *testing.T) {
	repo := newMemRepo(
		domain.OrderableItem{ID: "A", DisplayOrder: 3},
		domain.OrderableItem{ID: "B", DisplayOrder: 9},
	)
	item, err := New(repo, ordered.DutyFree).Add(context.Background(), AddInput{RefID: "44444444-4444-4444-4444-444444444444"})
	require.NoError(t, err)
	assert.Equal(t, 10, item.DisplayOrder)
	assert.True(t, item.Active)
}

func TestAddToEmptyCollectionStartsAtZero(t *testing.T) {
	repo := newMemRepo()
	item, err := New(repo, ordered.Featured).Add(context.Background(), AddInput{RefID: "44444444-4444-4444-4444-444444444444"})
	require.NoError(t, err)
	assert.Equal(t, 0, item.DisplayOrder)
}

func TestAddValidatesInput(t *testing.T) {
	ctx := context.Background()
	_, err := New(newMemRepo(), ordered.Featured).Add(ctx, AddInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(newMemRepo(), ordered.Featured).Add(ctx, AddInput{RefID: "nope"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(newMemRepo(), ordered.BrandLogos).Add(ctx, AddInput{Payload: map[string]interface{}{"name": "Dior"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(newMemRepo(), ordered.Catalog).Add(ctx, AddInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddBrandLogo(t *testing.T) {
	repo := newMemRepo()
	item, err := New(repo, ordered.BrandLogos).Add(context.Background(), AddInput{
		Payload:  map[string]interface{}{"name": "Dior", "image_url": "dior.png"},
		Inactive: true,
	})
	require.NoError(t, err)
	assert.False(t, item.Active)
	assert.Equal(t, "Dior", repo.lastInput.Payload["name"])
}

func TestNextDisplayOrder(t *testing.T) {
	assert.Equal(t, 0, NextDisplayOrder(nil))
	assert.Equal(t, 0, NextDisplayOrder([]domain.OrderableItem{{DisplayOrder: -5}}))
	assert.Equal(t, 4, NextDisplayOrder([]domain.OrderableItem{{DisplayOrder: 3}, {DisplayOrder: 1}}))
}

func TestRemove(t *testing.T) {
	repo := abc()
	ed := New(repo, ordered.Featured)
	require.NoError(t, ed.Remove(context.Background(), "A"))
	assert.ErrorIs(t, ed.Remove(context.Background(), "A"), domain.ErrNotFound)
}

func TestActiveFiltersAndSorts(t *testing.T) {
	repo := newMemRepo(
		domain.OrderableItem{ID: "x", DisplayOrder: 2, Active: true},
		domain.OrderableItem{ID: "y", DisplayOrder: 1, Active: false},
		domain.OrderableItem{ID: "z", DisplayOrder: 0, Active: true},
	)
	items, err := New(repo, ordered.BrandLogos).Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "x"}, ids(items))
}
