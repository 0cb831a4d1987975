package category

import (
	"context"
	"errors"
	"testing"

	"dutyfree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	categories []domain.Category
	err        error
}

func (s *stubRepo) List(context.Context) ([]domain.Category, error) {
	return s.categories, s.err
}

func TestResolveKnownSlug(t *testing.T) {
	svc := New(&stubRepo{categories: []domain.Category{
		{Name: "Electronics & Appliances", Slug: "electronics-appliances", ProductCount: 3},
	}})

	c, err := svc.Resolve(context.Background(), "Electronics-Appliances")
	require.NoError(t, err)
	assert.Equal(t, "Electronics & Appliances", c.Name)
	assert.Equal(t, 3, c.ProductCount)
}

func TestResolveUnknownSlugTitleCases(t *testing.T) {
	c, err := New(&stubRepo{}).Resolve(context.Background(), "wines-and-spirits")
	require.NoError(t, err)
	assert.Equal(t, "Wines And Spirits", c.Name)
	assert.Zero(t, c.ProductCount)
}

func TestResolveErrors(t *testing.T) {
	_, err := New(&stubRepo{}).Resolve(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	boom := errors.New("db down")
	_, err = New(&stubRepo{err: boom}).Resolve(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}
