package category

import (
	"context"

	"dutyfree/internal/domain"
)

// Repository reads categories. They are not stored separately; every distinct
// category value of a visible product is a category.
type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
}
