package content

import (
	"context"

	"dutyfree/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.WebsiteContent, error)
	GetBySection(ctx context.Context, section string) (*domain.WebsiteContent, error)
	// Insert fails with ErrAlreadyExists when the section is taken.
	Insert(ctx context.Context, c domain.WebsiteContent) (*domain.WebsiteContent, error)
	// Upsert creates the section or replaces its fields.
	Upsert(ctx context.Context, c domain.WebsiteContent) (*domain.WebsiteContent, error)
	Delete(ctx context.Context, id string) error
}
