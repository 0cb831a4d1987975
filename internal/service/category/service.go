package category

import (
	"context"
	"strings"

	"dutyfree/internal/domain"
)

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type Service struct {
	repo categoryRepo
}

func New(repo categoryRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

// Resolve maps a URL slug to its category. Known categories match by slug,
// so names containing punctuation ("Electronics & Appliances") resolve too.
// Unknown slugs resolve to the title-cased words of the slug with no products.
func (s *Service) Resolve(ctx context.Context, slug string) (domain.Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return domain.Category{}, domain.Validation("category slug required")
	}
	categories, err := s.repo.List(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	for _, c := range categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.Category{Name: domain.TitleFromSlug(slug), Slug: slug}, nil
}
