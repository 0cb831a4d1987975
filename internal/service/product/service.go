package product

import (
	"context"
	"strings"

	"dutyfree/internal/domain"
	productrepo "dutyfree/internal/repository/product"
)

type Service struct {
	repo productRepo
}

type productRepo interface {
	List(ctx context.Context, f productrepo.ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	ListCollection(ctx context.Context, c productrepo.Collection) ([]domain.CollectionEntry, error)
	ListImages(ctx context.Context, productID string) ([]domain.ProductImage, error)
	AddImage(ctx context.Context, img domain.ProductImage) (*domain.ProductImage, error)
	DeleteImage(ctx context.Context, imageID string) error
}

func New(repo productRepo) *Service {
	return &Service{repo: repo}
}

// List returns visible products, optionally of one category.
func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.ListFilter{Category: strings.TrimSpace(category), VisibleOnly: true})
}

// ListAll includes hidden products. CMS only.
func (s *Service) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.ListFilter{})
}

// Get returns a visible product with its gallery.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsVisible {
		return nil, domain.ErrNotFound
	}
	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

// Snapshot returns the cart copy of a visible product.
func (s *Service) Snapshot(ctx context.Context, id string) (domain.ProductSnapshot, error) {
	if strings.TrimSpace(id) == "" {
		return domain.ProductSnapshot{}, domain.Validation("product_id required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ProductSnapshot{}, err
	}
	if !p.IsVisible {
		return domain.ProductSnapshot{}, domain.ErrNotFound
	}
	return p.Snapshot(), nil
}

// Search matches visible products by name, description or category. A blank query matches nothing.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}, nil
	}
	return s.repo.Search(ctx, query)
}

func (s *Service) Featured(ctx context.Context) ([]domain.CollectionEntry, error) {
	return s.repo.ListCollection(ctx, productrepo.Featured)
}

func (s *Service) DutyFree(ctx context.Context) ([]domain.CollectionEntry, error) {
	return s.repo.ListCollection(ctx, productrepo.DutyFree)
}

type Input struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Category       string                 `json:"category"`
	ImageURL       string                 `json:"image_url"`
	Insight        string                 `json:"insight"`
	Rating         *float64               `json:"rating"`
	ReviewsCount   *int                   `json:"reviews_count"`
	InStock        *bool                  `json:"in_stock"`
	IsVisible      *bool                  `json:"is_visible"`
	Specifications map[string]interface{} `json:"specifications"`
}

func (in Input) toProduct() (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, domain.Validation("name required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return domain.Product{}, domain.Validation("category required")
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return domain.Product{}, domain.Validation("rating must be between 0 and 5")
	}
	if in.ReviewsCount != nil && *in.ReviewsCount < 0 {
		return domain.Product{}, domain.Validation("reviews_count cannot be negative")
	}
	p := domain.Product{
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		Category:       category,
		ImageURL:       strings.TrimSpace(in.ImageURL),
		Insight:        strings.TrimSpace(in.Insight),
		Rating:         in.Rating,
		ReviewsCount:   in.ReviewsCount,
		InStock:        true,
		IsVisible:      true,
		Specifications: in.Specifications,
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if in.IsVisible != nil {
		p.IsVisible = *in.IsVisible
	}
	return p, nil
}

// Create appends the product at the end of its category.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddImage(ctx context.Context, productID, imageURL string, primary bool) (*domain.ProductImage, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, domain.Validation("image_url required")
	}
	return s.repo.AddImage(ctx, domain.ProductImage{ProductID: productID, ImageURL: imageURL, IsPrimary: primary})
}

func (s *Service) DeleteImage(ctx context.Context, imageID string) error {
	return s.repo.DeleteImage(ctx, imageID)
}
