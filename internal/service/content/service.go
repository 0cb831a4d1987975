package content

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"dutyfree/internal/domain"
)

// HeroSection is a predefined block holding a hero banner image.
type HeroSection struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var HeroSections = []HeroSection{
	{Key: "hero_image_desktop", Label: "Hero Image (Desktop)"},
	{Key: "hero_image_mobile", Label: "Hero Image (Mobile)"},
}

// legacyHeroSection is read when a device specific banner is missing.
const legacyHeroSection = "hero_image"

var sectionPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type contentRepo interface {
	List(ctx context.Context) ([]domain.WebsiteContent, error)
	GetBySection(ctx context.Context, section string) (*domain.WebsiteContent, error)
	Insert(ctx context.Context, c domain.WebsiteContent) (*domain.WebsiteContent, error)
	Upsert(ctx context.Context, c domain.WebsiteContent) (*domain.WebsiteContent, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo contentRepo
}

func New(repo contentRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.WebsiteContent, error) {
	return s.repo.List(ctx)
}

// Save creates or replaces the block for section.
func (s *Service) Save(ctx context.Context, section string, c domain.WebsiteContent) (*domain.WebsiteContent, error) {
	section = strings.ToLower(strings.TrimSpace(section))
	if !sectionPattern.MatchString(section) {
		return nil, domain.Validation("section must be lowercase letters, digits, '_' or '-'")
	}
	c.Section = section
	c.Title = strings.TrimSpace(c.Title)
	c.ImageURL = strings.TrimSpace(c.ImageURL)
	return s.repo.Upsert(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CreateHeroSection adds an empty predefined hero block.
func (s *Service) CreateHeroSection(ctx context.Context, key string) (*domain.WebsiteContent, error) {
	for _, h := range HeroSections {
		if h.Key != key {
			continue
		}
		return s.repo.Insert(ctx, domain.WebsiteContent{
			Section: h.Key,
			Title:   h.Label,
			Content: "Upload your " + strings.ToLower(h.Label) + " here",
		})
	}
	return nil, domain.Validation("unknown hero section " + key)
}

// HeroImages are the banner URLs shown on the home page.
type HeroImages struct {
	Desktop string `json:"desktop"`
	Mobile  string `json:"mobile"`
}

// Hero resolves the desktop and mobile banners. Either falls back to the
// legacy single banner, and mobile falls back to desktop.
func (s *Service) Hero(ctx context.Context) (HeroImages, error) {
	lookup := func(section string) (string, error) {
		c, err := s.repo.GetBySection(ctx, section)
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return c.ImageURL, nil
	}

	var h HeroImages
	var err error
	if h.Desktop, err = lookup(HeroSections[0].Key); err != nil {
		return HeroImages{}, err
	}
	if h.Mobile, err = lookup(HeroSections[1].Key); err != nil {
		return HeroImages{}, err
	}
	if h.Desktop == "" || h.Mobile == "" {
		legacy, err := lookup(legacyHeroSection)
		if err != nil {
			return HeroImages{}, err
		}
		if h.Desktop == "" {
			h.Desktop = legacy
		}
		if h.Mobile == "" {
			h.Mobile = legacy
		}
	}
	if h.Mobile == "" {
		h.Mobile = h.Desktop
	}
	return h, nil
}
