package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dutyfree/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	AddImage(ctx context.Context, img domain.ProductImage) (*domain.ProductImage, error)
}

// CSVImporter reads catalog CSV files and inserts/updates products.
//
// Expected headers: id, name, description, category, image_url, insight,
// rating, reviews_count, in_stock, is_visible, display_order, gallery_image_url.
// Rows without a name continue the previous product and only contribute
// gallery images.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger.Named("importer"),
	}
}

type csvRow struct {
	line    int
	product domain.Product
	gallery []string
}

// Run parses CSV rows and upserts one product per named row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing name column")
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if row == nil {
			continue
		}
		row.line = line

		if row.product.Name != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (gallery images) belong to the current product.
		if current != nil {
			current.gallery = append(current.gallery, row.gallery...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p := row.product
	if p.Category == "" {
		return fmt.Errorf("row %d: category required for %q", row.line, p.Name)
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return fmt.Errorf("row %d: invalid id for %q: %s", row.line, p.Name, p.ID)
		}
	}

	saved, err := i.productRepo.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	for n, url := range row.gallery {
		img := domain.ProductImage{
			ProductID:    saved.ID,
			ImageURL:     url,
			DisplayOrder: n,
			IsPrimary:    n == 0,
		}
		if _, err := i.productRepo.AddImage(ctx, img); err != nil {
			return fmt.Errorf("add image to %q: %w", p.Name, err)
		}
	}
	i.logger.Debug("imported product", zap.String("id", saved.ID), zap.Int("images", len(row.gallery)))
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	name := pick(record, index, "name")
	gallery := pick(record, index, "gallery_image_url")
	if name == "" && gallery == "" {
		return nil, nil
	}

	row := &csvRow{}
	if gallery != "" {
		row.gallery = []string{gallery}
	}
	if name == "" {
		return row, nil
	}

	p := domain.Product{
		ID:          pick(record, index, "id"),
		Name:        name,
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		ImageURL:    pick(record, index, "image_url"),
		Insight:     pick(record, index, "insight"),
		InStock:     true,
		IsVisible:   true,
	}
	if v := pick(record, index, "rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 || r > 5 {
			return nil, fmt.Errorf("rating must be between 0 and 5, got %q", v)
		}
		p.Rating = &r
	}
	if v := pick(record, index, "reviews_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid reviews_count %q", v)
		}
		p.ReviewsCount = &n
	}
	var err error
	if p.InStock, err = pickBool(record, index, "in_stock", true); err != nil {
		return nil, err
	}
	if p.IsVisible, err = pickBool(record, index, "is_visible", true); err != nil {
		return nil, err
	}
	if v := pick(record, index, "display_order"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid display_order %q", v)
		}
		p.DisplayOrder = n
	}
	row.product = p
	return row, nil
}

func pickBool(record []string, index map[string]int, key string, def bool) (bool, error) {
	v := pick(record, index, key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
