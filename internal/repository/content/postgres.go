package content

import (
	"context"
	"errors"

	"dutyfree/internal/db"
	"dutyfree/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const columns = `id::text, section, COALESCE(title, ''), COALESCE(content, ''), COALESCE(image_url, ''), metadata, created_at, updated_at`

func scan(row pgx.Row) (*domain.WebsiteContent, error) {
	var c domain.WebsiteContent
	if err := row.Scan(&c.ID, &c.Section, &c.Title, &c.Content, &c.ImageURL, &c.Metadata, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func metadataOf(c domain.WebsiteContent) map[string]interface{} {
	if c.Metadata == nil {
		return map[string]interface{}{}
	}
	return c.Metadata
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.WebsiteContent, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM website_content ORDER BY section`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.WebsiteContent{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetBySection(ctx context.Context, section string) (*domain.WebsiteContent, error) {
	c, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM website_content WHERE section = $1`, section))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) Insert(ctx context.Context, in domain.WebsiteContent) (*domain.WebsiteContent, error) {
	c, err := scan(r.pool.QueryRow(ctx, `
INSERT INTO website_content (section, title, content, image_url, metadata)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
RETURNING `+columns,
		in.Section, in.Title, in.Content, in.ImageURL, metadataOf(in)))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, in domain.WebsiteContent) (*domain.WebsiteContent, error) {
	return scan(r.pool.QueryRow(ctx, `
INSERT INTO website_content (section, title, content, image_url, metadata)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
ON CONFLICT (section) DO UPDATE
SET title = EXCLUDED.title,
    content = EXCLUDED.content,
    image_url = EXCLUDED.image_url,
    metadata = EXCLUDED.metadata,
    updated_at = now()
RETURNING `+columns,
		in.Section, in.Title, in.Content, in.ImageURL, metadataOf(in)))
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM website_content WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
