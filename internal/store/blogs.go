package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CreateBlog inserts a new blog post for a cohort, owned by authorID
func (p *Postgres) CreateBlog(ctx context.Context, title, body, cohort, authorID string) (Blog, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO blogs (title, body, cohort, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, body, cohort, author_id, created_at, updated_at
	`, title, body, cohort, authorID)
	return scanBlog(row)
}

// ListBlogs returns blogs sorted by last update, newest first
func (p *Postgres) ListBlogs(ctx context.Context, limit, offset int) ([]Blog, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, title, body, cohort, author_id, created_at, updated_at
		FROM blogs
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBlog fetches a blog by ID
func (p *Postgres) GetBlog(ctx context.Context, id string) (Blog, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, title, body, cohort, author_id, created_at, updated_at
		FROM blogs
		WHERE id = $1
	`, id)
	b, err := scanBlog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Blog{}, ErrNotFound
	}
	return b, err
}

// UpdateBlog replaces title/body and bumps the timestamp
func (p *Postgres) UpdateBlog(ctx context.Context, id, title, body string) (Blog, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE blogs
		SET title = $2, body = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, body, cohort, author_id, created_at, updated_at
	`, id, title, body)
	b, err := scanBlog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Blog{}, ErrNotFound
	}
	if err == nil {
		p.log.Info("blog.updated", "id", b.ID)
	}
	return b, err
}

func scanBlog(row pgx.Row) (Blog, error) {
	var b Blog
	err := row.Scan(&b.ID, &b.Title, &b.Body, &b.Cohort, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
