package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CreateComment inserts a comment on a blog
func (p *Postgres) CreateComment(ctx context.Context, blogID, authorID, body string) (Comment, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO comments (blog_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, blog_id, author_id, body, created_at
	`, blogID, authorID, body)

	var c Comment
	if err := row.Scan(&c.ID, &c.BlogID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
		return Comment{}, err
	}
	return c, nil
}

// ListComments returns a blog's comments oldest first
func (p *Postgres) ListComments(ctx context.Context, blogID string, limit, offset int) ([]Comment, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, blog_id, author_id, body, created_at
		FROM comments
		WHERE blog_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, blogID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.BlogID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetComment fetches a single comment by ID
func (p *Postgres) GetComment(ctx context.Context, id string) (Comment, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, blog_id, author_id, body, created_at
		FROM comments
		WHERE id = $1
	`, id)

	var c Comment
	if err := row.Scan(&c.ID, &c.BlogID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return c, nil
}
