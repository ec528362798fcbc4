package store

import "context"

// CreateNotification persists a notification for a user
func (p *Postgres) CreateNotification(ctx context.Context, userID, kind, message, blogID string) (Notification, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, kind, message, blog_id)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, user_id, kind, message, COALESCE(blog_id::text, ''), seen, created_at
	`, userID, kind, message, blogID)

	var n Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.BlogID, &n.Seen, &n.CreatedAt); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// ListNotifications returns a user's notifications newest first
func (p *Postgres) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, kind, message, COALESCE(blog_id::text, ''), seen, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.BlogID, &n.Seen, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationsSeen flags all of a user's notifications as seen
func (p *Postgres) MarkNotificationsSeen(ctx context.Context, userID string) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE notifications SET seen = TRUE WHERE user_id = $1 AND NOT seen
	`, userID)
	return err
}
