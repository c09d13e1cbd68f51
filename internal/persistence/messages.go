package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deskfolio/deskfolio/internal/contact"
)

// MessageRepo archives contact form submissions. It implements
// contact.Inbox.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a message repository over db.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ contact.Inbox = (*MessageRepo)(nil)

// Record stores rec.
func (r *MessageRepo) Record(ctx context.Context, rec contact.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, message, newsletter, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Email, rec.Message, rec.Newsletter, rec.Status, rec.Error, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record message %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the most recent messages, newest first.
func (r *MessageRepo) List(ctx context.Context, limit int) ([]contact.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, message, newsletter, status, error, created_at
		FROM messages ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []contact.Record
	for rows.Next() {
		var rec contact.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Message, &rec.Newsletter,
			&rec.Status, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
