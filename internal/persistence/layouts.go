package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deskfolio/deskfolio/internal/wm"
)

// LayoutRepo stores one window layout per profile.
type LayoutRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewLayoutRepo returns a layout repository over db.
func NewLayoutRepo(db *sql.DB) *LayoutRepo {
	return &LayoutRepo{db: db, now: time.Now}
}

// Save replaces the layout of profile.
func (r *LayoutRepo) Save(ctx context.Context, profile string, windows []wm.Persisted) error {
	if windows == nil {
		windows = []wm.Persisted{}
	}
	data, err := json.Marshal(windows)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO layouts (profile, windows, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET windows = excluded.windows, updated_at = excluded.updated_at`,
		profile, string(data), r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save layout %q: %w", profile, err)
	}
	return nil
}

// Load returns the saved layout of profile, or nil if none was saved.
func (r *LayoutRepo) Load(ctx context.Context, profile string) ([]wm.Persisted, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT windows FROM layouts WHERE profile = ?`, profile).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load layout %q: %w", profile, err)
	}
	var windows []wm.Persisted
	if err := json.Unmarshal([]byte(data), &windows); err != nil {
		return nil, fmt.Errorf("failed to decode layout %q: %w", profile, err)
	}
	return windows, nil
}

// Delete forgets the layout of profile.
func (r *LayoutRepo) Delete(ctx context.Context, profile string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM layouts WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("failed to delete layout %q: %w", profile, err)
	}
	return nil
}
