package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Backend keeps each collection as one row of the collections table.
type Backend struct {
	db *sql.DB
}

func New(storagePath string) (*Backend, error) {
	const op = "storage.sqlite.New"

	if dir := filepath.Dir(storagePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT NOT NULL PRIMARY KEY,
			data TEXT NOT NULL
		);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Backend{db: db}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "storage.sqlite.Get"

	var data string
	err := b.db.QueryRowContext(ctx, `SELECT data FROM collections WHERE name = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return []byte(data), true, nil
}

func (b *Backend) Set(ctx context.Context, key string, data []byte) error {
	const op = "storage.sqlite.Set"

	_, err := b.db.ExecContext(ctx, `
		INSERT INTO collections (name, data) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Close()
}
