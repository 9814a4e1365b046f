package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// defaultSnapshotKeep is how many snapshots the SQLite backend retains
const defaultSnapshotKeep = 7

// sqliteSnapshotRepo stores snapshots as rows, newest last
type sqliteSnapshotRepo struct {
	db   *sql.DB
	path string
	keep int
}

// NewSQLiteSnapshotRepo creates a SQLite backed snapshot repository keeping the newest keep rows
func NewSQLiteSnapshotRepo(dbPath string, keep int) (repo.SnapshotRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,
			body BLOB NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	if keep <= 0 {
		keep = defaultSnapshotKeep
	}

	return &sqliteSnapshotRepo{db: db, path: dbPath, keep: keep}, nil
}

// Save inserts a snapshot row and prunes the oldest beyond the retention count
func (r *sqliteSnapshotRepo) Save(ctx context.Context, data []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (created_at, body) VALUES (?, ?)
	`, time.Now().Unix(), data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY id DESC LIMIT ?
		)
	`, r.keep); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load reads the newest snapshot
func (r *sqliteSnapshotRepo) Load(ctx context.Context) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT body FROM snapshots ORDER BY id DESC LIMIT 1
	`)

	var body []byte
	err := row.Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no snapshot stored: %w", os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return body, nil
}

// Count returns how many snapshots are retained
func (r *sqliteSnapshotRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

// Location returns the database path
func (r *sqliteSnapshotRepo) Location() string {
	return r.path
}

// Close closes the database connection
func (r *sqliteSnapshotRepo) Close() error {
	return r.db.Close()
}
