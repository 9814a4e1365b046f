package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
)

// fileSnapshotRepo keeps the latest snapshot in a single JSON file
type fileSnapshotRepo struct {
	path string
}

// NewFileSnapshotRepo creates a file backed snapshot repository
func NewFileSnapshotRepo(path string) (repo.SnapshotRepo, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &fileSnapshotRepo{path: path}, nil
}

// Save writes data next to the target and renames it over, so a crash never
// leaves a truncated snapshot behind
func (r *fileSnapshotRepo) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load reads the whole snapshot file
func (r *fileSnapshotRepo) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Location returns the file path
func (r *fileSnapshotRepo) Location() string {
	return r.path
}
