package data

import (
	"fmt"
	"io"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
	"github.com/DevRickLin/feishu-birthday-bot/internal/infra/feishu"
)

// Snapshot backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// SnapshotOptions selects and configures the snapshot backend
type SnapshotOptions struct {
	Backend string // "file" or "sqlite"
	Path    string
	Keep    int // sqlite only
}

// Repositories contains all repositories
type Repositories struct {
	Message  repo.MessageRepo
	Snapshot repo.SnapshotRepo
	Store    *Store
}

// NewSnapshotRepo creates the snapshot repository for opts.Backend
func NewSnapshotRepo(opts SnapshotOptions) (repo.SnapshotRepo, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileSnapshotRepo(opts.Path)
	case BackendSQLite:
		return NewSQLiteSnapshotRepo(opts.Path, opts.Keep)
	}
	return nil, fmt.Errorf("unknown snapshot backend %q", opts.Backend)
}

// NewRepositories creates all repositories
func NewRepositories(
	feishuClient *feishu.Client,
	snapshot SnapshotOptions,
	ceiling int64,
	policy CapacityPolicy,
) (*Repositories, error) {
	snapshotRepo, err := NewSnapshotRepo(snapshot)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Message:  NewFeishuRepo(feishuClient),
		Snapshot: snapshotRepo,
		Store:    NewStore(ceiling, policy),
	}, nil
}

// Close releases the snapshot backend
func (r *Repositories) Close() error {
	if c, ok := r.Snapshot.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
