package repo

import (
	"context"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
)

// SnapshotRepo is the snapshot repository interface
// Responsible for durable storage of encoded store snapshots (file or SQLite)
type SnapshotRepo interface {
	// Save writes one snapshot, replacing or superseding the previous one
	Save(ctx context.Context, data []byte) error

	// Load reads the most recent snapshot
	Load(ctx context.Context) ([]byte, error)

	// Location describes where snapshots live (for logs and status)
	Location() string
}

// SnapshotCodec converts between the store content and the persisted document
type SnapshotCodec interface {
	Encode(store ChatStore) ([]byte, error)
	Decode(data []byte) (map[string]*domain.ChatRecord, error)
}
