package data

import (
	"encoding/json"
	"fmt"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
)

// snapshotRecord is the persisted form of one conversation.
// The document has no version field: changing this struct breaks old snapshots.
type snapshotRecord struct {
	State   domain.ChatState `json:"state"`
	Entries []domain.Entry   `json:"entries"`
}

// EncodeSnapshot serializes every record of the store into one JSON document
// keyed by chat ID. The store's shared lock is held for the whole pass.
func EncodeSnapshot(store repo.ChatStore) ([]byte, error) {
	doc := make(map[string]snapshotRecord)
	for chatID, rec := range store.Iterate() {
		entries := rec.Entries.Entries()
		if entries == nil {
			entries = []domain.Entry{}
		}
		doc[chatID] = snapshotRecord{State: rec.State, Entries: entries}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a document produced by EncodeSnapshot
func DecodeSnapshot(data []byte) (map[string]*domain.ChatRecord, error) {
	var doc map[string]snapshotRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	records := make(map[string]*domain.ChatRecord, len(doc))
	for chatID, r := range doc {
		if !r.State.IsValid() {
			return nil, fmt.Errorf("failed to decode snapshot: chat %s has no valid state", chatID)
		}
		records[chatID] = &domain.ChatRecord{
			State:   r.State,
			Entries: domain.NewEntryList(r.Entries...),
		}
	}
	return records, nil
}

// JSONCodec implements repo.SnapshotCodec with EncodeSnapshot and DecodeSnapshot
type JSONCodec struct{}

var _ repo.SnapshotCodec = JSONCodec{}

// Encode implements repo.SnapshotCodec
func (JSONCodec) Encode(store repo.ChatStore) ([]byte, error) {
	return EncodeSnapshot(store)
}

// Decode implements repo.SnapshotCodec
func (JSONCodec) Decode(data []byte) (map[string]*domain.ChatRecord, error) {
	return DecodeSnapshot(data)
}
