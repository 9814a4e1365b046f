package repo

import (
	"iter"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
)

// ChatStore is the conversation store interface
// Responsible for the capacity-bounded in-memory map of chat records.
// Every method is atomic on its own; a Get followed by a write is not.
type ChatStore interface {
	// Get returns a copy of one record
	Get(chatID string) (*domain.ChatRecord, bool)

	// UpdateState sets the state, creating an empty record when absent
	UpdateState(chatID string, state domain.ChatState) error

	// AppendEntry appends one entry, creating the record when absent
	AppendEntry(chatID string, entry domain.Entry) error

	// ExtendEntries merges a list in, creating the record when absent
	ExtendEntries(chatID string, list domain.EntryList) error

	// Insert overwrites the whole record
	Insert(chatID string, state domain.ChatState, list domain.EntryList) error

	// RemoveEntry removes the entry at index
	RemoveEntry(chatID string, index int) (domain.Entry, error)

	// Apply runs op through the transition table and mutate against the record, atomically
	Apply(chatID string, op domain.Operation, mutate func(*domain.EntryList) error) (domain.Transition, error)

	// EstimateSize returns the approximate byte footprint of all records
	EstimateSize() int64

	// Ceiling returns the configured capacity ceiling in bytes
	Ceiling() int64

	// Len returns the number of records
	Len() int

	// Iterate yields copies of all records while holding the shared lock
	Iterate() iter.Seq2[string, *domain.ChatRecord]

	// Replace swaps the whole content, used when restoring a snapshot
	Replace(records map[string]*domain.ChatRecord)
}
