package domain

import (
	"encoding/json"
	"iter"
	"slices"
	"time"
)

// DateLayout is the day-month layout of Entry.Date ("DD-MM")
const DateLayout = "02-01"

// Entry represents one recurring calendar record
type Entry struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Handle string `json:"handle"`
}

// Matches reports whether the entry falls on the UTC day-month of t, for any year
func (e Entry) Matches(t time.Time) bool {
	return e.Date == t.UTC().Format(DateLayout)
}

// EntryList is an ordered collection of entries belonging to one conversation
type EntryList struct {
	items []Entry
}

// NewEntryList creates a list holding a copy of entries
func NewEntryList(entries ...Entry) EntryList {
	return EntryList{items: slices.Clone(entries)}
}

// Append adds one entry at the end. Capacity is the Store's concern.
func (l *EntryList) Append(e Entry) {
	l.items = append(l.items, e)
}

// Merge unions other into l, dropping every duplicate by full field equality.
// First occurrences win; callers must not rely on the resulting order.
func (l *EntryList) Merge(other EntryList) {
	seen := make(map[Entry]struct{}, len(l.items)+len(other.items))
	merged := make([]Entry, 0, len(l.items)+len(other.items))
	for _, src := range [][]Entry{l.items, other.items} {
		for _, e := range src {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			merged = append(merged, e)
		}
	}
	l.items = merged
}

// RemoveAt removes the entry at index, keeping the order of the rest
func (l *EntryList) RemoveAt(index int) (Entry, error) {
	if index < 0 || index >= len(l.items) {
		return Entry{}, ErrNotFound
	}
	removed := l.items[index]
	l.items = slices.Delete(l.items, index, index+1)
	return removed, nil
}

// Len returns the number of entries
func (l EntryList) Len() int {
	return len(l.items)
}

// IsEmpty reports whether the list has no entries
func (l EntryList) IsEmpty() bool {
	return len(l.items) == 0
}

// All iterates over the entries with their indexes.
// The sequence may be ranged over any number of times.
func (l EntryList) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range l.items {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries
func (l EntryList) Entries() []Entry {
	return slices.Clone(l.items)
}

// Clone returns a deep copy
func (l EntryList) Clone() EntryList {
	return EntryList{items: slices.Clone(l.items)}
}

type entryListJSON struct {
	Entries []Entry `json:"entries"`
}

// MarshalJSON encodes the list as {"entries": [...]}
func (l EntryList) MarshalJSON() ([]byte, error) {
	items := l.items
	if items == nil {
		items = []Entry{}
	}
	return json.Marshal(entryListJSON{Entries: items})
}

// UnmarshalJSON decodes {"entries": [...]}
func (l *EntryList) UnmarshalJSON(data []byte) error {
	var raw entryListJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.items = raw.Entries
	return nil
}
