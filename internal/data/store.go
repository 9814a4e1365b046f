package data

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
)

// DefaultCeiling is the default capacity ceiling (256 MiB)
const DefaultCeiling int64 = 256 * 1024 * 1024

// Fixed per-field costs used by the size estimate. These approximate the
// in-memory layout (map slot, string and slice headers); they do not measure
// heap or serialized bytes.
const (
	recordOverhead = 8 + 16 + 24 // map slot, state string header, entry slice header
	entryOverhead  = 3 * 16      // three string headers
)

// CapacityPolicy selects which mutations are checked against the ceiling
type CapacityPolicy string

const (
	// PolicyNewRecords checks only mutations that create a record (and Insert)
	PolicyNewRecords CapacityPolicy = "new_records"
	// PolicyAllMutations checks every mutation that grows the store
	PolicyAllMutations CapacityPolicy = "all_mutations"
)

// ParseCapacityPolicy parses a policy name, empty means PolicyNewRecords
func ParseCapacityPolicy(name string) (CapacityPolicy, error) {
	switch CapacityPolicy(name) {
	case "", PolicyNewRecords:
		return PolicyNewRecords, nil
	case PolicyAllMutations:
		return PolicyAllMutations, nil
	}
	return "", fmt.Errorf("unknown capacity policy %q", name)
}

// Store is the in-memory conversation store.
// One RWMutex guards the whole map: writers take it exclusively, scans share it.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.ChatRecord
	size    int64 // running total, equal to EstimateSize
	ceiling int64
	policy  CapacityPolicy
}

var _ repo.ChatStore = (*Store)(nil)

// NewStore creates an empty store. A non-positive ceiling selects DefaultCeiling.
func NewStore(ceiling int64, policy CapacityPolicy) *Store {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if policy == "" {
		policy = PolicyNewRecords
	}
	return &Store{
		records: make(map[string]*domain.ChatRecord),
		ceiling: ceiling,
		policy:  policy,
	}
}

func entrySize(e domain.Entry) int64 {
	return int64(entryOverhead + len(e.Name) + len(e.Date) + len(e.Handle))
}

func listSize(l domain.EntryList) int64 {
	var n int64
	for _, e := range l.All() {
		n += entrySize(e)
	}
	return n
}

func recordSize(chatID string, rec *domain.ChatRecord) int64 {
	return int64(len(chatID)+recordOverhead) + listSize(rec.Entries)
}

// admit checks a size change against the ceiling. Must hold s.mu.
// Writes that do not grow the store are always admitted.
func (s *Store) admit(delta int64, check bool) error {
	if !check || delta <= 0 {
		return nil
	}
	if s.size+delta > s.ceiling {
		return fmt.Errorf("%w: %d + %d bytes over ceiling %d", domain.ErrCapacityExceeded, s.size, delta, s.ceiling)
	}
	return nil
}

// checkExisting reports whether mutations of existing records are capacity-checked
func (s *Store) checkExisting() bool {
	return s.policy == PolicyAllMutations
}

// create inserts a new record after a capacity check. Must hold s.mu.
func (s *Store) create(chatID string, rec *domain.ChatRecord) error {
	n := recordSize(chatID, rec)
	if err := s.admit(n, true); err != nil {
		return err
	}
	s.records[chatID] = rec
	s.size += n
	return nil
}

// Get returns a copy of one record
func (s *Store) Get(chatID string) (*domain.ChatRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[chatID]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// UpdateState sets the state of a record, creating an empty one when absent.
// Only creation is capacity-checked: the state has a fixed size.
func (s *Store) UpdateState(chatID string, state domain.ChatState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[chatID]; ok {
		rec.State = state
		return nil
	}
	return s.create(chatID, &domain.ChatRecord{State: state})
}

// AppendEntry appends one entry, creating a one-entry record when absent.
// A record created here starts Active.
func (s *Store) AppendEntry(chatID string, entry domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[chatID]
	if !ok {
		return s.create(chatID, &domain.ChatRecord{
			State:   domain.StateActive,
			Entries: domain.NewEntryList(entry),
		})
	}

	delta := entrySize(entry)
	if err := s.admit(delta, s.checkExisting()); err != nil {
		return err
	}
	rec.Entries.Append(entry)
	s.size += delta
	return nil
}

// ExtendEntries merges list into a record, creating an Active one when absent
func (s *Store) ExtendEntries(chatID string, list domain.EntryList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[chatID]
	if !ok {
		return s.create(chatID, &domain.ChatRecord{
			State:   domain.StateActive,
			Entries: list.Clone(),
		})
	}

	merged := rec.Entries.Clone()
	merged.Merge(list)
	delta := listSize(merged) - listSize(rec.Entries)
	if err := s.admit(delta, s.checkExisting()); err != nil {
		return err
	}
	rec.Entries = merged
	s.size += delta
	return nil
}

// Insert overwrites a whole record. Always capacity-checked.
func (s *Store) Insert(chatID string, state domain.ChatState, list domain.EntryList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &domain.ChatRecord{State: state, Entries: list.Clone()}
	n := recordSize(chatID, rec)

	var old int64
	if prev, ok := s.records[chatID]; ok {
		old = recordSize(chatID, prev)
	}
	if err := s.admit(n-old, true); err != nil {
		return err
	}
	s.records[chatID] = rec
	s.size += n - old
	return nil
}

// RemoveEntry removes the entry at index from a record
func (s *Store) RemoveEntry(chatID string, index int) (domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[chatID]
	if !ok {
		return domain.Entry{}, domain.ErrNotFound
	}
	removed, err := rec.Entries.RemoveAt(index)
	if err != nil {
		return domain.Entry{}, err
	}
	s.size -= entrySize(removed)
	return removed, nil
}

// Apply runs op through the transition table under the exclusive lock.
// mutate, when set, edits a copy of the entry list first; the new state is
// chosen against the edited list. Any error leaves the store untouched.
func (s *Store) Apply(chatID string, op domain.Operation, mutate func(*domain.EntryList) error) (domain.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[chatID]
	working := &domain.ChatRecord{}
	if ok {
		working = rec.Clone()
	} else {
		rec = nil
	}

	if mutate != nil {
		if err := mutate(&working.Entries); err != nil {
			return domain.Transition{}, err
		}
	}

	tr, err := domain.Next(rec, op, !working.Entries.IsEmpty())
	if err != nil {
		return domain.Transition{}, err
	}
	working.State = tr.To

	n := recordSize(chatID, working)
	var old int64
	if rec != nil {
		old = recordSize(chatID, rec)
	}
	if err := s.admit(n-old, rec == nil || s.checkExisting()); err != nil {
		return domain.Transition{}, err
	}

	s.records[chatID] = working
	s.size += n - old
	return tr, nil
}

// EstimateSize scans every record and sums the fixed-field approximation.
// It is a heuristic for admission control, not a measure of heap usage.
func (s *Store) EstimateSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for id, rec := range s.records {
		total += recordSize(id, rec)
	}
	return total
}

// Ceiling returns the capacity ceiling in bytes
func (s *Store) Ceiling() int64 {
	return s.ceiling
}

// Policy returns the capacity policy
func (s *Store) Policy() CapacityPolicy {
	return s.policy
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Iterate yields copies of all records ordered by chat ID. The shared lock is
// held for the whole range loop, so the loop body must not call mutating methods.
func (s *Store) Iterate() iter.Seq2[string, *domain.ChatRecord] {
	return func(yield func(string, *domain.ChatRecord) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for _, id := range slices.Sorted(maps.Keys(s.records)) {
			if !yield(id, s.records[id].Clone()) {
				return
			}
		}
	}
}

// Replace swaps the whole content for records. No capacity check: a restored
// snapshot is taken as-is.
func (s *Store) Replace(records map[string]*domain.ChatRecord) {
	fresh := make(map[string]*domain.ChatRecord, len(records))
	var total int64
	for id, rec := range records {
		c := rec.Clone()
		fresh[id] = c
		total += recordSize(id, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = fresh
	s.size = total
}
