package data

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
)

var (
	alice = domain.Entry{Name: "Alice Smith", Date: "15-03", Handle: "alice"}
	bob   = domain.Entry{Name: "Bob Brown", Date: "01-12"}
	carol = domain.Entry{Name: "Carol White", Date: "29-02", Handle: "carol"}
)

// emptyRecordSize is the estimate of a record with no entries under a one-byte chat ID
const emptyRecordSize = 1 + recordOverhead

func mustEncode(t *testing.T, s *Store) string {
	t.Helper()
	data, err := EncodeSnapshot(s)
	require.NoError(t, err)
	return string(data)
}

func TestStore_UpdateState_CreatesThenUpdates(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)

	require.NoError(t, s.UpdateState("7", domain.StateWaitingJson))
	rec, ok := s.Get("7")
	require.True(t, ok)
	assert.Equal(t, domain.StateWaitingJson, rec.State)
	assert.True(t, rec.Entries.IsEmpty())

	require.NoError(t, s.AppendEntry("7", alice))
	require.NoError(t, s.UpdateState("7", domain.StateActive))
	rec, _ = s.Get("7")
	assert.Equal(t, domain.StateActive, rec.State)
	assert.Equal(t, []domain.Entry{alice}, rec.Entries.Entries())
}

func TestStore_UpdateState_AtCapacityRejectsNewRecord(t *testing.T) {
	s := NewStore(emptyRecordSize, PolicyNewRecords)
	require.NoError(t, s.UpdateState("1", domain.StateActive))
	assert.Equal(t, int64(emptyRecordSize), s.EstimateSize())

	before := mustEncode(t, s)
	err := s.UpdateState("9", domain.StateDisabled)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	_, ok := s.Get("9")
	assert.False(t, ok)
	assert.Equal(t, before, mustEncode(t, s))

	// existing records still accept state changes
	require.NoError(t, s.UpdateState("1", domain.StateDisabled))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)
	require.NoError(t, s.AppendEntry("1", alice))

	rec, _ := s.Get("1")
	rec.Entries.Append(bob)
	rec.State = domain.StateDisabled

	again, _ := s.Get("1")
	assert.Equal(t, 1, again.Entries.Len())
	assert.Equal(t, domain.StateActive, again.State)
}

func TestStore_AppendEntry(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)

	require.NoError(t, s.AppendEntry("1", alice))
	require.NoError(t, s.AppendEntry("1", bob))

	rec, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, []domain.Entry{alice, bob}, rec.Entries.Entries())
	assert.Equal(t, s.size, s.EstimateSize())
}

func TestStore_ExtendEntries_Merges(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)

	require.NoError(t, s.ExtendEntries("1", domain.NewEntryList(alice, bob)))
	require.NoError(t, s.ExtendEntries("1", domain.NewEntryList(bob, carol)))

	rec, _ := s.Get("1")
	assert.ElementsMatch(t, []domain.Entry{alice, bob, carol}, rec.Entries.Entries())
	assert.Equal(t, s.size, s.EstimateSize())
}

func TestStore_NewRecordsPolicy_ExistingRecordsGrowPastCeiling(t *testing.T) {
	s := NewStore(emptyRecordSize+entrySize(alice), PolicyNewRecords)
	require.NoError(t, s.AppendEntry("1", alice))

	// Existing record: no check under the default policy
	require.NoError(t, s.AppendEntry("1", bob))
	require.NoError(t, s.ExtendEntries("1", domain.NewEntryList(carol)))
	assert.Greater(t, s.EstimateSize(), s.Ceiling())

	// New records are still refused
	assert.ErrorIs(t, s.UpdateState("2", domain.StateActive), domain.ErrCapacityExceeded)
}

func TestStore_AllMutationsPolicy_ChecksExistingRecords(t *testing.T) {
	s := NewStore(emptyRecordSize+entrySize(alice), PolicyAllMutations)
	require.NoError(t, s.AppendEntry("1", alice))

	before := mustEncode(t, s)
	assert.ErrorIs(t, s.AppendEntry("1", bob), domain.ErrCapacityExceeded)
	assert.ErrorIs(t, s.ExtendEntries("1", domain.NewEntryList(carol)), domain.ErrCapacityExceeded)
	assert.Equal(t, before, mustEncode(t, s))

	// merging only duplicates does not grow the store
	require.NoError(t, s.ExtendEntries("1", domain.NewEntryList(alice)))
}

func TestStore_Insert_AlwaysChecked(t *testing.T) {
	s := NewStore(emptyRecordSize+entrySize(alice), PolicyNewRecords)
	require.NoError(t, s.Insert("1", domain.StateActive, domain.NewEntryList(alice)))

	before := mustEncode(t, s)
	err := s.Insert("1", domain.StateActive, domain.NewEntryList(alice, bob))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, before, mustEncode(t, s))

	// shrinking overwrite is admitted
	require.NoError(t, s.Insert("1", domain.StateDisabled, domain.EntryList{}))
	assert.Equal(t, int64(emptyRecordSize), s.EstimateSize())
}

func TestStore_RemoveEntry(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)
	require.NoError(t, s.ExtendEntries("1", domain.NewEntryList(alice, bob, carol)))

	removed, err := s.RemoveEntry("1", 1)
	require.NoError(t, err)
	assert.Equal(t, bob, removed)

	rec, _ := s.Get("1")
	assert.Equal(t, []domain.Entry{alice, carol}, rec.Entries.Entries())
	assert.Equal(t, s.size, s.EstimateSize())

	_, err = s.RemoveEntry("1", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.RemoveEntry("missing", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Apply(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)

	tr, err := s.Apply("1", domain.OpActivate, nil)
	require.NoError(t, err)
	assert.True(t, tr.Created)
	assert.Equal(t, domain.StateWaitingJson, tr.To)

	tr, err = s.Apply("1", domain.OpCompleteUpload, func(l *domain.EntryList) error {
		l.Merge(domain.NewEntryList(alice, bob))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateActive, tr.To)

	rec, _ := s.Get("1")
	assert.Equal(t, domain.StateActive, rec.State)
	assert.Equal(t, 2, rec.Entries.Len())
	assert.Equal(t, s.size, s.EstimateSize())
}

func TestStore_Apply_FailureLeavesStoreUntouched(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)
	require.NoError(t, s.Insert("1", domain.StateWaitingRemoval, domain.NewEntryList(alice)))
	before := mustEncode(t, s)

	_, err := s.Apply("1", domain.OpCompleteRemoval, func(l *domain.EntryList) error {
		_, err := l.RemoveAt(5)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, before, mustEncode(t, s))

	// rejected transition after a successful mutation
	_, err = s.Apply("1", domain.OpCompleteAdd, func(l *domain.EntryList) error {
		l.Append(bob)
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, before, mustEncode(t, s))
}

func TestStore_Apply_CapacityOnNewRecord(t *testing.T) {
	s := NewStore(emptyRecordSize, PolicyNewRecords)
	require.NoError(t, s.UpdateState("1", domain.StateActive))

	_, err := s.Apply("2", domain.OpDisable, nil)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	_, ok := s.Get("2")
	assert.False(t, ok)
}

func TestStore_IterateSortedCopies(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)
	require.NoError(t, s.UpdateState("b", domain.StateActive))
	require.NoError(t, s.UpdateState("a", domain.StateDisabled))
	require.NoError(t, s.UpdateState("c", domain.StateWaitingEntry))

	var ids []string
	for id, rec := range s.Iterate() {
		ids = append(ids, id)
		rec.State = domain.StateActive
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	rec, _ := s.Get("a")
	assert.Equal(t, domain.StateDisabled, rec.State)

	// breaking out releases the shared lock
	for range s.Iterate() {
		break
	}
	require.NoError(t, s.UpdateState("d", domain.StateActive))
}

func TestStore_Replace(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)
	require.NoError(t, s.UpdateState("old", domain.StateActive))

	s.Replace(map[string]*domain.ChatRecord{
		"new": {State: domain.StateActive, Entries: domain.NewEntryList(alice)},
	})

	_, ok := s.Get("old")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, s.size, s.EstimateSize())
}

func TestStore_CapacityInvariant_RandomSequences(t *testing.T) {
	entries := []domain.Entry{alice, bob, carol}
	states := domain.ChatStates

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		ceiling := int64(200 + rng.Intn(800))
		s := NewStore(ceiling, PolicyAllMutations)

		for step := 0; step < 200; step++ {
			id := fmt.Sprintf("%d", rng.Intn(6))
			before := mustEncode(t, s)
			sizeBefore := s.EstimateSize()

			var err error
			switch rng.Intn(5) {
			case 0:
				err = s.UpdateState(id, states[rng.Intn(len(states))])
			case 1:
				err = s.AppendEntry(id, entries[rng.Intn(len(entries))])
			case 2:
				err = s.ExtendEntries(id, domain.NewEntryList(entries[:rng.Intn(len(entries))+1]...))
			case 3:
				err = s.Insert(id, states[rng.Intn(len(states))], domain.NewEntryList(entries[:rng.Intn(len(entries))]...))
			case 4:
				_, err = s.RemoveEntry(id, rng.Intn(3))
			}

			if err != nil {
				assert.Equal(t, before, mustEncode(t, s), "seed %d step %d", seed, step)
				assert.Equal(t, sizeBefore, s.EstimateSize(), "seed %d step %d", seed, step)
				continue
			}
			require.LessOrEqual(t, s.EstimateSize(), ceiling, "seed %d step %d", seed, step)
			require.Equal(t, s.size, s.EstimateSize(), "seed %d step %d", seed, step)
		}
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(0, PolicyNewRecords)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("chat-%d", w%4)
			for i := 0; i < 100; i++ {
				_ = s.AppendEntry(id, domain.Entry{Name: fmt.Sprintf("User %d", i), Date: "01-01"})
				_ = s.UpdateState(id, domain.StateActive)
				_, _ = s.Get(id)
				for range s.Iterate() {
				}
				_ = s.EstimateSize()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, s.size, s.EstimateSize())
}

func TestParseCapacityPolicy(t *testing.T) {
	p, err := ParseCapacityPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyNewRecords, p)

	p, err = ParseCapacityPolicy("all_mutations")
	require.NoError(t, err)
	assert.Equal(t, PolicyAllMutations, p)

	_, err = ParseCapacityPolicy("sometimes")
	assert.Error(t, err)
}
