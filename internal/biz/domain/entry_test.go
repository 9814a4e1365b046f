package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = Entry{Name: "Alice Smith", Date: "15-03", Handle: "alice"}
	bob   = Entry{Name: "Bob Brown", Date: "01-12", Handle: ""}
	carol = Entry{Name: "Carol White", Date: "29-02", Handle: "carol"}
)

func TestEntry_Matches(t *testing.T) {
	e := Entry{Name: "Alice Smith", Date: "15-03"}

	for _, year := range []int{1999, 2024, 2031} {
		assert.True(t, e.Matches(time.Date(year, time.March, 15, 7, 0, 0, 0, time.UTC)), "year %d", year)
		assert.False(t, e.Matches(time.Date(year, time.March, 16, 7, 0, 0, 0, time.UTC)), "year %d", year)
		assert.False(t, e.Matches(time.Date(year, time.April, 15, 7, 0, 0, 0, time.UTC)), "year %d", year)
	}
}

func TestEntry_Matches_UsesUTC(t *testing.T) {
	e := Entry{Name: "Alice Smith", Date: "15-03"}
	// 01:00 on the 16th in UTC+3 is still the 15th in UTC
	loc := time.FixedZone("UTC+3", 3*60*60)
	assert.True(t, e.Matches(time.Date(2025, time.March, 16, 1, 0, 0, 0, loc)))
}

func TestEntryList_AppendKeepsOrder(t *testing.T) {
	var l EntryList
	assert.True(t, l.IsEmpty())

	l.Append(alice)
	l.Append(bob)
	l.Append(alice)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []Entry{alice, bob, alice}, l.Entries())
}

func TestEntryList_RemoveAt(t *testing.T) {
	l := NewEntryList(alice, bob, carol)

	removed, err := l.RemoveAt(1)
	require.NoError(t, err)
	assert.Equal(t, bob, removed)
	assert.Equal(t, []Entry{alice, carol}, l.Entries())
}

func TestEntryList_RemoveAt_OutOfRange(t *testing.T) {
	l := NewEntryList(alice)

	for _, idx := range []int{-1, 1, 5} {
		_, err := l.RemoveAt(idx)
		assert.ErrorIs(t, err, ErrNotFound, "index %d", idx)
	}
	assert.Equal(t, 1, l.Len())
}

func TestEntryList_MergeRemovesDuplicates(t *testing.T) {
	l := NewEntryList(alice, bob)
	l.Merge(NewEntryList(bob, carol, carol))

	assert.ElementsMatch(t, []Entry{alice, bob, carol}, l.Entries())
}

func TestEntryList_MergeDistinguishesByAllFields(t *testing.T) {
	otherHandle := alice
	otherHandle.Handle = "alice2"

	l := NewEntryList(alice)
	l.Merge(NewEntryList(otherHandle))

	assert.Equal(t, 2, l.Len())
}

func TestEntryList_MergeWithItselfIsIdempotent(t *testing.T) {
	l := NewEntryList(alice, bob, alice, carol)
	unique := []Entry{alice, bob, carol}

	l.Merge(l.Clone())
	assert.ElementsMatch(t, unique, l.Entries())

	l.Merge(l.Clone())
	assert.ElementsMatch(t, unique, l.Entries())
}

func TestEntryList_AllIsRestartable(t *testing.T) {
	l := NewEntryList(alice, bob, carol)

	for pass := 0; pass < 2; pass++ {
		var got []Entry
		for i, e := range l.All() {
			assert.Equal(t, len(got), i)
			got = append(got, e)
		}
		assert.Equal(t, l.Entries(), got)
	}

	// early break stops the sequence
	count := 0
	for range l.All() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestEntryList_CloneIsIndependent(t *testing.T) {
	l := NewEntryList(alice)
	c := l.Clone()
	c.Append(bob)

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 2, c.Len())
}

func TestEntryList_JSON(t *testing.T) {
	data, err := json.Marshal(NewEntryList(alice))
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":[{"name":"Alice Smith","date":"15-03","handle":"alice"}]}`, string(data))

	empty, err := json.Marshal(EntryList{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":[]}`, string(empty))
}
