package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/wysiii/internal/content"
)

func c(s string) content.Content { return content.Deserialize(s) }

func recordAll(s *Store, docs ...string) {
	for _, d := range docs {
		s.Record(c(d))
	}
}

func TestEmptyStore(t *testing.T) {
	s := NewStore(0)
	assert.Equal(t, -1, s.Index())
	assert.Equal(t, 0, s.Len())

	_, ok := s.Undo()
	assert.False(t, ok)
	_, ok = s.Redo()
	assert.False(t, ok)
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestUndoAtFirstSnapshotIsNoop(t *testing.T) {
	s := NewStore(0)
	s.Record(c("<p>initial</p>"))

	got, ok := s.Undo()
	assert.False(t, ok)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, 1, s.Len())

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "<p>initial</p>", cur.Serialize())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	docs := []string{"a", "ab", "abc", "abcd", "abcde"}
	for k := 0; k <= len(docs)-1; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			s := NewStore(0)
			recordAll(s, docs...)
			before, _ := s.Current()

			for i := 0; i < k; i++ {
				_, ok := s.Undo()
				require.True(t, ok)
			}
			for i := 0; i < k; i++ {
				_, ok := s.Redo()
				require.True(t, ok)
			}

			after, _ := s.Current()
			assert.True(t, before.Equal(after))
			assert.Equal(t, len(docs), s.Len())
		})
	}
}

func TestRecordAfterUndoDiscardsRedoBranch(t *testing.T) {
	s := NewStore(0)
	recordAll(s, "one", "two", "three")

	_, ok := s.Undo()
	require.True(t, ok)
	assert.True(t, s.CanRedo())

	s.Record(c("two-bis"))
	assert.False(t, s.CanRedo())
	_, ok = s.Redo()
	assert.False(t, ok)

	var got []string
	for _, e := range s.Entries() {
		got = append(got, e.Serialize())
	}
	assert.Equal(t, []string{"one", "two", "two-bis"}, got)
	assert.Equal(t, 2, s.Index())
}

func TestUndoClampsAtZero(t *testing.T) {
	s := NewStore(0)
	recordAll(s, "base", "one", "two")

	undone := 0
	for i := 0; i < 5; i++ {
		if _, ok := s.Undo(); ok {
			undone++
		}
	}
	assert.Equal(t, 2, undone)
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, 3, s.Len())
}

func TestRedoAtTailIsNoop(t *testing.T) {
	s := NewStore(0)
	recordAll(s, "x", "y")

	_, ok := s.Redo()
	assert.False(t, ok)
	assert.Equal(t, 1, s.Index())
}

func TestMaxHistoryEvictsOldest(t *testing.T) {
	s := NewStore(3)
	recordAll(s, "1", "2", "3", "4", "5")

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Index())
	first := s.Entries()[0]
	assert.Equal(t, "3", first.Serialize())

	for s.CanUndo() {
		s.Undo()
	}
	cur, _ := s.Current()
	assert.Equal(t, "3", cur.Serialize())
}

func TestUnlimitedKeepsConstructionSnapshot(t *testing.T) {
	s := NewStore(Unlimited)
	recordAll(s, "initial")
	for i := 0; i < 500; i++ {
		s.Record(content.Deserialize(fmt.Sprintf("<p>%d</p>", i)))
	}
	assert.Equal(t, 501, s.Len())

	for s.CanUndo() {
		s.Undo()
	}
	cur, _ := s.Current()
	assert.Equal(t, "initial", cur.Serialize())
}

func TestClear(t *testing.T) {
	s := NewStore(0)
	recordAll(s, "a", "b")
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, -1, s.Index())
	s.Record(c("c"))
	assert.Equal(t, 0, s.Index())
}
