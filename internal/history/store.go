// Package history provides linear undo/redo over full-document snapshots.
package history

import (
	"sync"

	"github.com/bethropolis/wysiii/internal/content"
	"github.com/bethropolis/wysiii/internal/logger"
)

// Unlimited keeps every snapshot. The construction snapshot is then always
// reachable by undo.
const Unlimited = 0

// Store is an ordered snapshot log with a cursor at the current entry.
//
// Invariant: 0 <= index < len(entries) whenever entries is non-empty.
type Store struct {
	mu         sync.Mutex
	entries    []content.Content
	index      int
	maxHistory int // <= 0 keeps everything
}

// NewStore creates an empty store keeping at most maxHistory snapshots.
// maxHistory <= 0 (Unlimited) never evicts.
func NewStore(maxHistory int) *Store {
	return &Store{
		entries:    make([]content.Content, 0, 16),
		index:      -1,
		maxHistory: maxHistory,
	}
}

// Record drops every entry after the cursor, appends c and moves the cursor
// to the new tail.
func (s *Store) Record(c content.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Destroy the redo branch.
	s.entries = s.entries[:s.index+1]
	s.entries = append(s.entries, c)

	if s.maxHistory > 0 && len(s.entries) > s.maxHistory {
		// Oldest snapshots fall off the front.
		excess := len(s.entries) - s.maxHistory
		s.entries = append(s.entries[:0:0], s.entries[excess:]...)
	}
	s.index = len(s.entries) - 1

	logger.DebugTagf("history", "History: Recorded snapshot (%d bytes). Index: %d, Count: %d", c.Len(), s.index, len(s.entries))
}

// Undo moves the cursor back one entry and returns it. It reports false and
// leaves the store untouched when there is nothing to undo.
func (s *Store) Undo() (content.Content, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index <= 0 {
		logger.DebugTagf("history", "History: Nothing to undo.")
		return content.Content{}, false
	}
	s.index--
	logger.DebugTagf("history", "History: Undo to index %d of %d", s.index, len(s.entries))
	return s.entries[s.index], true
}

// Redo moves the cursor forward one entry and returns it. It reports false
// when the cursor is already at the tail.
func (s *Store) Redo() (content.Content, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.entries)-1 {
		logger.DebugTagf("history", "History: Nothing to redo. index=%d, len=%d", s.index, len(s.entries))
		return content.Content{}, false
	}
	s.index++
	logger.DebugTagf("history", "History: Redo to index %d of %d", s.index, len(s.entries))
	return s.entries[s.index], true
}

// Current returns the entry under the cursor.
func (s *Store) Current() (content.Content, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 {
		return content.Content{}, false
	}
	return s.entries[s.index], true
}

// Index returns the cursor position, or -1 for an empty store.
func (s *Store) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of the recorded snapshots.
func (s *Store) Entries() []content.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]content.Content, len(s.entries))
	copy(out, s.entries)
	return out
}

// CanUndo returns true if there are entries before the cursor.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index > 0
}

// CanRedo returns true if there are entries after the cursor.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index < len(s.entries)-1
}

// Clear resets the store to empty.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
	s.index = -1
	logger.DebugTagf("history", "History: Cleared.")
}
