package mapping

import (
	"sort"
	"sync/atomic"
)

// Table is an immutable snapshot of the mapping configuration.
// The zero value is not usable; use NewTable or Empty.
type Table struct {
	entries []Entry
	byTopic map[string][]Action
}

// NewTable builds a table from entries. When several entries share a topic,
// the last one wins. The entries are deep-copied, so later changes by the
// caller do not leak into the table.
func NewTable(entries []Entry) *Table {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byTopic: make(map[string][]Action, len(entries)),
	}
	for _, e := range entries {
		actions := make([]Action, len(e.Actions))
		for i, a := range e.Actions {
			actions[i] = a.Clone()
		}
		t.entries = append(t.entries, Entry{Topic: e.Topic, Actions: actions})
		t.byTopic[e.Topic] = actions
	}
	return t
}

// Empty returns a table with no entries.
func Empty() *Table {
	return NewTable(nil)
}

// Actions returns the base actions configured for topic, in file order.
// The returned slice is shared with the table and must not be modified.
func (t *Table) Actions(topic string) ([]Action, bool) {
	actions, ok := t.byTopic[topic]
	return actions, ok
}

// Topics returns the mapped topics, sorted.
func (t *Table) Topics() []string {
	topics := make([]string, 0, len(t.byTopic))
	for topic := range t.byTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Len returns the number of distinct topics.
func (t *Table) Len() int {
	return len(t.byTopic)
}

// Entries returns a deep copy of the entries the table was built from.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		actions := make([]Action, len(e.Actions))
		for j, a := range e.Actions {
			actions[j] = a.Clone()
		}
		out[i] = Entry{Topic: e.Topic, Actions: actions}
	}
	return out
}

// Store holds the active table. It is safe for concurrent use; Load never
// observes a partially replaced table.
type Store struct {
	current atomic.Pointer[Table]
}

// NewStore creates a store serving t. A nil t serves an empty table.
func NewStore(t *Table) *Store {
	if t == nil {
		t = Empty()
	}
	s := &Store{}
	s.current.Store(t)
	return s
}

// Load returns the active table.
func (s *Store) Load() *Table {
	return s.current.Load()
}

// Reload atomically replaces the active table and returns the previous one.
// A nil t installs an empty table.
func (s *Store) Reload(t *Table) *Table {
	if t == nil {
		t = Empty()
	}
	return s.current.Swap(t)
}

// ReloadFile parses path and, on success, installs the result. On failure
// the active table is left untouched and the error is returned.
func (s *Store) ReloadFile(path string) (*Table, error) {
	t, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.Reload(t)
	return t, nil
}
