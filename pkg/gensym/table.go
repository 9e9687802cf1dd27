// Package gensym maps the front end's generated-symbol ids to stable native
// symbols.
package gensym

import (
	"astbridge/pkg/native"
)

// KeyOffset separates gensym keys from any other key space sharing the table.
const KeyOffset = 100

// Table memoizes one native symbol per session id. Entries are never removed.
type Table struct {
	entries map[uint64]*native.Symbol
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{entries: make(map[uint64]*native.Symbol)}
}

// Resolve returns the native symbol for session id, creating it on first use.
func (t *Table) Resolve(id int64) *native.Symbol {
	key := uint64(id) + KeyOffset
	if s, ok := t.entries[key]; ok {
		return s
	}
	s := native.Gensym()
	t.entries[key] = s
	return s
}

// Len returns the number of memoized entries
func (t *Table) Len() int {
	return len(t.entries)
}
