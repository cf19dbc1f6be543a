/*
Package ratebook manages the active FMR rate table.

PURPOSE:
  Holds the one piece of shared mutable state in the system: which
  RateTable is current. Supports whole-table replacement (reset to the
  bundled defaults, bulk import) and single-entry edit, with the same
  non-negativity and completeness invariants the engine's table
  constructor enforces. No calculation logic lives here; this is pure
  storage with validation on write.

COPY-ON-WRITE:
  Tables are immutable values. Every write builds a complete new table and
  swaps the reference under a mutex; readers take the current reference
  and calculate against that snapshot. A calculation in flight observes
  either the table before an edit or the table after it, never a partially
  updated one.

SEE ALSO:
  - subsidy/rates.go: RateTable construction and invariants
  - csv.go: Bulk import in the rate schedule's CSV format
*/
package ratebook

import (
	"sync"

	"github.com/beacon/subsidy-engine/subsidy"
)

// Book holds the active rate table. Safe for concurrent use.
type Book struct {
	mu    sync.RWMutex
	table *subsidy.RateTable
}

// New creates a Book seeded with the given table, or the bundled defaults
// when table is nil.
func New(table *subsidy.RateTable) *Book {
	if table == nil {
		table = subsidy.DefaultRateTable()
	}
	return &Book{table: table}
}

// Current returns the active table snapshot. The returned table is
// immutable; it stays valid even if the book is updated afterward.
func (b *Book) Current() *subsidy.RateTable {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table
}

// Replace swaps in a complete new table (bulk import).
func (b *Book) Replace(table *subsidy.RateTable) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.table = table
}

// Reset restores the bundled default schedule.
func (b *Book) Reset() {
	b.Replace(subsidy.DefaultRateTable())
}

// SetEntry replaces the rate for one bedroom size. The new table is built
// and validated before the swap; on error the active table is unchanged.
func (b *Book) SetEntry(size subsidy.BedroomSize, r subsidy.Rate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, err := b.table.WithEntry(size, r)
	if err != nil {
		return err
	}
	b.table = next
	return nil
}
