/*
rates.go - FMR rate table and rate resolution

PURPOSE:
  Defines the RateTable consumed by the engine and the lookup that maps an
  applicable bedroom size to its payment standard and FMR. The table is an
  immutable value: loaded once, passed by reference into Calculate, and
  replaced wholesale on edit or import (see ratebook package). The engine
  never mutates it.

COMPLETENESS INVARIANT:
  A well-formed table has an entry for every bedroom size 0..5 with
  non-negative values. NewRateTable enforces this. Resolve still defends
  against a partially built table rather than assuming it silently.

SEE ALSO:
  - ratebook/: Active-table management (edit, import, reset)
  - engine.go: Consumes the resolved rate
*/
package subsidy

import (
	"github.com/shopspring/decimal"
)

// RateTable maps bedroom-size categories to published rates. Treat as
// immutable once constructed; build a new table instead of editing one.
type RateTable struct {
	rates map[BedroomSize]Rate
}

// NewRateTable builds a table from a complete rate set. Every bedroom size
// 0..MaxBedrooms must be present with non-negative values.
func NewRateTable(rates map[BedroomSize]Rate) (*RateTable, error) {
	for size := BedroomSize(0); size <= MaxBedrooms; size++ {
		r, ok := rates[size]
		if !ok {
			return nil, &RateError{BedroomSize: size, Err: ErrMissingRate}
		}
		if r.PaymentStandard.IsNegative() || r.FMR.IsNegative() {
			return nil, &RateError{BedroomSize: size, Err: ErrInvalidRateValue}
		}
	}

	copied := make(map[BedroomSize]Rate, len(rates))
	for size, r := range rates {
		copied[size] = r
	}
	return &RateTable{rates: copied}, nil
}

// Resolve returns the rate for the given bedroom size, or a RateError
// wrapping ErrMissingRate when the table has no entry for it.
func (t *RateTable) Resolve(size BedroomSize) (Rate, error) {
	r, ok := t.rates[size]
	if !ok {
		return Rate{}, &RateError{BedroomSize: size, Err: ErrMissingRate}
	}
	return r, nil
}

// Entries returns a copy of the full rate set, keyed by bedroom size.
func (t *RateTable) Entries() map[BedroomSize]Rate {
	out := make(map[BedroomSize]Rate, len(t.rates))
	for size, r := range t.rates {
		out[size] = r
	}
	return out
}

// WithEntry returns a new table with one entry replaced. The receiver is
// untouched; this is the copy-on-write primitive ratebook builds on.
func (t *RateTable) WithEntry(size BedroomSize, r Rate) (*RateTable, error) {
	if !size.Valid() {
		return nil, &RateError{BedroomSize: size, Err: ErrMissingRate}
	}
	if r.PaymentStandard.IsNegative() || r.FMR.IsNegative() {
		return nil, &RateError{BedroomSize: size, Err: ErrInvalidRateValue}
	}
	next := t.Entries()
	next[size] = r
	return NewRateTable(next)
}

// DefaultRateTable returns the bundled 2025/2026 schedule.
func DefaultRateTable() *RateTable {
	t, err := NewRateTable(map[BedroomSize]Rate{
		0: {PaymentStandard: decimal.NewFromInt(2734), FMR: decimal.NewFromInt(2485)},
		1: {PaymentStandard: decimal.NewFromInt(3275), FMR: decimal.NewFromInt(2977)},
		2: {PaymentStandard: decimal.NewFromInt(3964), FMR: decimal.NewFromInt(3604)},
		3: {PaymentStandard: decimal.NewFromInt(5064), FMR: decimal.NewFromInt(4604)},
		4: {PaymentStandard: decimal.NewFromInt(5249), FMR: decimal.NewFromInt(4772)},
		5: {PaymentStandard: decimal.Zero, FMR: decimal.NewFromInt(5000)},
	})
	if err != nil {
		// The bundled schedule is complete and non-negative by construction.
		panic(err)
	}
	return t
}
