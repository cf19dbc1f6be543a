package ratebook_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beacon/subsidy-engine/ratebook"
	"github.com/beacon/subsidy-engine/subsidy"
)

const goodCSV = `bedrooms,payment_standard,fmr
0,2800,2500
1,3300,3000
2,4000,3700
3,5100,4700
4,5300,4800
5,5500,5100
`

func dollars(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// =============================================================================
// BOOK
// =============================================================================

func TestBook_DefaultsWhenSeededNil(t *testing.T) {
	book := ratebook.New(nil)

	r, err := book.Current().Resolve(1)
	require.NoError(t, err)
	assert.True(t, r.FMR.Equal(dollars(2977)))
}

func TestBook_SetEntrySwapsWholeTable(t *testing.T) {
	// GIVEN: a reader holding the pre-edit snapshot
	// WHEN: an entry is edited
	// THEN: the snapshot is unchanged and Current() sees the new table

	book := ratebook.New(nil)
	snapshot := book.Current()

	err := book.SetEntry(1, subsidy.Rate{PaymentStandard: dollars(3400), FMR: dollars(3100)})
	require.NoError(t, err)

	old, _ := snapshot.Resolve(1)
	assert.True(t, old.FMR.Equal(dollars(2977)), "in-flight snapshot must not change")

	current, _ := book.Current().Resolve(1)
	assert.True(t, current.FMR.Equal(dollars(3100)))
}

func TestBook_SetEntryRejectionLeavesTableIntact(t *testing.T) {
	book := ratebook.New(nil)

	err := book.SetEntry(1, subsidy.Rate{PaymentStandard: dollars(-1), FMR: dollars(3100)})
	require.Error(t, err)
	assert.True(t, subsidy.IsConfig(err))

	r, _ := book.Current().Resolve(1)
	assert.True(t, r.FMR.Equal(dollars(2977)), "failed edit must not alter the active table")
}

func TestBook_ResetRestoresDefaults(t *testing.T) {
	book := ratebook.New(nil)
	require.NoError(t, book.SetEntry(0, subsidy.Rate{PaymentStandard: dollars(1), FMR: dollars(1)}))

	book.Reset()

	r, _ := book.Current().Resolve(0)
	assert.True(t, r.FMR.Equal(dollars(2485)))
}

func TestBook_ConcurrentReadersSeeCompleteTables(t *testing.T) {
	// Hammer the book with edits while readers resolve every size; a
	// reader must never observe a partially updated table.

	book := ratebook.New(nil)

	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				table := book.Current()
				for size := subsidy.BedroomSize(0); size <= subsidy.MaxBedrooms; size++ {
					if _, err := table.Resolve(size); err != nil {
						t.Errorf("reader saw incomplete table: %v", err)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		_ = book.SetEntry(subsidy.BedroomSize(i%6), subsidy.Rate{
			PaymentStandard: dollars(int64(3000 + i)),
			FMR:             dollars(int64(2900 + i)),
		})
	}
	close(done)
	wg.Wait()
}

// =============================================================================
// CSV IMPORT
// =============================================================================

func TestParseCSV_FullSchedule(t *testing.T) {
	table, err := ratebook.ParseCSV(strings.NewReader(goodCSV))
	require.NoError(t, err)

	r, err := table.Resolve(3)
	require.NoError(t, err)
	assert.True(t, r.FMR.Equal(dollars(4700)))
	assert.True(t, r.PaymentStandard.Equal(dollars(5100)))
}

func TestParseCSV_RejectsIncompleteSchedule(t *testing.T) {
	csv := `bedrooms,payment_standard,fmr
0,2800,2500
1,3300,3000
`
	_, err := ratebook.ParseCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, subsidy.IsConfig(err), "missing sizes should surface as a config error")
}

func TestParseCSV_RejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"missing column": "bedrooms,fmr\n0,2500\n",
		"bad bedrooms":   "bedrooms,payment_standard,fmr\nstudio,2800,2500\n",
		"out of range":   "bedrooms,payment_standard,fmr\n6,2800,2500\n",
		"bad amount":     "bedrooms,payment_standard,fmr\n0,lots,2500\n",
		"duplicate size": "bedrooms,payment_standard,fmr\n0,2800,2500\n0,2900,2600\n",
	}
	for name, csv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ratebook.ParseCSV(strings.NewReader(csv))
			assert.Error(t, err)
		})
	}
}

func TestParseCSV_RejectsNegativeAmounts(t *testing.T) {
	csv := strings.Replace(goodCSV, "2,4000,3700", "2,-4000,3700", 1)
	_, err := ratebook.ParseCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, subsidy.IsConfig(err))
}
