/*
csv.go - Bulk rate import from the published schedule's CSV format

PURPOSE:
  Parses a rate schedule CSV into a complete RateTable. The format is the
  one housing-authority staff export from the published schedule:

    bedrooms,payment_standard,fmr
    0,2734,2485
    1,3275,2977
    ...

  Parsing is strict: every bedroom size 0..5 must appear exactly once,
  sizes outside that range are rejected, and amounts must be non-negative
  decimals. A bad file never partially replaces the active table; callers
  get either a complete valid table or an error.

SEE ALSO:
  - ratebook.go: Replace swaps the parsed table in atomically
*/
package ratebook

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/beacon/subsidy-engine/subsidy"
)

// ParseCSV reads a rate schedule and returns a validated table.
func ParseCSV(r io.Reader) (*subsidy.RateTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("rate csv: failed to read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"bedrooms", "payment_standard", "fmr"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("rate csv: missing column %q", required)
		}
	}

	rates := make(map[subsidy.BedroomSize]subsidy.Rate)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rate csv: line %d: %w", line+1, err)
		}
		line++

		bedrooms, err := strconv.Atoi(record[cols["bedrooms"]])
		if err != nil {
			return nil, fmt.Errorf("rate csv: line %d: invalid bedrooms %q", line, record[cols["bedrooms"]])
		}
		size := subsidy.BedroomSize(bedrooms)
		if !size.Valid() {
			return nil, fmt.Errorf("rate csv: line %d: bedrooms %d outside 0..%d", line, bedrooms, subsidy.MaxBedrooms)
		}
		if _, dup := rates[size]; dup {
			return nil, fmt.Errorf("rate csv: line %d: duplicate entry for %d-bedroom", line, bedrooms)
		}

		ps, err := decimal.NewFromString(record[cols["payment_standard"]])
		if err != nil {
			return nil, fmt.Errorf("rate csv: line %d: invalid payment_standard %q", line, record[cols["payment_standard"]])
		}
		fmr, err := decimal.NewFromString(record[cols["fmr"]])
		if err != nil {
			return nil, fmt.Errorf("rate csv: line %d: invalid fmr %q", line, record[cols["fmr"]])
		}

		rates[size] = subsidy.Rate{PaymentStandard: ps, FMR: fmr}
	}

	// NewRateTable enforces completeness and non-negativity.
	return subsidy.NewRateTable(rates)
}
