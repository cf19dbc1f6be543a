package subsidy_test

import (
	"errors"
	"testing"

	"github.com/beacon/subsidy-engine/subsidy"
)

func TestDefaultRateTable_CoversAllSizes(t *testing.T) {
	table := subsidy.DefaultRateTable()

	for size := subsidy.BedroomSize(0); size <= subsidy.MaxBedrooms; size++ {
		r, err := table.Resolve(size)
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if r.FMR.IsNegative() || r.PaymentStandard.IsNegative() {
			t.Errorf("size %d: negative rate %v", size, r)
		}
	}

	// Spot-check the published figures the worksheet depends on.
	r, _ := table.Resolve(3)
	assertEqual(t, "3BR FMR", r.FMR, dollars(4604))
	r, _ = table.Resolve(0)
	assertEqual(t, "studio FMR", r.FMR, dollars(2485))
}

func TestNewRateTable_RejectsNegativeValues(t *testing.T) {
	rates := subsidy.DefaultRateTable().Entries()
	rates[2] = subsidy.Rate{PaymentStandard: dollars(-1), FMR: dollars(3604)}

	_, err := subsidy.NewRateTable(rates)
	if !errors.Is(err, subsidy.ErrInvalidRateValue) {
		t.Fatalf("expected ErrInvalidRateValue, got %v", err)
	}

	var rateErr *subsidy.RateError
	if !errors.As(err, &rateErr) || rateErr.BedroomSize != 2 {
		t.Errorf("error should identify the offending bedroom size, got %v", err)
	}
}

func TestRateTable_WithEntryIsCopyOnWrite(t *testing.T) {
	// GIVEN: a table and an edited copy
	// THEN: the original is untouched; a calculation holding the old
	//       reference keeps seeing the old rates

	original := subsidy.DefaultRateTable()
	edited, err := original.WithEntry(1, subsidy.Rate{
		PaymentStandard: dollars(3400),
		FMR:             dollars(3100),
	})
	if err != nil {
		t.Fatalf("WithEntry failed: %v", err)
	}

	before, _ := original.Resolve(1)
	after, _ := edited.Resolve(1)
	assertEqual(t, "original 1BR FMR", before.FMR, dollars(2977))
	assertEqual(t, "edited 1BR FMR", after.FMR, dollars(3100))
}

func TestRateTable_WithEntryRejectsBadValues(t *testing.T) {
	table := subsidy.DefaultRateTable()

	if _, err := table.WithEntry(1, subsidy.Rate{PaymentStandard: dollars(1), FMR: dollars(-1)}); !errors.Is(err, subsidy.ErrInvalidRateValue) {
		t.Errorf("negative FMR: expected ErrInvalidRateValue, got %v", err)
	}
	if _, err := table.WithEntry(7, subsidy.Rate{PaymentStandard: dollars(1), FMR: dollars(1)}); err == nil {
		t.Error("out-of-range bedroom size should be rejected")
	}
}

func TestRateTable_EntriesReturnsCopy(t *testing.T) {
	table := subsidy.DefaultRateTable()

	entries := table.Entries()
	entries[1] = subsidy.Rate{PaymentStandard: dollars(0), FMR: dollars(0)}

	r, _ := table.Resolve(1)
	assertEqual(t, "1BR FMR after tampering with the copy", r.FMR, dollars(2977))
}
