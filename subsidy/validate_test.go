package subsidy_test

import (
	"testing"

	"github.com/beacon/subsidy-engine/subsidy"
)

func codesByField(errs []subsidy.FieldError) map[string]subsidy.ValidationCode {
	out := make(map[string]subsidy.ValidationCode, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Code
	}
	return out
}

func TestValidate_CleanInputPasses(t *testing.T) {
	if errs := subsidy.Validate(standardInput()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_ReportsEveryViolationAtOnce(t *testing.T) {
	// GIVEN: an input with every field wrong
	// WHEN: Validating
	// THEN: all violations come back in one pass, not just the first,
	//       so the form can highlight every bad field

	in := subsidy.Input{
		HeadOfHousehold:    "   ",
		VoucherBedroomSize: 9,
		UnitBedrooms:       -1,
		RentToOwner:        dollars(0),
		UtilityAllowance:   dollars(-5),
		TotalTenantPayment: dollars(-1),
		EligibleMembers:    0,
		IneligibleMembers:  0,
	}

	errs := subsidy.Validate(in)
	fields := codesByField(errs)

	want := map[string]subsidy.ValidationCode{
		"head_of_household":    subsidy.CodeMissingField,
		"voucher_bedroom_size": subsidy.CodeOutOfRange,
		"unit_bedrooms":        subsidy.CodeOutOfRange,
		"rent_to_owner":        subsidy.CodeInvalidAmount,
		"utility_allowance":    subsidy.CodeInvalidAmount,
		"total_tenant_payment": subsidy.CodeInvalidAmount,
		"family_composition":   subsidy.CodeInvalidFamilyComposition,
	}
	for field, code := range want {
		if fields[field] != code {
			t.Errorf("%s: got code %q, want %q", field, fields[field], code)
		}
	}
	if len(errs) != len(want) {
		t.Errorf("expected %d violations, got %d: %v", len(want), len(errs), errs)
	}
}

func TestValidate_LowTTPIsNotRejected(t *testing.T) {
	// A TTP below the $50 floor is policy territory, not a user mistake:
	// it passes validation and is floored inside Calculate.

	in := standardInput()
	in.TotalTenantPayment = dollars(10)

	if errs := subsidy.Validate(in); len(errs) != 0 {
		t.Fatalf("TTP of $10 should validate, got %v", errs)
	}
}

func TestValidate_NegativeMemberCounts(t *testing.T) {
	in := standardInput()
	in.EligibleMembers = -1
	in.IneligibleMembers = -2

	errs := subsidy.Validate(in)
	fields := codesByField(errs)

	if fields["eligible_members"] != subsidy.CodeInvalidFamilyComposition {
		t.Errorf("eligible_members: got %q", fields["eligible_members"])
	}
	if fields["ineligible_members"] != subsidy.CodeInvalidFamilyComposition {
		t.Errorf("ineligible_members: got %q", fields["ineligible_members"])
	}
	// The zero-total check only fires when the counts themselves are sane.
	if _, ok := fields["family_composition"]; ok {
		t.Error("family_composition should not also fire on negative counts")
	}
}

func TestValidate_ErrorsUnwrapToSentinel(t *testing.T) {
	in := standardInput()
	in.RentToOwner = dollars(0)

	errs := subsidy.Validate(in)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !subsidy.IsValidation(errs[0]) {
		t.Error("field errors should unwrap to ErrValidation")
	}
}
