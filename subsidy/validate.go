/*
validate.go - Input validation for the subsidy engine

PURPOSE:
  Rejects or normalizes malformed input before calculation. Pure predicate
  pass: no side effects, no field mutation. Every field is checked and
  every violation reported - never fail-fast on the first error - so the
  presentation layer can highlight all bad fields at once.

VALIDATION VS NORMALIZATION:
  A negative TTP is rejected (InvalidAmount). A TTP in [0, 50) is NOT
  rejected: it passes validation and is floored to $50 inside Calculate,
  with an informational warning. The floor is policy, not a user mistake.

SEE ALSO:
  - errors.go: FieldError and ValidationCode
  - engine.go: Consumes validated input
*/
package subsidy

import (
	"fmt"
	"strings"
)

// Validate checks every field of the input and returns the full list of
// violations. An empty slice means the input is safe to calculate with.
func Validate(in Input) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(in.HeadOfHousehold) == "" {
		errs = append(errs, FieldError{
			Field:   "head_of_household",
			Code:    CodeMissingField,
			Message: "head of household name is required",
		})
	}

	if !in.VoucherBedroomSize.Valid() {
		errs = append(errs, FieldError{
			Field:   "voucher_bedroom_size",
			Code:    CodeOutOfRange,
			Message: fmt.Sprintf("voucher bedroom size must be between 0 and %d", MaxBedrooms),
		})
	}

	if !in.UnitBedrooms.Valid() {
		errs = append(errs, FieldError{
			Field:   "unit_bedrooms",
			Code:    CodeOutOfRange,
			Message: fmt.Sprintf("unit bedrooms must be between 0 and %d", MaxBedrooms),
		})
	}

	if !in.RentToOwner.IsPositive() {
		errs = append(errs, FieldError{
			Field:   "rent_to_owner",
			Code:    CodeInvalidAmount,
			Message: "rent to owner must be greater than $0",
		})
	}

	if in.UtilityAllowance.IsNegative() {
		errs = append(errs, FieldError{
			Field:   "utility_allowance",
			Code:    CodeInvalidAmount,
			Message: "utility allowance cannot be negative",
		})
	}

	if in.TotalTenantPayment.IsNegative() {
		errs = append(errs, FieldError{
			Field:   "total_tenant_payment",
			Code:    CodeInvalidAmount,
			Message: "total tenant payment cannot be negative",
		})
	}

	if in.EligibleMembers < 0 {
		errs = append(errs, FieldError{
			Field:   "eligible_members",
			Code:    CodeInvalidFamilyComposition,
			Message: "eligible members cannot be negative",
		})
	}

	if in.IneligibleMembers < 0 {
		errs = append(errs, FieldError{
			Field:   "ineligible_members",
			Code:    CodeInvalidFamilyComposition,
			Message: "ineligible members cannot be negative",
		})
	}

	if in.EligibleMembers >= 0 && in.IneligibleMembers >= 0 && in.TotalMembers() == 0 {
		errs = append(errs, FieldError{
			Field:   "family_composition",
			Code:    CodeInvalidFamilyComposition,
			Message: "household must have at least one member",
		})
	}

	return errs
}
