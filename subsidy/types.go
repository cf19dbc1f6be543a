/*
Package subsidy provides the core PSH rent-subsidy calculation engine.

PURPOSE:
  This package contains the types and algorithms for turning a household's
  voucher, financial, and family-composition data into a subsidy
  determination: the Housing Assistance Payment to the owner, the tenant's
  rent share, any utility reimbursement, and the compliance warnings that
  drive supervisor sign-off.

KEY CONCEPTS IN THIS FILE (types.go):
  - Input: The validated bundle of household, financial, and family data
  - Rate/RateTable: Payment standard and FMR per bedroom size
  - Result: The immutable determination produced per calculation
  - Warning: A severity-tagged compliance notice

DESIGN PRINCIPLES:
  1. Purity: Calculate is a function of (Input, RateTable) with no I/O
  2. Precision: Uses decimal.Decimal to avoid floating-point drift
  3. Immutability: Results are never modified; rate tables are replaced
     wholesale, never edited in place
  4. Auditability: Both prorated and unprorated HAP are retained

USAGE:
  in := subsidy.Input{...}
  if errs := subsidy.Validate(in); len(errs) > 0 { ... }
  result, err := subsidy.Calculate(in, subsidy.DefaultRateTable())

SEE ALSO:
  - validate.go: Input validation (all violations reported at once)
  - engine.go: The worksheet computation
  - rates.go: Rate table construction and lookup
*/
package subsidy

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY HELPERS
// =============================================================================

// MinTTP is the mandatory Total Tenant Payment floor under PSH rules.
// Values below it are silently raised, never rejected.
var MinTTP = decimal.NewFromInt(50)

// Dollars builds an exact currency amount from whole dollars.
func Dollars(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// MustParseDollars parses an exact currency amount from a string.
// Returns zero on malformed input.
func MustParseDollars(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// BEDROOM SIZE
// =============================================================================

// BedroomSize is a bedroom count category, 0 (studio) through MaxBedrooms.
type BedroomSize int

// MaxBedrooms is the largest bedroom category carried by a rate table.
const MaxBedrooms BedroomSize = 5

// Valid reports whether the size is within the allowed range.
func (b BedroomSize) Valid() bool {
	return b >= 0 && b <= MaxBedrooms
}

// =============================================================================
// INPUT - The validated bundle handed to Calculate
// =============================================================================

// Input carries everything the engine needs for one determination.
// Callers own the value; the engine keeps no reference to it.
type Input struct {
	// Household
	HeadOfHousehold    string
	VoucherBedroomSize BedroomSize // size authorized on the voucher
	UnitBedrooms       BedroomSize // actual bedrooms in the leased unit

	// Financial
	RentToOwner        decimal.Decimal // monthly contract rent, > 0
	UtilityAllowance   decimal.Decimal // per PHA schedule, >= 0
	TotalTenantPayment decimal.Decimal // as entered; floored to MinTTP downstream

	// Family composition
	EligibleMembers   int
	IneligibleMembers int
}

// ApplicableBedroomSize returns the bedroom size that governs which FMR
// rate applies: the lesser of the voucher size and the unit size, per HUD
// rule.
func (in Input) ApplicableBedroomSize() BedroomSize {
	if in.UnitBedrooms < in.VoucherBedroomSize {
		return in.UnitBedrooms
	}
	return in.VoucherBedroomSize
}

// TotalMembers returns the full household size.
func (in Input) TotalMembers() int {
	return in.EligibleMembers + in.IneligibleMembers
}

// IsMixedFamily reports whether any household member lacks qualifying
// immigration status, which triggers prorated assistance.
func (in Input) IsMixedFamily() bool {
	return in.IneligibleMembers > 0
}

// =============================================================================
// RATE - Payment standard and FMR for one bedroom size
// =============================================================================

// Rate holds the two published figures for a bedroom size.
type Rate struct {
	PaymentStandard decimal.Decimal
	FMR             decimal.Decimal
}

// =============================================================================
// WARNING - Severity-tagged compliance notice
// =============================================================================

type Severity string

const (
	SeverityInfo     Severity = "info"     // advisory, no action required
	SeverityCaution  Severity = "caution"  // affects amounts, worth review
	SeverityBlocking Severity = "blocking" // requires supervisor approval
)

// Warning is one compliance notice attached to a Result. Warnings never
// block computation; they flag conditions for the presentation layer.
type Warning struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// =============================================================================
// RESULT - The subsidy determination
// =============================================================================

// Result is the complete output of one calculation. It is a value object:
// produced fresh per invocation, never mutated, no carry-over between
// calculations.
type Result struct {
	// Core amounts
	GrossRent            decimal.Decimal
	HAPToOwner           decimal.Decimal
	TenantRent           decimal.Decimal
	UtilityReimbursement decimal.Decimal

	// Mixed-family proration. ProratedHAP equals HAPToOwner when the
	// family is not mixed; both are kept for audit when it is.
	ProratedHAP         decimal.Decimal
	ProrationPercentage decimal.Decimal

	// FMR comparison
	ApplicableFMR         decimal.Decimal
	ApplicableBedroomSize BedroomSize
	ExceedsFMR            bool

	IsMixedFamily bool

	// Warnings in deterministic order: FMR violation, mixed-family
	// proration notice, TTP-floor notice.
	Warnings []Warning
}
