/*
engine.go - The PSH rent-subsidy worksheet computation

PURPOSE:
  Computes the subsidy determination from a validated input and an
  immutable rate table. This is the reference-worksheet arithmetic:

    1. gross rent      = rent to owner + utility allowance
    2. effective TTP   = max(entered TTP, $50)
    3. raw HAP         = gross rent - effective TTP  (negative is legal)
    4. split raw HAP into HAP to owner / tenant rent / utility
       reimbursement (reimbursement capped at the utility allowance)
    5. mixed-family proration of HAP by eligible/total members
    6. FMR comparison (strictly greater than triggers the blocking flag)
    7. warning assembly in deterministic order

ARITHMETIC:
  Exact decimal throughout. Rounding happens at exactly one point: the
  prorated HAP, half away from zero to two decimal places, matching the
  worksheet convention.

FAILURE MODES:
  Only rate resolution can fail (RateError from a partial table). Once
  inputs are valid and the rate resolves, a complete Result is always
  produced; there is no calculation-failure path.

CONCURRENCY:
  Stateless and side-effect free per call. Safe to run concurrently from
  any number of callers against the same RateTable snapshot.

SEE ALSO:
  - validate.go: Run Validate before Calculate
  - rates.go: Rate resolution
*/
package subsidy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculate produces a subsidy determination for a validated input against
// the given rate table. Callers must run Validate first; Calculate assumes
// field-level invariants hold.
func Calculate(in Input, table *RateTable) (*Result, error) {
	size := in.ApplicableBedroomSize()
	rate, err := table.Resolve(size)
	if err != nil {
		return nil, err
	}

	// Step 1: gross rent.
	grossRent := in.RentToOwner.Add(in.UtilityAllowance)

	// Step 2: TTP floor. Enforced silently; flagged in the warnings below.
	effectiveTTP := in.TotalTenantPayment
	ttpFloored := effectiveTTP.LessThan(MinTTP)
	if ttpFloored {
		effectiveTTP = MinTTP
	}

	// Step 3: raw HAP. No floor here; negative flows into step 4.
	rawHAP := grossRent.Sub(effectiveTTP)

	// Step 4: split into the three payment legs.
	var hapToOwner, tenantRent, utilityReimbursement decimal.Decimal
	if rawHAP.IsNegative() {
		// TTP exceeds gross rent. The tenant pays no more than the owner
		// is owed; the excess comes back as utility reimbursement, capped
		// at the utility allowance.
		hapToOwner = decimal.Zero
		tenantRent = grossRent
		utilityReimbursement = effectiveTTP.Sub(grossRent)
		if utilityReimbursement.GreaterThan(in.UtilityAllowance) {
			utilityReimbursement = in.UtilityAllowance
		}
	} else {
		hapToOwner = rawHAP
		tenantRent = effectiveTTP
		utilityReimbursement = decimal.Zero
	}

	// Step 5: mixed-family proration. Rounding happens here and only here.
	mixed := in.IsMixedFamily()
	prorationPct := decimal.NewFromInt(1)
	proratedHAP := hapToOwner
	if mixed {
		prorationPct = decimal.NewFromInt(int64(in.EligibleMembers)).
			Div(decimal.NewFromInt(int64(in.TotalMembers())))
		proratedHAP = hapToOwner.Mul(prorationPct).Round(2)
	}

	// Step 6: FMR comparison. Strictly greater; equality is compliant.
	exceedsFMR := grossRent.GreaterThan(rate.FMR)

	// Step 7: warnings, deterministic order.
	var warnings []Warning
	if exceedsFMR {
		warnings = append(warnings, Warning{
			Severity: SeverityBlocking,
			Message: fmt.Sprintf("gross rent $%s exceeds FMR $%s by $%s: supervisor approval required",
				grossRent.StringFixed(2), rate.FMR.StringFixed(2), grossRent.Sub(rate.FMR).StringFixed(2)),
		})
	}
	if mixed {
		warnings = append(warnings, Warning{
			Severity: SeverityCaution,
			Message: fmt.Sprintf("mixed family: HAP prorated to %s%% (%d of %d members eligible)",
				prorationPct.Mul(hundred).StringFixed(1), in.EligibleMembers, in.TotalMembers()),
		})
	}
	if ttpFloored {
		warnings = append(warnings, Warning{
			Severity: SeverityInfo,
			Message: fmt.Sprintf("total tenant payment $%s is below the $50 minimum and was floored to $50",
				in.TotalTenantPayment.StringFixed(2)),
		})
	}

	return &Result{
		GrossRent:             grossRent,
		HAPToOwner:            hapToOwner,
		TenantRent:            tenantRent,
		UtilityReimbursement:  utilityReimbursement,
		ProratedHAP:           proratedHAP,
		ProrationPercentage:   prorationPct,
		ApplicableFMR:         rate.FMR,
		ApplicableBedroomSize: size,
		ExceedsFMR:            exceedsFMR,
		IsMixedFamily:         mixed,
		Warnings:              warnings,
	}, nil
}
