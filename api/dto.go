/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract.

AMOUNTS ON THE WIRE:
  All currency fields travel as exact decimal strings ("1300.00"), never
  JSON numbers. Floats would reintroduce the drift the engine exists to
  avoid.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done by the subsidy package, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - subsidy/types.go: The domain model these mirror
*/
package api

import (
	"time"

	"github.com/beacon/subsidy-engine/store/sqlite"
	"github.com/beacon/subsidy-engine/subsidy"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CalculationRequest is the input collected by the web form.
type CalculationRequest struct {
	HeadOfHousehold    string `json:"head_of_household"`
	VoucherBedroomSize int    `json:"voucher_bedroom_size"`
	UnitBedrooms       int    `json:"unit_bedrooms"`
	RentToOwner        string `json:"rent_to_owner"`
	UtilityAllowance   string `json:"utility_allowance"`
	TotalTenantPayment string `json:"total_tenant_payment"`
	EligibleMembers    int    `json:"eligible_members"`
	IneligibleMembers  int    `json:"ineligible_members"`
}

// WarningDTO is one compliance notice.
type WarningDTO struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CalculationDTO is the determination returned to the form.
type CalculationDTO struct {
	GrossRent             string       `json:"gross_rent"`
	HAPToOwner            string       `json:"hap_to_owner"`
	TenantRent            string       `json:"tenant_rent"`
	UtilityReimbursement  string       `json:"utility_reimbursement"`
	ProratedHAP           string       `json:"prorated_hap"`
	ProrationPercentage   string       `json:"proration_percentage"`
	ApplicableFMR         string       `json:"applicable_fmr"`
	ApplicableBedroomSize int          `json:"applicable_bedroom_size"`
	ExceedsFMR            bool         `json:"exceeds_fmr"`
	IsMixedFamily         bool         `json:"is_mixed_family"`
	Warnings              []WarningDTO `json:"warnings"`
}

// CalculationRecordDTO is one audit-log entry.
type CalculationRecordDTO struct {
	ID        int64              `json:"id"`
	Request   CalculationRequest `json:"request"`
	Result    CalculationDTO     `json:"result"`
	CreatedAt string             `json:"created_at"`
}

// RateDTO is one bedroom-size entry of the rate table.
type RateDTO struct {
	Bedrooms        int    `json:"bedrooms"`
	PaymentStandard string `json:"payment_standard"`
	FMR             string `json:"fmr"`
}

// RateTableDTO is the full active schedule.
type RateTableDTO struct {
	Rates         []RateDTO `json:"rates"`
	EffectiveDate string    `json:"effective_date,omitempty"`
}

// SetRateRequest edits a single bedroom-size entry.
type SetRateRequest struct {
	PaymentStandard string `json:"payment_standard"`
	FMR             string `json:"fmr"`
}

// FieldErrorDTO is one validation failure for inline display.
type FieldErrorDTO struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResponse carries every violation at once so the form can
// highlight all bad fields in a single pass.
type ValidationResponse struct {
	Error  string          `json:"error"`
	Fields []FieldErrorDTO `json:"fields"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCalculationDTO(res *subsidy.Result) CalculationDTO {
	warnings := make([]WarningDTO, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = WarningDTO{Severity: string(w.Severity), Message: w.Message}
	}
	return CalculationDTO{
		GrossRent:             res.GrossRent.StringFixed(2),
		HAPToOwner:            res.HAPToOwner.StringFixed(2),
		TenantRent:            res.TenantRent.StringFixed(2),
		UtilityReimbursement:  res.UtilityReimbursement.StringFixed(2),
		ProratedHAP:           res.ProratedHAP.StringFixed(2),
		ProrationPercentage:   res.ProrationPercentage.String(),
		ApplicableFMR:         res.ApplicableFMR.StringFixed(2),
		ApplicableBedroomSize: int(res.ApplicableBedroomSize),
		ExceedsFMR:            res.ExceedsFMR,
		IsMixedFamily:         res.IsMixedFamily,
		Warnings:              warnings,
	}
}

func toRecordDTO(rec sqlite.CalculationRecord) CalculationRecordDTO {
	return CalculationRecordDTO{
		ID: rec.ID,
		Request: CalculationRequest{
			HeadOfHousehold:    rec.Input.HeadOfHousehold,
			VoucherBedroomSize: int(rec.Input.VoucherBedroomSize),
			UnitBedrooms:       int(rec.Input.UnitBedrooms),
			RentToOwner:        rec.Input.RentToOwner.StringFixed(2),
			UtilityAllowance:   rec.Input.UtilityAllowance.StringFixed(2),
			TotalTenantPayment: rec.Input.TotalTenantPayment.StringFixed(2),
			EligibleMembers:    rec.Input.EligibleMembers,
			IneligibleMembers:  rec.Input.IneligibleMembers,
		},
		Result:    toCalculationDTO(&rec.Result),
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}
}

func toRateTableDTO(table *subsidy.RateTable, effectiveDate string) RateTableDTO {
	entries := table.Entries()
	rates := make([]RateDTO, 0, len(entries))
	for size := subsidy.BedroomSize(0); size <= subsidy.MaxBedrooms; size++ {
		r, ok := entries[size]
		if !ok {
			continue
		}
		rates = append(rates, RateDTO{
			Bedrooms:        int(size),
			PaymentStandard: r.PaymentStandard.StringFixed(2),
			FMR:             r.FMR.StringFixed(2),
		})
	}
	return RateTableDTO{Rates: rates, EffectiveDate: effectiveDate}
}

func toFieldErrorDTOs(errs []subsidy.FieldError) []FieldErrorDTO {
	dtos := make([]FieldErrorDTO, len(errs))
	for i, e := range errs {
		dtos[i] = FieldErrorDTO{Field: e.Field, Code: string(e.Code), Message: e.Message}
	}
	return dtos
}
