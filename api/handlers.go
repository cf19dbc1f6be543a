/*
handlers.go - HTTP API handlers for the subsidy determination service

PURPOSE:
  Exposes the calculation engine to the web form via REST. Handles HTTP
  request/response, JSON serialization, and delegates to the subsidy and
  ratebook packages.

ENDPOINTS:
  Calculations:
    POST   /api/calculations        Validate inputs and run a determination
    GET    /api/calculations        Audit history (most recent first)

  Rates:
    GET    /api/rates               Current rate table
    PUT    /api/rates/{bedrooms}    Edit a single bedroom-size entry
    POST   /api/rates/import        Replace the table from a CSV schedule
    POST   /api/rates/reset         Restore the bundled defaults

REQUEST FLOW (calculations):
  1. Parse HTTP request
  2. Validate every field (all violations reported at once)
  3. Calculate against the current rate snapshot
  4. Append the determination to the audit log
  5. Serialize response

ERROR HANDLING:
  - 400: Malformed JSON or unparseable path parameter
  - 422: Validation failures, with the full per-field list
  - 500 + code "rate_table": ConfigError, a setup problem distinct from a
    calculation problem; the table needs repair
  - 500: Persistence failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/beacon/subsidy-engine/ratebook"
	"github.com/beacon/subsidy-engine/store/sqlite"
	"github.com/beacon/subsidy-engine/subsidy"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Book  *ratebook.Book
}

// NewHandler creates a new handler with the given store and rate book.
func NewHandler(store *sqlite.Store, book *ratebook.Book) *Handler {
	return &Handler{Store: store, Book: book}
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate runs a full determination.
// POST /api/calculations
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, parseErrs := parseInput(req)
	errs := append(parseErrs, subsidy.Validate(in)...)
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
			Error:  "validation failed",
			Fields: toFieldErrorDTOs(errs),
		})
		return
	}

	result, err := subsidy.Calculate(in, h.Book.Current())
	if err != nil {
		// A rate-table problem is a setup condition, not a calculation
		// failure; surface it distinctly so the UI prompts table repair.
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "rate table needs repair: " + err.Error(),
			Code:  "rate_table",
		})
		return
	}

	if _, err := h.Store.SaveCalculation(r.Context(), in, result); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record calculation", err)
		return
	}

	writeJSON(w, http.StatusOK, toCalculationDTO(result))
}

// ListCalculations returns the audit history.
// GET /api/calculations?limit=N
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.Store.ListCalculations(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}

	dtos := make([]CalculationRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"calculations": dtos})
}

// =============================================================================
// RATE TABLE HANDLERS
// =============================================================================

// GetRates returns the active rate table.
// GET /api/rates
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	version, err := h.Store.LoadLatestRateTable(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rate table", err)
		return
	}
	effectiveDate := ""
	if version != nil {
		effectiveDate = version.EffectiveDate
	}
	writeJSON(w, http.StatusOK, toRateTableDTO(h.Book.Current(), effectiveDate))
}

// SetRate edits a single bedroom-size entry.
// PUT /api/rates/{bedrooms}
func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	bedrooms, err := strconv.Atoi(chi.URLParam(r, "bedrooms"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bedrooms parameter", err)
		return
	}

	var req SetRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ps, err := decimal.NewFromString(req.PaymentStandard)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment_standard", err)
		return
	}
	fmr, err := decimal.NewFromString(req.FMR)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fmr", err)
		return
	}

	rate := subsidy.Rate{PaymentStandard: ps, FMR: fmr}
	if err := h.Book.SetEntry(subsidy.BedroomSize(bedrooms), rate); err != nil {
		writeError(w, http.StatusBadRequest, "Rejected rate entry", err)
		return
	}

	h.persistActiveTable(w, r, "edit")
}

// ImportRates replaces the whole table from a CSV schedule in the request
// body (columns: bedrooms,payment_standard,fmr).
// POST /api/rates/import
func (h *Handler) ImportRates(w http.ResponseWriter, r *http.Request) {
	table, err := ratebook.ParseCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Rejected rate schedule", err)
		return
	}

	h.Book.Replace(table)
	h.persistActiveTable(w, r, "import")
}

// ResetRates restores the bundled default schedule.
// POST /api/rates/reset
func (h *Handler) ResetRates(w http.ResponseWriter, r *http.Request) {
	h.Book.Reset()
	h.persistActiveTable(w, r, "default")
}

// persistActiveTable saves the current table as a new version and returns
// it to the client.
func (h *Handler) persistActiveTable(w http.ResponseWriter, r *http.Request, source string) {
	table := h.Book.Current()
	effectiveDate := time.Now().UTC().Format("2006-01-02")
	if _, err := h.Store.SaveRateTable(r.Context(), table, effectiveDate, source); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist rate table", err)
		return
	}
	writeJSON(w, http.StatusOK, toRateTableDTO(table, effectiveDate))
}

// =============================================================================
// PARSING
// =============================================================================

// parseInput converts wire strings to domain values. Unparseable amounts
// become field errors so they are reported alongside the engine's own
// validation, not ahead of it.
func parseInput(req CalculationRequest) (subsidy.Input, []subsidy.FieldError) {
	var errs []subsidy.FieldError

	parseAmount := func(field, raw string) decimal.Decimal {
		if raw == "" {
			raw = "0"
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, subsidy.FieldError{
				Field:   field,
				Code:    subsidy.CodeInvalidAmount,
				Message: "not a valid dollar amount",
			})
			return decimal.Zero
		}
		return d
	}

	in := subsidy.Input{
		HeadOfHousehold:    req.HeadOfHousehold,
		VoucherBedroomSize: subsidy.BedroomSize(req.VoucherBedroomSize),
		UnitBedrooms:       subsidy.BedroomSize(req.UnitBedrooms),
		RentToOwner:        parseAmount("rent_to_owner", req.RentToOwner),
		UtilityAllowance:   parseAmount("utility_allowance", req.UtilityAllowance),
		TotalTenantPayment: parseAmount("total_tenant_payment", req.TotalTenantPayment),
		EligibleMembers:    req.EligibleMembers,
		IneligibleMembers:  req.IneligibleMembers,
	}
	return in, errs
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
