/*
Package sqlite provides SQLite-backed persistence for the subsidy engine's
collaborators.

PURPOSE:
  Two concerns, both outside the pure engine:
  - Rate-table versions: every import/edit/reset saves a new version, so
    a determination can always be traced to the schedule it ran against.
  - Calculation audit log: each completed determination is recorded with
    its inputs, amounts, and warnings. The log is append-only; a
    determination is never edited after the fact.

KEY TABLES:
  rate_tables:  Versioned rate schedules (JSON column + effective date)
  calculations: Append-only audit log of determinations

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

USAGE:
  store, err := sqlite.New("./data/subsidy.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  Use ":memory:" for tests.

SEE ALSO:
  - ratebook/: In-memory active table; this package is its durable source
  - api/handlers.go: Writes an audit record per calculation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/beacon/subsidy-engine/subsidy"
)

// Store persists rate-table versions and the calculation audit log.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Rate schedules, one row per version. Never updated in place;
	-- edits and imports insert a new version.
	CREATE TABLE IF NOT EXISTS rate_tables (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rates_json TEXT NOT NULL,
		effective_date TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Calculation audit log (append-only)
	CREATE TABLE IF NOT EXISTS calculations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		head_of_household TEXT NOT NULL,
		voucher_bedroom_size INTEGER NOT NULL,
		unit_bedrooms INTEGER NOT NULL,
		rent_to_owner TEXT NOT NULL,
		utility_allowance TEXT NOT NULL,
		total_tenant_payment TEXT NOT NULL,
		eligible_members INTEGER NOT NULL,
		ineligible_members INTEGER NOT NULL,
		gross_rent TEXT NOT NULL,
		hap_to_owner TEXT NOT NULL,
		tenant_rent TEXT NOT NULL,
		utility_reimbursement TEXT NOT NULL,
		prorated_hap TEXT NOT NULL,
		proration_percentage TEXT NOT NULL,
		applicable_fmr TEXT NOT NULL,
		applicable_bedroom_size INTEGER NOT NULL,
		exceeds_fmr BOOLEAN NOT NULL,
		is_mixed_family BOOLEAN NOT NULL,
		warnings_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_created_at
		ON calculations(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_calculations_head
		ON calculations(head_of_household);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RATE TABLE VERSIONS
// =============================================================================

// rateJSON is the persisted shape of one bedroom-size entry. Amounts are
// stored as decimal strings, never floats.
type rateJSON struct {
	PaymentStandard string `json:"payment_standard"`
	FMR             string `json:"fmr"`
}

// RateTableVersion is one persisted schedule.
type RateTableVersion struct {
	ID            int64
	Table         *subsidy.RateTable
	EffectiveDate string
	Source        string // "default", "import", "edit"
	CreatedAt     time.Time
}

// SaveRateTable persists a new schedule version and returns its id.
func (s *Store) SaveRateTable(ctx context.Context, table *subsidy.RateTable, effectiveDate, source string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := table.Entries()
	persisted := make(map[string]rateJSON, len(entries))
	for size, r := range entries {
		persisted[strconv.Itoa(int(size))] = rateJSON{
			PaymentStandard: r.PaymentStandard.String(),
			FMR:             r.FMR.String(),
		}
	}
	ratesJSON, err := json.Marshal(persisted)
	if err != nil {
		return 0, fmt.Errorf("failed to encode rate table: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_tables (rates_json, effective_date, source, created_at)
		VALUES (?, ?, ?, ?)`,
		string(ratesJSON),
		effectiveDate,
		source,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save rate table: %w", err)
	}
	return res.LastInsertId()
}

// LoadLatestRateTable returns the most recent schedule version, or nil if
// none has been saved yet.
func (s *Store) LoadLatestRateTable(ctx context.Context) (*RateTableVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, rates_json, effective_date, source, created_at
		FROM rate_tables ORDER BY id DESC LIMIT 1`)

	var (
		v         RateTableVersion
		ratesJSON string
		createdAt string
	)
	err := row.Scan(&v.ID, &ratesJSON, &v.EffectiveDate, &v.Source, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rate table: %w", err)
	}

	var persisted map[string]rateJSON
	if err := json.Unmarshal([]byte(ratesJSON), &persisted); err != nil {
		return nil, fmt.Errorf("failed to decode rate table: %w", err)
	}

	rates := make(map[subsidy.BedroomSize]subsidy.Rate, len(persisted))
	for key, r := range persisted {
		size, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("failed to decode rate table: bad bedroom key %q", key)
		}
		ps, err := decimal.NewFromString(r.PaymentStandard)
		if err != nil {
			return nil, fmt.Errorf("failed to decode rate table: %w", err)
		}
		fmr, err := decimal.NewFromString(r.FMR)
		if err != nil {
			return nil, fmt.Errorf("failed to decode rate table: %w", err)
		}
		rates[subsidy.BedroomSize(size)] = subsidy.Rate{PaymentStandard: ps, FMR: fmr}
	}

	// A stored table that no longer validates is a setup problem the
	// presentation layer must surface, not silently default.
	table, err := subsidy.NewRateTable(rates)
	if err != nil {
		return nil, err
	}
	v.Table = table
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &v, nil
}

// =============================================================================
// CALCULATION AUDIT LOG
// =============================================================================

// CalculationRecord is one audited determination: the inputs as entered
// plus every output field and warning, verbatim.
type CalculationRecord struct {
	ID        int64
	Input     subsidy.Input
	Result    subsidy.Result
	CreatedAt time.Time
}

// SaveCalculation appends a determination to the audit log.
func (s *Store) SaveCalculation(ctx context.Context, in subsidy.Input, res *subsidy.Result) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	warningsJSON, err := json.Marshal(res.Warnings)
	if err != nil {
		return 0, fmt.Errorf("failed to encode warnings: %w", err)
	}

	out, err := s.db.ExecContext(ctx, `
		INSERT INTO calculations
		(head_of_household, voucher_bedroom_size, unit_bedrooms,
		 rent_to_owner, utility_allowance, total_tenant_payment,
		 eligible_members, ineligible_members,
		 gross_rent, hap_to_owner, tenant_rent, utility_reimbursement,
		 prorated_hap, proration_percentage,
		 applicable_fmr, applicable_bedroom_size, exceeds_fmr, is_mixed_family,
		 warnings_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.HeadOfHousehold,
		int(in.VoucherBedroomSize),
		int(in.UnitBedrooms),
		in.RentToOwner.String(),
		in.UtilityAllowance.String(),
		in.TotalTenantPayment.String(),
		in.EligibleMembers,
		in.IneligibleMembers,
		res.GrossRent.String(),
		res.HAPToOwner.String(),
		res.TenantRent.String(),
		res.UtilityReimbursement.String(),
		res.ProratedHAP.String(),
		res.ProrationPercentage.String(),
		res.ApplicableFMR.String(),
		int(res.ApplicableBedroomSize),
		res.ExceedsFMR,
		res.IsMixedFamily,
		string(warningsJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save calculation: %w", err)
	}
	return out.LastInsertId()
}

// ListCalculations returns the most recent determinations, newest first.
func (s *Store) ListCalculations(ctx context.Context, limit int) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, head_of_household, voucher_bedroom_size, unit_bedrooms,
		       rent_to_owner, utility_allowance, total_tenant_payment,
		       eligible_members, ineligible_members,
		       gross_rent, hap_to_owner, tenant_rent, utility_reimbursement,
		       prorated_hap, proration_percentage,
		       applicable_fmr, applicable_bedroom_size, exceeds_fmr, is_mixed_family,
		       warnings_json, created_at
		FROM calculations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	var records []CalculationRecord
	for rows.Next() {
		var (
			rec                                           CalculationRecord
			voucherSize, unitBedrooms, applicableSize     int
			rent, ua, ttp                                 string
			gross, hap, tenant, reimb, prorated, pct, fmr string
			warningsJSON, createdAt                       string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Input.HeadOfHousehold, &voucherSize, &unitBedrooms,
			&rent, &ua, &ttp,
			&rec.Input.EligibleMembers, &rec.Input.IneligibleMembers,
			&gross, &hap, &tenant, &reimb,
			&prorated, &pct,
			&fmr, &applicableSize, &rec.Result.ExceedsFMR, &rec.Result.IsMixedFamily,
			&warningsJSON, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}

		rec.Input.VoucherBedroomSize = subsidy.BedroomSize(voucherSize)
		rec.Input.UnitBedrooms = subsidy.BedroomSize(unitBedrooms)
		rec.Input.RentToOwner = subsidy.MustParseDollars(rent)
		rec.Input.UtilityAllowance = subsidy.MustParseDollars(ua)
		rec.Input.TotalTenantPayment = subsidy.MustParseDollars(ttp)
		rec.Result.GrossRent = subsidy.MustParseDollars(gross)
		rec.Result.HAPToOwner = subsidy.MustParseDollars(hap)
		rec.Result.TenantRent = subsidy.MustParseDollars(tenant)
		rec.Result.UtilityReimbursement = subsidy.MustParseDollars(reimb)
		rec.Result.ProratedHAP = subsidy.MustParseDollars(prorated)
		rec.Result.ProrationPercentage = subsidy.MustParseDollars(pct)
		rec.Result.ApplicableFMR = subsidy.MustParseDollars(fmr)
		rec.Result.ApplicableBedroomSize = subsidy.BedroomSize(applicableSize)
		if err := json.Unmarshal([]byte(warningsJSON), &rec.Result.Warnings); err != nil {
			return nil, fmt.Errorf("failed to decode warnings: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		records = append(records, rec)
	}
	return records, rows.Err()
}
