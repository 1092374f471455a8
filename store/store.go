// Package store persists fetched MGNREGA records in a local SQLite cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nishajha1234/mgnrega-backend/models"
)

// DefaultRecordLimit caps how many per-period rows a single district read
// returns (two financial years of monthly data).
const DefaultRecordLimit = 24

const schema = `
CREATE TABLE IF NOT EXISTS districts (
	district_code TEXT PRIMARY KEY,
	district_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS mgnrega_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	fin_year TEXT NOT NULL DEFAULT '',
	month TEXT NOT NULL DEFAULT '',
	state_code TEXT,
	state_name TEXT,
	district_code TEXT NOT NULL,
	district_name TEXT,
	payload TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE(district_code, fin_year, month)
);

CREATE INDEX IF NOT EXISTS idx_records_district ON mgnrega_records (district_code, created_at DESC);

CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store wraps the SQLite handle. Construct it once at process start with
// Open and hand it to whatever needs it; it is safe for concurrent use.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListDistricts returns every directory entry ordered by district name.
func (s *Store) ListDistricts(ctx context.Context) ([]models.District, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT district_code, district_name FROM districts ORDER BY district_name`)
	if err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	defer rows.Close()

	districts := []models.District{}
	for rows.Next() {
		var d models.District
		if err := rows.Scan(&d.DistrictCode, &d.DistrictName); err != nil {
			return nil, fmt.Errorf("scan district: %w", err)
		}
		districts = append(districts, d)
	}
	return districts, rows.Err()
}

// ReadRecords returns up to limit records for districtCode, newest first.
// A missing district yields an empty slice, not an error. A limit <= 0 falls
// back to DefaultRecordLimit.
func (s *Store) ReadRecords(ctx context.Context, districtCode string, limit int) ([]models.DistrictRecord, error) {
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT fin_year, month, COALESCE(state_code, ''), COALESCE(state_name, ''),
		       district_code, COALESCE(district_name, ''), payload, created_at
		FROM mgnrega_records
		WHERE district_code = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, districtCode, limit)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	records := []models.DistrictRecord{}
	for rows.Next() {
		var (
			rec     models.DistrictRecord
			payload string
			created int64
		)
		if err := rows.Scan(&rec.FinYear, &rec.Month, &rec.StateCode, &rec.StateName,
			&rec.DistrictCode, &rec.DistrictName, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.CreatedAt = fromMillis(created)
		if err := unmarshalPayload(payload, &rec.Payload); err != nil {
			// A corrupt payload is confined to its row; the rest of the
			// district's data still serves.
			log.Printf("store: skipping unreadable payload for %s %s/%s: %v",
				rec.DistrictCode, rec.FinYear, rec.Month, err)
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpsertRecords writes the batch inside one transaction. A row whose
// (district_code, fin_year, month) key already exists gets its payload and
// created_at replaced. The batch is all-or-nothing: if any record fails to
// serialize or insert, the whole transaction rolls back.
func (s *Store) UpsertRecords(ctx context.Context, records []models.DistrictRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mgnrega_records
			(fin_year, month, state_code, state_name, district_code, district_name, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(district_code, fin_year, month)
		DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("serialize payload for %s %s/%s: %w",
				rec.DistrictCode, rec.FinYear, rec.Month, err)
		}
		created := rec.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			rec.FinYear, rec.Month, rec.StateCode, rec.StateName,
			rec.DistrictCode, rec.DistrictName, string(payload), toMillis(created)); err != nil {
			return fmt.Errorf("upsert record %s %s/%s: %w",
				rec.DistrictCode, rec.FinYear, rec.Month, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// UpsertDistrict inserts a directory entry if the code is not yet known.
// First writer wins; an existing name is never overwritten.
func (s *Store) UpsertDistrict(ctx context.Context, code, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO districts (district_code, district_name)
		VALUES (?, ?)
		ON CONFLICT(district_code) DO NOTHING`, code, name)
	if err != nil {
		return fmt.Errorf("upsert district %s: %w", code, err)
	}
	return nil
}

// SetMetadata inserts or replaces the value under key.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// ReadMetadata returns every metadata row ordered by key.
func (s *Store) ReadMetadata(ctx context.Context) ([]models.MetadataEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	defer rows.Close()

	entries := []models.MetadataEntry{}
	for rows.Next() {
		var e models.MetadataEntry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HouseholdsByYear sums households worked across all stored districts,
// grouped by financial year ascending.
func (s *Store) HouseholdsByYear(ctx context.Context) ([]models.YearTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT json_extract(payload, '$.fin_year') AS fin_year,
		       SUM(CAST(json_extract(payload, '$.Total_Households_Worked') AS INTEGER)) AS total_households
		FROM mgnrega_records
		GROUP BY fin_year
		ORDER BY fin_year`)
	if err != nil {
		return nil, fmt.Errorf("households by year: %w", err)
	}
	defer rows.Close()

	totals := []models.YearTotal{}
	for rows.Next() {
		var (
			year  sql.NullString
			total sql.NullInt64
		)
		if err := rows.Scan(&year, &total); err != nil {
			return nil, fmt.Errorf("scan year total: %w", err)
		}
		totals = append(totals, models.YearTotal{
			FinYear:         year.String,
			TotalHouseholds: total.Int64,
		})
	}
	return totals, rows.Err()
}

func unmarshalPayload(raw string, dst *models.Payload) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}
