package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Verification lifecycle for a stored posting.
const (
	StatusPending    = "PENDING"
	StatusVerified   = "VERIFIED"
	StatusExpired    = "EXPIRED"
	StatusBrokenLink = "BROKEN_LINK"
	StatusNotHiring  = "NOT_HIRING"
)

type JobRecord struct {
	ID                int64      `json:"id"`
	Company           string     `json:"company"`
	Title             string     `json:"title"`
	Location          string     `json:"location"`
	LocationType      string     `json:"locationType"`
	SalaryMin         int        `json:"salaryMin"`
	SalaryMax         int        `json:"salaryMax"`
	ApplyURL          string     `json:"applyURL"`
	SourceURL         string     `json:"sourceURL"`
	Source            string     `json:"source"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"`
	Score             int        `json:"score"`
	LastVerifiedAt    *time.Time `json:"lastVerifiedAt,omitempty"`
	VerificationNotes string     `json:"verificationNotes,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type ListPublicOpts struct {
	Sort  string // score | date | company
	Limit int
}

// PublicMaxAge bounds how long a verification result stays good for the
// public listing. A record whose last check is this old (or older) is
// hidden until the sweep re-confirms it.
const PublicMaxAge = 48 * time.Hour

func Migrate(db *sql.DB) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company TEXT NOT NULL,
  title TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  location_type TEXT NOT NULL DEFAULT 'UNKNOWN',
  salary_min INTEGER NOT NULL DEFAULT 0,
  salary_max INTEGER NOT NULL DEFAULT 0,
  apply_url TEXT NOT NULL,
  source_url TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'PENDING',
  score INTEGER NOT NULL DEFAULT 0,
  last_verified_at TEXT,
  verification_notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_apply_url
ON jobs(apply_url)
WHERE apply_url != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_status
ON jobs(status);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_created_at
ON jobs(created_at);
`); err != nil {
		return err
	}

	// Back-compat for dev DBs that predate the notes column.
	if !columnExists(tx, "jobs", "verification_notes") {
		if _, err := tx.Exec(`ALTER TABLE jobs ADD COLUMN verification_notes TEXT NOT NULL DEFAULT '';`); err != nil {
			return err
		}
	}

	// Mark schema v1
	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}

// ListPublic returns verified postings young enough to still be worth
// applying to.
func ListPublic(ctx context.Context, db *sql.DB, opts ListPublicOpts) ([]JobRecord, error) {
	// defaults
	if opts.Sort == "" {
		opts.Sort = "score"
	}
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 200
	}

	// whitelist sort columns (prevents SQL injection)
	sortCol := map[string]string{
		"score":   "score",
		"date":    "created_at",
		"company": "company",
	}[opts.Sort]
	if sortCol == "" {
		sortCol = "score"
	}
	order := "DESC"
	if sortCol == "company" {
		order = "ASC"
	}

	// last_verified_at is stored RFC3339 UTC, so lexical compare is time
	// order. Strictly greater: a check aged exactly PublicMaxAge is out.
	cutoff := time.Now().Add(-PublicMaxAge).UTC().Format(time.RFC3339)

	query := fmt.Sprintf(`
SELECT %s
FROM jobs
WHERE status = ? AND last_verified_at IS NOT NULL AND last_verified_at > ?
ORDER BY %s %s, id DESC
LIMIT ?;
`, jobColumns, sortCol, order)

	rows, err := db.QueryContext(ctx, query, StatusVerified, cutoff, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobRecord
	for rows.Next() {
		r, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
