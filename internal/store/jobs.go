package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const jobColumns = `id, company, title, location, location_type, salary_min, salary_max,
  apply_url, source_url, source, description, status, score,
  last_verified_at, verification_notes, created_at, updated_at`

// InsertJob adds a record, returning 0 when the unique apply_url index
// already holds the row.
func InsertJob(ctx context.Context, db *sql.DB, r JobRecord) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	created := now
	if !r.CreatedAt.IsZero() {
		created = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	var lastVerified any
	if r.LastVerifiedAt != nil {
		lastVerified = r.LastVerifiedAt.UTC().Format(time.RFC3339)
	}

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs
  (company, title, location, location_type, salary_min, salary_max,
   apply_url, source_url, source, description, status, score,
   last_verified_at, verification_notes, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		r.Company, r.Title, r.Location, r.LocationType, r.SalaryMin, r.SalaryMax,
		r.ApplyURL, r.SourceURL, r.Source, r.Description, r.Status, r.Score,
		lastVerified, r.VerificationNotes, created, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}

	// SQLite doesn't report rows affected reliably with IGNORE across
	// drivers, so ask for changes() explicitly.
	var changes int
	if e := db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil && changes == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}

// ListExistingURLs collects every apply and source URL already stored,
// for duplicate screening before inserts.
func ListExistingURLs(ctx context.Context, db *sql.DB) (map[string]struct{}, error) {
	rows, err := db.QueryContext(ctx, `SELECT apply_url, source_url FROM jobs;`)
	if err != nil {
		return nil, fmt.Errorf("list existing urls: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var apply, source string
		if err := rows.Scan(&apply, &source); err != nil {
			return nil, err
		}
		if apply != "" {
			set[apply] = struct{}{}
		}
		if source != "" {
			set[source] = struct{}{}
		}
	}
	return set, rows.Err()
}

// ListStaleVerified returns verified records whose last check happened
// before now-olderThan, oldest first.
func ListStaleVerified(ctx context.Context, db *sql.DB, olderThan time.Duration) ([]JobRecord, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(time.RFC3339)

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
SELECT %s
FROM jobs
WHERE status = ? AND last_verified_at IS NOT NULL AND last_verified_at < ?
ORDER BY last_verified_at ASC;
`, jobColumns), StatusVerified, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale verified: %w", err)
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

// UpdateVerification moves a record to a new status. A nil verifiedAt
// leaves the existing check timestamp in place, which is what a failed
// re-check wants.
func UpdateVerification(ctx context.Context, db *sql.DB, id int64, status string, verifiedAt *time.Time, notes string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if verifiedAt != nil {
		_, err := db.ExecContext(ctx, `
UPDATE jobs SET status = ?, last_verified_at = ?, verification_notes = ?, updated_at = ?
WHERE id = ?;`,
			status, verifiedAt.UTC().Format(time.RFC3339), notes, now, id)
		if err != nil {
			return fmt.Errorf("update verification: %w", err)
		}
		return nil
	}

	_, err := db.ExecContext(ctx, `
UPDATE jobs SET status = ?, verification_notes = ?, updated_at = ?
WHERE id = ?;`,
		status, notes, now, id)
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	return nil
}

// DeleteJob removes one record outright.
func DeleteJob(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	return err
}

// PurgeDead drops records that stopped being useful months ago: broken
// links and closed roles past the retention window.
func PurgeDead(ctx context.Context, db *sql.DB, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
DELETE FROM jobs
WHERE status IN (?, ?, ?) AND updated_at < ?;`,
		StatusBrokenLink, StatusExpired, StatusNotHiring, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge dead jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanJob(rows *sql.Rows) (JobRecord, error) {
	var r JobRecord
	var lastVerified sql.NullString
	var created, updated string
	if err := rows.Scan(
		&r.ID,
		&r.Company,
		&r.Title,
		&r.Location,
		&r.LocationType,
		&r.SalaryMin,
		&r.SalaryMax,
		&r.ApplyURL,
		&r.SourceURL,
		&r.Source,
		&r.Description,
		&r.Status,
		&r.Score,
		&lastVerified,
		&r.VerificationNotes,
		&created,
		&updated,
	); err != nil {
		return JobRecord{}, err
	}
	if lastVerified.Valid {
		if t, err := time.Parse(time.RFC3339, lastVerified.String); err == nil {
			r.LastVerifiedAt = &t
		}
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return r, nil
}
