package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobscout-engine/internal/dedupe"
	"jobscout-engine/internal/domain"
)

// ErrNotFound is returned for lookups that match no row.
var ErrNotFound = errors.New("store: not found")

type ListJobsOpts struct {
	Source         string
	Company        string
	EmploymentType string
	Sort           string // discovered | last_seen | company | title
	Window         string // 24h | 7d | all
	Limit          int
}

// UpsertResult reports what one upsert did with a record.
type UpsertResult struct {
	JobID   int64
	Created bool
	Updated bool
}

// UpsertJob inserts a job keyed by (source, external_id). On conflict the
// mutable columns are refreshed and last_seen_at advances while
// discovered_at keeps the original first-seen value.
func UpsertJob(ctx context.Context, db *sql.DB, j domain.NormalizedJob) (UpsertResult, error) {
	var existingID int64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM jobs WHERE source = ? AND external_id = ? LIMIT 1;`,
		j.Source, j.ExternalID,
	).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		id, err := insertJob(ctx, db, j)
		if err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{JobID: id, Created: true}, nil
	case err != nil:
		return UpsertResult{}, fmt.Errorf("lookup job: %w", err)
	}

	_, err = db.ExecContext(ctx, `
UPDATE jobs SET
  signature = ?,
  title = ?, company = ?,
  location_city = ?, location_region = ?, location_country = ?, location_raw = ?,
  description = ?, requirements = ?, benefits = ?,
  salary_min = ?, salary_max = ?,
  employment_type = ?,
  external_url = ?, application_url = ?, application_email = ?,
  posted_date = ?,
  last_seen_at = ?
WHERE id = ?;`,
		string(dedupe.Signature(j)),
		j.Title, j.Company,
		j.Location.City, j.Location.Region, j.Location.Country, j.Location.Raw,
		j.Description, j.Requirements, j.Benefits,
		j.SalaryMin, j.SalaryMax,
		string(j.EmploymentType),
		j.ExternalURL, j.ApplicationURL, j.ApplicationEmail,
		nullableTime(j.PostedDate),
		fmtTime(j.LastSeenAt),
		existingID,
	)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("update job: %w", err)
	}
	return UpsertResult{JobID: existingID, Updated: true}, nil
}

func insertJob(ctx context.Context, db *sql.DB, j domain.NormalizedJob) (int64, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO jobs (
  source, external_id, signature,
  title, company,
  location_city, location_region, location_country, location_raw,
  description, requirements, benefits,
  salary_min, salary_max, employment_type,
  external_url, application_url, application_email,
  posted_date, discovered_at, last_seen_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		j.Source, j.ExternalID, string(dedupe.Signature(j)),
		j.Title, j.Company,
		j.Location.City, j.Location.Region, j.Location.Country, j.Location.Raw,
		j.Description, j.Requirements, j.Benefits,
		j.SalaryMin, j.SalaryMax, string(j.EmploymentType),
		j.ExternalURL, j.ApplicationURL, j.ApplicationEmail,
		nullableTime(j.PostedDate), fmtTime(j.DiscoveredAt), fmtTime(j.LastSeenAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert job id: %w", err)
	}
	return id, nil
}

// FindBySignature returns the stored job carrying the same content
// signature, or ErrNotFound.
func FindBySignature(ctx context.Context, db *sql.DB, sig domain.JobSignature) (domain.NormalizedJob, error) {
	row := db.QueryRowContext(ctx, selectJobCols+`WHERE signature = ? LIMIT 1;`, string(sig))
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return domain.NormalizedJob{}, ErrNotFound
	}
	return j, err
}

// GetJob returns one job by id, or ErrNotFound.
func GetJob(ctx context.Context, db *sql.DB, id int64) (domain.NormalizedJob, error) {
	row := db.QueryRowContext(ctx, selectJobCols+`WHERE id = ? LIMIT 1;`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return domain.NormalizedJob{}, ErrNotFound
	}
	return j, err
}

// TouchLastSeen advances last_seen_at for an already-stored job without
// rewriting content columns.
func TouchLastSeen(ctx context.Context, db *sql.DB, id int64, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE jobs SET last_seen_at = ? WHERE id = ?;`, fmtTime(at), id)
	if err != nil {
		return fmt.Errorf("touch job: %w", err)
	}
	return nil
}

func ListJobs(ctx context.Context, db *sql.DB, opts ListJobsOpts) ([]domain.NormalizedJob, error) {
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 500
	}

	// whitelist sort columns (prevents SQL injection)
	sortCol := map[string]string{
		"discovered": "discovered_at DESC",
		"last_seen":  "last_seen_at DESC",
		"company":    "company ASC",
		"title":      "title ASC",
	}[opts.Sort]
	if sortCol == "" {
		sortCol = "discovered_at DESC"
	}

	where := "WHERE 1=1"
	var args []any
	switch opts.Window {
	case "24h":
		where += " AND last_seen_at >= datetime('now','-24 hours')"
	case "7d":
		where += " AND last_seen_at >= datetime('now','-7 days')"
	}
	if opts.Source != "" {
		where += " AND source = ?"
		args = append(args, opts.Source)
	}
	if opts.Company != "" {
		where += " AND company LIKE ?"
		args = append(args, "%"+opts.Company+"%")
	}
	if opts.EmploymentType != "" {
		where += " AND employment_type = ?"
		args = append(args, opts.EmploymentType)
	}
	args = append(args, opts.Limit)

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT ?;", selectJobCols, where, sortCol)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.NormalizedJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// DeleteJob removes one job and, via the FK cascade, its matches.
func DeleteJob(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupOldJobs drops listings not re-seen for three months.
func CleanupOldJobs(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM jobs
WHERE last_seen_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

const selectJobCols = `
SELECT id, source, external_id,
  title, company,
  location_city, location_region, location_country, location_raw,
  description, requirements, benefits,
  salary_min, salary_max, employment_type,
  external_url, application_url, application_email,
  posted_date, discovered_at, last_seen_at
FROM jobs
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (domain.NormalizedJob, error) {
	var j domain.NormalizedJob
	var et string
	var salMin, salMax sql.NullInt64
	var posted sql.NullString
	var discovered, lastSeen string
	err := r.Scan(
		&j.ID, &j.Source, &j.ExternalID,
		&j.Title, &j.Company,
		&j.Location.City, &j.Location.Region, &j.Location.Country, &j.Location.Raw,
		&j.Description, &j.Requirements, &j.Benefits,
		&salMin, &salMax, &et,
		&j.ExternalURL, &j.ApplicationURL, &j.ApplicationEmail,
		&posted, &discovered, &lastSeen,
	)
	if err != nil {
		return domain.NormalizedJob{}, err
	}
	j.EmploymentType = domain.EmploymentType(et)
	if salMin.Valid {
		v := int(salMin.Int64)
		j.SalaryMin = &v
	}
	if salMax.Valid {
		v := int(salMax.Int64)
		j.SalaryMax = &v
	}
	if posted.Valid {
		if t, err := time.Parse(time.RFC3339, posted.String); err == nil {
			j.PostedDate = &t
		}
	}
	j.DiscoveredAt, _ = time.Parse(time.RFC3339, discovered)
	j.LastSeenAt, _ = time.Parse(time.RFC3339, lastSeen)
	return j, nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}
