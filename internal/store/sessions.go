package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobscout-engine/internal/domain"
)

// CreateSession records a new run in the running state and returns its id.
func CreateSession(ctx context.Context, db *sql.DB, s domain.ScrapingSession) (int64, error) {
	filters, _ := json.Marshal(s.Filters)
	res, err := db.ExecContext(ctx, `
INSERT INTO sessions (status, filters, started_at)
VALUES (?, ?, ?);`,
		s.Status, string(filters), fmtTime(s.StartedAt))
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create session id: %w", err)
	}
	return id, nil
}

// FinishSession writes the terminal state of a run: counts, per-org
// errors, and completion time.
func FinishSession(ctx context.Context, db *sql.DB, s domain.ScrapingSession) error {
	orgErrs, _ := json.Marshal(s.OrgErrors)
	res, err := db.ExecContext(ctx, `
UPDATE sessions SET
  status = ?,
  jobs_found = ?, jobs_new = ?, jobs_updated = ?,
  error_message = ?, org_errors = ?,
  completed_at = ?
WHERE id = ?;`,
		s.Status,
		s.JobsFound, s.JobsNew, s.JobsUpdated,
		s.ErrorMessage, string(orgErrs),
		nullableTime(s.CompletedAt),
		s.ID)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSession returns one session by id, or ErrNotFound.
func GetSession(ctx context.Context, db *sql.DB, id int64) (domain.ScrapingSession, error) {
	row := db.QueryRowContext(ctx, selectSessionCols+`WHERE id = ? LIMIT 1;`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return domain.ScrapingSession{}, ErrNotFound
	}
	return s, err
}

// ListSessions returns recent sessions, newest first.
func ListSessions(ctx context.Context, db *sql.DB, limit int) ([]domain.ScrapingSession, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, selectSessionCols+`ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScrapingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const selectSessionCols = `
SELECT id, status, filters,
  jobs_found, jobs_new, jobs_updated,
  error_message, org_errors,
  started_at, completed_at
FROM sessions
`

func scanSession(r rowScanner) (domain.ScrapingSession, error) {
	var s domain.ScrapingSession
	var filters, orgErrs, started string
	var completed sql.NullString
	err := r.Scan(
		&s.ID, &s.Status, &filters,
		&s.JobsFound, &s.JobsNew, &s.JobsUpdated,
		&s.ErrorMessage, &orgErrs,
		&started, &completed,
	)
	if err != nil {
		return domain.ScrapingSession{}, err
	}
	_ = json.Unmarshal([]byte(filters), &s.Filters)
	_ = json.Unmarshal([]byte(orgErrs), &s.OrgErrors)
	s.StartedAt, _ = time.Parse(time.RFC3339, started)
	if completed.Valid {
		if t, err := time.Parse(time.RFC3339, completed.String); err == nil {
			s.CompletedAt = &t
			s.DurationSecs = int(t.Sub(s.StartedAt).Seconds())
		}
	}
	return s, nil
}
