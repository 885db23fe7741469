package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobscout-engine/internal/domain"
)

// SaveMatch upserts a scoring outcome on (profile_id, job_id). Re-scoring
// replaces scores and explanations but leaves review flags alone.
func SaveMatch(ctx context.Context, db *sql.DB, m domain.MatchResult) (int64, error) {
	kw, _ := json.Marshal(emptyIfNil(m.MatchingKeywords))
	missing, _ := json.Marshal(emptyIfNil(m.MissingRequirements))

	_, err := db.ExecContext(ctx, `
INSERT INTO matches (
  profile_id, job_id,
  overall_score, skills_score, experience_score, location_score, salary_score,
  matching_keywords, missing_requirements,
  is_reviewed, is_approved, created_at
) VALUES (?,?,?,?,?,?,?,?,?,0,0,?)
ON CONFLICT(profile_id, job_id) DO UPDATE SET
  overall_score = excluded.overall_score,
  skills_score = excluded.skills_score,
  experience_score = excluded.experience_score,
  location_score = excluded.location_score,
  salary_score = excluded.salary_score,
  matching_keywords = excluded.matching_keywords,
  missing_requirements = excluded.missing_requirements,
  created_at = excluded.created_at;`,
		m.ProfileID, m.JobID,
		m.OverallScore, m.SkillsScore, m.ExperienceScore, m.LocationScore, m.SalaryScore,
		string(kw), string(missing),
		fmtTime(m.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("save match: %w", err)
	}

	var id int64
	err = db.QueryRowContext(ctx,
		`SELECT id FROM matches WHERE profile_id = ? AND job_id = ? LIMIT 1;`,
		m.ProfileID, m.JobID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save match id: %w", err)
	}
	return id, nil
}

type ListMatchesOpts struct {
	ProfileID string
	MinScore  float64
	Limit     int
}

// ListMatches returns matches for a profile ordered by score descending.
func ListMatches(ctx context.Context, db *sql.DB, opts ListMatchesOpts) ([]domain.MatchResult, error) {
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 200
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, profile_id, job_id,
  overall_score, skills_score, experience_score, location_score, salary_score,
  matching_keywords, missing_requirements,
  is_reviewed, is_approved, created_at
FROM matches
WHERE profile_id = ? AND overall_score >= ?
ORDER BY overall_score DESC, job_id ASC
LIMIT ?;`,
		opts.ProfileID, opts.MinScore, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MatchResult
	for rows.Next() {
		var m domain.MatchResult
		var kw, missing, created string
		if err := rows.Scan(
			&m.ID, &m.ProfileID, &m.JobID,
			&m.OverallScore, &m.SkillsScore, &m.ExperienceScore, &m.LocationScore, &m.SalaryScore,
			&kw, &missing,
			&m.IsReviewed, &m.IsApproved, &created,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(kw), &m.MatchingKeywords)
		_ = json.Unmarshal([]byte(missing), &m.MissingRequirements)
		m.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetMatchReview updates the human review flags on one match.
func SetMatchReview(ctx context.Context, db *sql.DB, id int64, reviewed, approved bool) error {
	res, err := db.ExecContext(ctx,
		`UPDATE matches SET is_reviewed = ?, is_approved = ? WHERE id = ?;`,
		reviewed, approved, id)
	if err != nil {
		return fmt.Errorf("set match review: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
