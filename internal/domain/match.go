package domain

import "time"

// MatchResult is one (profile, job) scoring outcome. At most one active
// match exists per pair; re-scoring replaces it. Review flags are mutated
// later by humans, outside this engine.
type MatchResult struct {
	ID                  int64     `json:"id,omitempty"`
	ProfileID           string    `json:"profile_id"`
	JobID               int64     `json:"job_id"`
	OverallScore        float64   `json:"overall_score"`
	SkillsScore         float64   `json:"skills_score"`
	ExperienceScore     float64   `json:"experience_score"`
	LocationScore       float64   `json:"location_score"`
	SalaryScore         float64   `json:"salary_score"`
	MatchingKeywords    []string  `json:"matching_keywords"`
	MissingRequirements []string  `json:"missing_requirements"`
	IsReviewed          bool      `json:"is_reviewed"`
	IsApproved          bool      `json:"is_approved"`
	CreatedAt           time.Time `json:"created_at"`
}
