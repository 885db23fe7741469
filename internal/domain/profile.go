package domain

import "strings"

// UserProfile is the read-only matching input. It is owned by the profile
// collaborator; the engine never mutates it.
type UserProfile struct {
	UserID             string           `json:"user_id"`
	Skills             []string         `json:"skills"`
	ExperienceLevel    string           `json:"experience_level"` // intern/junior/mid/senior/lead/principal
	PreferredLocations []string         `json:"preferred_locations"`
	PreferredJobTypes  []EmploymentType `json:"preferred_job_types"`
	PreferredIndus     []string         `json:"preferred_industries"`
	Keywords           []string         `json:"keywords"`
	SalaryMin          *int             `json:"salary_min,omitempty"`
	SalaryMax          *int             `json:"salary_max,omitempty"`
	MinMatchScore      float64          `json:"min_match_score"`
}

// AcceptsRemote reports whether remote work satisfies the profile's
// location or job-type preferences.
func (p UserProfile) AcceptsRemote() bool {
	for _, t := range p.PreferredJobTypes {
		if t == EmploymentRemote {
			return true
		}
	}
	for _, l := range p.PreferredLocations {
		if strings.EqualFold(strings.TrimSpace(l), "remote") {
			return true
		}
	}
	return false
}
