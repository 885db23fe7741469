package domain

import "time"

// Session status values. A session is terminal once it leaves running.
const (
	SessionRunning   = "running"
	SessionCompleted = "completed"
	SessionFailed    = "failed"
)

// OrgSpec names one organization to crawl: its root URL plus optional
// known career-path hints (e.g. "/careers/").
type OrgSpec struct {
	Name      string   `yaml:"name" json:"name"`
	RootURL   string   `yaml:"root_url" json:"root_url"`
	PathHints []string `yaml:"path_hints,omitempty" json:"path_hints,omitempty"`
}

// SessionFilters scope which normalized jobs a discovery run keeps.
type SessionFilters struct {
	Keywords   []string         `json:"keywords,omitempty"`
	Locations  []string         `json:"locations,omitempty"`
	JobTypes   []EmploymentType `json:"job_types,omitempty"`
	MaxResults int              `json:"max_results,omitempty"`
}

// OrgError records a per-organization failure. It never fails the session.
type OrgError struct {
	Org     string `json:"org"`
	Message string `json:"message"`
}

// ScrapingSession is the run-level aggregate for one discovery run.
type ScrapingSession struct {
	ID           int64          `json:"id"`
	Filters      SessionFilters `json:"filters"`
	JobsFound    int            `json:"jobs_found"`
	JobsNew      int            `json:"jobs_new"`
	JobsUpdated  int            `json:"jobs_updated"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	OrgErrors    []OrgError     `json:"org_errors,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	DurationSecs int            `json:"duration_seconds,omitempty"`
}
