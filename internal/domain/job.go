package domain

import "time"

// EmploymentType is the closed set of employment classifications.
// Unrecognized source values always map to EmploymentUnknown.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentRemote     EmploymentType = "remote"
	EmploymentHybrid     EmploymentType = "hybrid"
	EmploymentUnknown    EmploymentType = "unknown"
)

// Location is a structured job location. When only free text is available,
// Raw is set and the structured fields stay empty.
type Location struct {
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

func (l Location) IsZero() bool {
	return l.City == "" && l.Region == "" && l.Country == "" && l.Raw == ""
}

// String renders "City, Region, Country" or the raw text.
func (l Location) String() string {
	if l.City == "" && l.Region == "" && l.Country == "" {
		return l.Raw
	}
	out := ""
	for _, p := range []string{l.City, l.Region, l.Country} {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}

// NormalizedJob is the canonical job entity. Immutable once stored except
// for LastSeenAt, which advances when the same listing is rediscovered.
type NormalizedJob struct {
	ID               int64          `json:"id,omitempty"`
	Title            string         `json:"title"`
	Company          string         `json:"company"`
	Location         Location       `json:"location"`
	Description      string         `json:"description,omitempty"`
	Requirements     string         `json:"requirements,omitempty"`
	Benefits         string         `json:"benefits,omitempty"`
	SalaryMin        *int           `json:"salary_min,omitempty"`
	SalaryMax        *int           `json:"salary_max,omitempty"`
	EmploymentType   EmploymentType `json:"employment_type"`
	Source           string         `json:"source"`
	ExternalID       string         `json:"external_id"`
	ExternalURL      string         `json:"external_url"`
	ApplicationURL   string         `json:"application_url,omitempty"`
	ApplicationEmail string         `json:"application_email,omitempty"`
	PostedDate       *time.Time     `json:"posted_date,omitempty"`
	DiscoveredAt     time.Time      `json:"discovered_at"`
	LastSeenAt       time.Time      `json:"last_seen_at"`
}

// FieldCount reports how many optional fields carry data. Dedup merging
// keeps the more complete record.
func (j NormalizedJob) FieldCount() int {
	n := 0
	for _, s := range []string{
		j.Title, j.Company, j.Description, j.Requirements, j.Benefits,
		j.ApplicationURL, j.ApplicationEmail, j.Location.String(),
	} {
		if s != "" {
			n++
		}
	}
	if j.SalaryMin != nil {
		n++
	}
	if j.SalaryMax != nil {
		n++
	}
	if j.PostedDate != nil {
		n++
	}
	if j.EmploymentType != EmploymentUnknown && j.EmploymentType != "" {
		n++
	}
	return n
}

// JobSignature is the dedup key derived from normalized content. It is not
// an identity: the (source, external_id) pair stays canonical.
type JobSignature string
