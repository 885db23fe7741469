package session

import (
	"strings"

	"jobscout-engine/internal/domain"
)

// ShouldKeep decides whether one normalized job passes the session filters.
// Empty filter dimensions match everything; populated ones require at least
// one hit.
func ShouldKeep(f domain.SessionFilters, j domain.NormalizedJob) (keep bool, reason string) {
	if !passesKeywords(f.Keywords, j) {
		return false, "no_keyword_match"
	}
	if !passesLocation(f.Locations, j) {
		return false, "location"
	}
	if !passesJobType(f.JobTypes, j) {
		return false, "job_type"
	}
	return true, ""
}

func passesKeywords(keywords []string, j domain.NormalizedJob) bool {
	if len(keywords) == 0 {
		return true
	}
	text := strings.ToLower(j.Title + " " + j.Description + " " + j.Requirements)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func passesLocation(locations []string, j domain.NormalizedJob) bool {
	if len(locations) == 0 {
		return true
	}
	text := strings.ToLower(j.Location.String())
	// remote-typed listings satisfy any location filter
	if j.EmploymentType == domain.EmploymentRemote || strings.Contains(text, "remote") {
		return true
	}
	for _, loc := range locations {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if loc == "" {
			continue
		}
		if strings.Contains(text, loc) {
			return true
		}
	}
	return false
}

func passesJobType(types []domain.EmploymentType, j domain.NormalizedJob) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == j.EmploymentType {
			return true
		}
	}
	return false
}
