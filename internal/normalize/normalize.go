// Package normalize maps raw JobPosting blocks onto the canonical job
// entity. Every coercion is forgiving: bad values degrade to defaults and
// are reported as warnings, never as errors.
package normalize

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/urlutil"
)

// employmentTypes is the fixed lookup table from schema.org employmentType
// strings (and common informal variants) to the closed enum.
var employmentTypes = map[string]domain.EmploymentType{
	"full_time":      domain.EmploymentFullTime,
	"full-time":      domain.EmploymentFullTime,
	"fulltime":       domain.EmploymentFullTime,
	"permanent":      domain.EmploymentFullTime,
	"part_time":      domain.EmploymentPartTime,
	"part-time":      domain.EmploymentPartTime,
	"parttime":       domain.EmploymentPartTime,
	"contract":       domain.EmploymentContract,
	"contractor":     domain.EmploymentContract,
	"temporary":      domain.EmploymentContract,
	"freelance":      domain.EmploymentContract,
	"intern":         domain.EmploymentInternship,
	"internship":     domain.EmploymentInternship,
	"remote":         domain.EmploymentRemote,
	"telecommute":    domain.EmploymentRemote,
	"work_from_home": domain.EmploymentRemote,
	"hybrid":         domain.EmploymentHybrid,
}

// ParseEmploymentType maps a source string to the enum. Unrecognized input
// yields EmploymentUnknown, never an error.
func ParseEmploymentType(s string) domain.EmploymentType {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	if t, ok := employmentTypes[key]; ok {
		return t
	}
	return domain.EmploymentUnknown
}

// Warning records one field coerced to a default during normalization.
type Warning struct {
	Field  string
	Reason string
}

func (w Warning) String() string { return w.Field + ": " + w.Reason }

// Job builds a NormalizedJob from one raw record. source labels where the
// record came from ("schema", "email", ...). Warnings accompany the job;
// they are diagnostics, not failures.
func Job(rec domain.RawJobRecord, source string) (domain.NormalizedJob, []Warning) {
	var warns []Warning
	f := rec.Fields

	job := domain.NormalizedJob{
		Source:       source,
		DiscoveredAt: rec.DiscoveredAt.UTC(),
		LastSeenAt:   rec.DiscoveredAt.UTC(),
	}

	title, _ := f.Str("title")
	job.Title = CleanText(title)

	job.Company = extractCompany(f)
	job.Location = extractLocation(f)
	job.Description = CleanText(stringOr(f, "description"))
	job.Requirements = extractRequirements(f)
	job.Benefits = CleanText(stringOr(f, "jobBenefits"))

	// employment type: string or list of strings
	if et, ok := f.Str("employmentType"); ok {
		job.EmploymentType = ParseEmploymentType(et)
		if job.EmploymentType == domain.EmploymentUnknown && strings.TrimSpace(et) != "" {
			warns = append(warns, Warning{"employment_type", fmt.Sprintf("unrecognized %q", et)})
		}
	} else if l, ok := f.List("employmentType"); ok && len(l) > 0 {
		if s, ok := l[0].(string); ok {
			job.EmploymentType = ParseEmploymentType(s)
		}
	}
	if job.EmploymentType == "" {
		job.EmploymentType = domain.EmploymentUnknown
	}

	min, max, w := extractSalary(f)
	job.SalaryMin, job.SalaryMax = min, max
	warns = append(warns, w...)

	if posted, ok := parseDate(stringOr(f, "datePosted")); ok {
		job.PostedDate = &posted
	} else if s := stringOr(f, "datePosted"); s != "" {
		warns = append(warns, Warning{"posted_date", fmt.Sprintf("unparsable %q", s)})
	}

	job.ExternalURL = extractURL(f, rec.SourceURL)
	job.ApplicationEmail = extractEmail(f)
	if directApply, ok := f["directApply"].(bool); ok && directApply {
		job.ApplicationURL = job.ExternalURL
	}

	job.ExternalID = externalID(f, source, job.ExternalURL)

	return job, warns
}

// CleanText collapses whitespace and strips non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func stringOr(f domain.RawFields, key string) string {
	s, _ := f.Str(key)
	return s
}

func extractCompany(f domain.RawFields) string {
	for _, key := range []string{"hiringOrganization", "employer"} {
		if org, ok := f.FirstObj(key); ok {
			if name, ok := org.Str("name"); ok && CleanText(name) != "" {
				return CleanText(name)
			}
		}
		if s, ok := f.Str(key); ok && CleanText(s) != "" {
			return CleanText(s)
		}
	}
	return ""
}

func extractLocation(f domain.RawFields) domain.Location {
	if s, ok := f.Str("jobLocation"); ok {
		return domain.Location{Raw: CleanText(s)}
	}

	place, ok := f.FirstObj("jobLocation")
	if !ok {
		return domain.Location{}
	}

	if addr, ok := place.FirstObj("address"); ok {
		loc := domain.Location{
			City:   CleanText(stringOr(addr, "addressLocality")),
			Region: CleanText(stringOr(addr, "addressRegion")),
		}
		// addressCountry is a string or a Country object
		if c, ok := addr.Str("addressCountry"); ok {
			loc.Country = CleanText(c)
		} else if cObj, ok := addr.Obj("addressCountry"); ok {
			loc.Country = CleanText(stringOr(cObj, "name"))
		}
		if !loc.IsZero() {
			return loc
		}
	}
	if s, ok := place.Str("address"); ok && CleanText(s) != "" {
		return domain.Location{Raw: CleanText(s)}
	}
	if name, ok := place.Str("name"); ok && CleanText(name) != "" {
		return domain.Location{Raw: CleanText(name)}
	}
	return domain.Location{}
}

func extractRequirements(f domain.RawFields) string {
	var parts []string
	for _, key := range []string{"qualifications", "experienceRequirements", "skills"} {
		if s := CleanText(stringOr(f, key)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// extractSalary reads baseSalary in its common shapes: a MonetaryAmount
// with a QuantitativeValue under "value", or bare minValue/maxValue/value.
// A single value is treated as both bounds; swapped bounds are sorted.
func extractSalary(f domain.RawFields) (min, max *int, warns []Warning) {
	base, ok := f.FirstObj("baseSalary")
	if !ok {
		return nil, nil, nil
	}

	amount := base
	if v, ok := base.FirstObj("value"); ok {
		amount = v
	}

	lo, loOK := numField(amount, "minValue")
	hi, hiOK := numField(amount, "maxValue")
	single, singleOK := numField(amount, "value")

	switch {
	case loOK && hiOK:
	case loOK:
		hi, hiOK = lo, true
	case hiOK:
		lo, loOK = hi, true
	case singleOK:
		lo, hi = single, single
		loOK, hiOK = true, true
	default:
		return nil, nil, nil
	}

	if lo > hi {
		lo, hi = hi, lo
		warns = append(warns, Warning{"salary", "swapped bounds corrected"})
	}
	loInt, hiInt := int(lo), int(hi)
	return &loInt, &hiInt, warns
}

// numField tolerates numbers serialized as strings ("90000").
func numField(f domain.RawFields, key string) (float64, bool) {
	if n, ok := f.Num(key); ok {
		return n, true
	}
	if s, ok := f.Str(key); ok {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func extractURL(f domain.RawFields, sourceURL string) string {
	raw := stringOr(f, "url")
	if raw == "" {
		return urlutil.Canonicalize(sourceURL)
	}
	// resolve relative urls against the page they came from
	if base, err := url.Parse(sourceURL); err == nil {
		if abs := urlutil.Resolve(base, raw); abs != "" {
			return urlutil.Canonicalize(abs)
		}
	}
	return urlutil.Canonicalize(sourceURL)
}

func extractEmail(f domain.RawFields) string {
	if contact, ok := f.FirstObj("applicationContact"); ok {
		if email, ok := contact.Str("email"); ok {
			return strings.TrimSpace(strings.TrimPrefix(email, "mailto:"))
		}
	}
	return ""
}

// externalID prefers the source-assigned identifier; otherwise it derives
// a stable id from the canonicalized URL so re-discovery maps to the same
// row.
func externalID(f domain.RawFields, source, externalURL string) string {
	if id, ok := f.Str("identifier"); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	if obj, ok := f.FirstObj("identifier"); ok {
		if v, ok := obj.Str("value"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		if n, ok := obj.Num("value"); ok {
			return strconv.FormatInt(int64(n), 10)
		}
	}
	if n, ok := f.Num("identifier"); ok {
		return strconv.FormatInt(int64(n), 10)
	}
	return "url:" + urlutil.Hash(source+"|"+externalURL)
}
