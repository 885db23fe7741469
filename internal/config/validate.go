package config

import (
	"fmt"
	"net/url"
	"strings"

	"jobscout-engine/internal/domain"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var knownJobTypes = map[string]bool{
	string(domain.EmploymentFullTime):   true,
	string(domain.EmploymentPartTime):   true,
	string(domain.EmploymentContract):   true,
	string(domain.EmploymentInternship): true,
	string(domain.EmploymentRemote):     true,
	string(domain.EmploymentHybrid):     true,
	string(domain.EmploymentUnknown):    true,
}

// NormalizeAndValidate returns a normalized copy plus validation results.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.Keywords = trimList(out.Filters.Keywords)
	out.Filters.Locations = trimList(out.Filters.Locations)
	out.Filters.JobTypes = trimList(out.Filters.JobTypes)
	out.Profile.Skills = trimList(out.Profile.Skills)
	out.Profile.PreferredLocations = trimList(out.Profile.PreferredLocations)
	out.Profile.Keywords = trimList(out.Profile.Keywords)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Crawl.Concurrency > 32 {
		res.addWarn("crawl.concurrency is very high (%d); outbound connections may get throttled.", out.Crawl.Concurrency)
	}
	if out.Crawl.PerHostRPS > 2 {
		res.addWarn("crawl.per_host_rps %.1f is impolite for most career sites.", out.Crawl.PerHostRPS)
	}

	for i, org := range out.Sources.Organizations {
		if strings.TrimSpace(org.Name) == "" {
			res.addErr("sources.organizations[%d].name is required", i)
		}
		u, err := url.Parse(strings.TrimSpace(org.RootURL))
		if err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("sources.organizations[%d].root_url must be an absolute URL", i)
		}
	}

	for _, t := range out.Filters.JobTypes {
		if !knownJobTypes[strings.ToLower(t)] {
			res.addWarn("filters.job_types contains unrecognized type %q; it will never match.", t)
		}
	}
	for _, t := range out.Profile.PreferredJobTypes {
		if !knownJobTypes[strings.ToLower(t)] {
			res.addWarn("profile.preferred_job_types contains unrecognized type %q.", t)
		}
	}

	w := out.Matching.Weights
	sum := w.Skills + w.Experience + w.Location + w.Salary
	if w.Skills < 0 || w.Experience < 0 || w.Location < 0 || w.Salary < 0 {
		res.addErr("matching.weights must all be >= 0")
	} else if sum < 0.99 || sum > 1.01 {
		res.addWarn("matching.weights sum to %.2f, not 1.0; overall scores will be skewed.", sum)
	}
	if out.Matching.SalaryNeutral < 0 || out.Matching.SalaryNeutral > 1 {
		res.addErr("matching.salary_neutral must be within 0..1")
	}
	if out.Profile.MinMatchScore < 0 || out.Profile.MinMatchScore > 1 {
		res.addErr("profile.min_match_score must be within 0..1")
	}
	if out.Profile.SalaryMin > 0 && out.Profile.SalaryMax > 0 && out.Profile.SalaryMin > out.Profile.SalaryMax {
		res.addErr("profile.salary_min exceeds profile.salary_max")
	}

	// email required fields if enabled (password lives in the keychain)
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; alert ingestion may find nothing.")
		}
	}

	if len(out.Sources.Organizations) == 0 && !out.Email.Enabled {
		res.addWarn("no organizations configured and email ingestion disabled; discovery runs will be empty.")
	}

	return out, res
}
