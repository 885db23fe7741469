// Package match scores normalized jobs against a user profile with an
// explainable multi-factor algorithm. Scoring is deterministic: identical
// inputs always produce identical results, with no external calls.
package match

import (
	"sort"
	"strings"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

// neutral is the sub-score used when a factor's input is absent on the
// profile side: unknown information is not negative evidence.
const neutral = 0.5

// missingCap bounds how many unmet requirement terms a result carries.
const missingCap = 20

type Matcher struct {
	Weights       config.Weights
	SalaryNeutral float64 // score for jobs without salary data
}

func New(cfg config.Config) Matcher {
	return Matcher{
		Weights:       cfg.Matching.Weights,
		SalaryNeutral: cfg.Matching.SalaryNeutral,
	}
}

// Score rates one job against one profile. The job is never mutated.
func (m Matcher) Score(job domain.NormalizedJob, profile domain.UserProfile) domain.MatchResult {
	text := strings.ToLower(job.Description + " " + job.Requirements)
	titleText := strings.ToLower(job.Title + " " + job.Description)

	skills, matched := skillsScore(profile, text)
	keywords := keywordMatches(profile.Keywords, titleText+" "+text)
	missing := missingRequirements(job.Requirements, profile)

	experience := experienceScore(profile.ExperienceLevel, titleText)
	location := locationScore(job, profile)
	salary := m.salaryScore(job, profile)

	overall := m.Weights.Skills*skills +
		m.Weights.Experience*experience +
		m.Weights.Location*location +
		m.Weights.Salary*salary
	overall = clamp01(overall)

	return domain.MatchResult{
		ProfileID:           profile.UserID,
		JobID:               job.ID,
		OverallScore:        overall,
		SkillsScore:         skills,
		ExperienceScore:     experience,
		LocationScore:       location,
		SalaryScore:         salary,
		MatchingKeywords:    uniqSorted(append(matched, keywords...)),
		MissingRequirements: missing,
	}
}

// skillsScore is the fraction of profile skills found in the job text.
func skillsScore(profile domain.UserProfile, text string) (float64, []string) {
	if len(profile.Skills) == 0 {
		return neutral, nil
	}
	var matched []string
	for _, skill := range profile.Skills {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s == "" {
			continue
		}
		if strings.Contains(text, s) {
			matched = append(matched, s)
		}
	}
	return float64(len(matched)) / float64(len(profile.Skills)), matched
}

func keywordMatches(keywords []string, text string) []string {
	var out []string
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k != "" && strings.Contains(text, k) {
			out = append(out, k)
		}
	}
	return out
}

// missingRequirements extracts requirement terms the profile does not
// cover: tokens from the requirements text absent from skills + keywords.
func missingRequirements(requirements string, profile domain.UserProfile) []string {
	if strings.TrimSpace(requirements) == "" {
		return nil
	}
	covered := tokenize(strings.Join(profile.Skills, " ") + " " + strings.Join(profile.Keywords, " "))

	var missing []string
	for term := range tokenize(requirements) {
		if !covered[term] {
			missing = append(missing, term)
		}
	}
	sort.Strings(missing)
	if len(missing) > missingCap {
		missing = missing[:missingCap]
	}
	return missing
}

// seniorityLadder orders experience levels; scoring decays with distance.
var seniorityLadder = []string{"intern", "junior", "mid", "senior", "lead", "principal"}

// seniorityTerms maps words seen in titles/descriptions to ladder levels.
var seniorityTerms = map[string]int{
	"intern": 0, "internship": 0,
	"junior": 1, "entry level": 1, "entry-level": 1, "graduate": 1,
	"mid": 2, "mid-level": 2, "intermediate": 2,
	"senior": 3, "sr.": 3, "sr ": 3,
	"lead": 4, "manager": 4,
	"principal": 5, "staff": 5, "architect": 5, "director": 5,
}

func ladderIndex(level string) int {
	level = strings.ToLower(strings.TrimSpace(level))
	for i, name := range seniorityLadder {
		if name == level {
			return i
		}
	}
	return -1
}

// experienceScore aligns seniority terms in the job text with the profile
// level. Exact level scores 1.0, adjacent levels partial credit, distant
// levels near zero. No signal on either side stays neutral.
func experienceScore(profileLevel, jobText string) float64 {
	want := ladderIndex(profileLevel)
	if want < 0 {
		return neutral
	}

	got := -1
	for term, level := range seniorityTerms {
		if strings.Contains(jobText, term) {
			// prefer the highest seniority the text mentions
			if level > got {
				got = level
			}
		}
	}
	if got < 0 {
		return neutral
	}

	switch dist := abs(want - got); dist {
	case 0:
		return 1.0
	case 1:
		return 0.6
	case 2:
		return 0.25
	default:
		return 0.1
	}
}

// locationScore gives full credit for a preferred-location hit or an
// acceptable remote job, partial credit for a same-region miss.
func locationScore(job domain.NormalizedJob, profile domain.UserProfile) float64 {
	remoteJob := job.EmploymentType == domain.EmploymentRemote ||
		strings.Contains(strings.ToLower(job.Location.String()), "remote")
	if remoteJob && profile.AcceptsRemote() {
		return 1.0
	}

	if len(profile.PreferredLocations) == 0 {
		return neutral
	}
	jobLoc := strings.ToLower(job.Location.String())
	if jobLoc == "" {
		return neutral
	}

	for _, pref := range profile.PreferredLocations {
		p := strings.ToLower(strings.TrimSpace(pref))
		if p == "" || p == "remote" {
			continue
		}
		if strings.Contains(jobLoc, p) || strings.Contains(p, jobLoc) {
			return 1.0
		}
	}

	// same-region partial credit: "Austin, TX" vs preferred "Dallas, TX"
	if region := regionOf(jobLoc, job.Location.Region); region != "" {
		for _, pref := range profile.PreferredLocations {
			if prefRegion := regionOf(strings.ToLower(pref), ""); prefRegion == region {
				return 0.5
			}
		}
	}
	return 0
}

func regionOf(loc, structured string) string {
	if s := strings.ToLower(strings.TrimSpace(structured)); s != "" {
		return s
	}
	parts := strings.Split(loc, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// salaryScore grades range overlap between the job's declared pay and the
// profile's desired range. Disjoint ranges score 0; absent data on either
// side scores the configured neutral default instead of penalizing it.
func (m Matcher) salaryScore(job domain.NormalizedJob, profile domain.UserProfile) float64 {
	if job.SalaryMin == nil && job.SalaryMax == nil {
		return m.SalaryNeutral
	}
	if profile.SalaryMin == nil && profile.SalaryMax == nil {
		return m.SalaryNeutral
	}

	jobLo, jobHi := bounds(job.SalaryMin, job.SalaryMax)
	wantLo, wantHi := bounds(profile.SalaryMin, profile.SalaryMax)

	overlap := minInt(jobHi, wantHi) - maxInt(jobLo, wantLo)
	if overlap < 0 {
		return 0
	}
	span := wantHi - wantLo
	if span <= 0 {
		// point-desire inside the job range
		return 1.0
	}
	return clamp01(float64(overlap) / float64(span))
}

func bounds(lo, hi *int) (int, int) {
	switch {
	case lo != nil && hi != nil:
		return *lo, *hi
	case lo != nil:
		return *lo, *lo
	default:
		return *hi, *hi
	}
}

func uniqSorted(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
