package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

func testMatcher() Matcher {
	var cfg config.Config
	cfg.Matching.Weights = config.Weights{Skills: 0.40, Experience: 0.15, Location: 0.25, Salary: 0.20}
	cfg.Matching.SalaryNeutral = 0.5
	return New(cfg)
}

func intp(v int) *int { return &v }

func TestScoreDeterministic(t *testing.T) {
	m := testMatcher()
	job := domain.NormalizedJob{
		ID:           7,
		Title:        "Senior Backend Engineer",
		Company:      "Acme",
		Description:  "We build Go services on Kubernetes with Postgres.",
		Requirements: "Go Kubernetes Postgres Terraform",
		Location:     domain.Location{City: "Austin", Region: "TX"},
		SalaryMin:    intp(120000),
		SalaryMax:    intp(150000),
	}
	profile := domain.UserProfile{
		UserID:             "local",
		Skills:             []string{"Go", "Kubernetes", "Rust"},
		ExperienceLevel:    "senior",
		PreferredLocations: []string{"Austin, TX"},
		Keywords:           []string{"backend"},
		SalaryMin:          intp(110000),
		SalaryMax:          intp(140000),
	}

	a := m.Score(job, profile)
	b := m.Score(job, profile)
	assert.Equal(t, a, b)

	assert.Equal(t, "local", a.ProfileID)
	assert.Equal(t, int64(7), a.JobID)
	assert.InDelta(t, 2.0/3.0, a.SkillsScore, 1e-9)
	assert.Equal(t, 1.0, a.ExperienceScore)
	assert.Equal(t, 1.0, a.LocationScore)
	assert.Contains(t, a.MatchingKeywords, "go")
	assert.Contains(t, a.MatchingKeywords, "backend")
	assert.Contains(t, a.MissingRequirements, "terraform")
	assert.NotContains(t, a.MissingRequirements, "kubernetes")
	assert.True(t, a.OverallScore > 0 && a.OverallScore <= 1)
}

func TestSkillsScoreNoSkillsNeutral(t *testing.T) {
	score, matched := skillsScore(domain.UserProfile{}, "anything")
	assert.Equal(t, neutral, score)
	assert.Empty(t, matched)
}

func TestExperienceScoreDistanceDecay(t *testing.T) {
	cases := []struct {
		level string
		text  string
		want  float64
	}{
		{"senior", "senior engineer wanted", 1.0},
		{"senior", "lead engineer wanted", 0.6},
		{"senior", "mid-level engineer wanted", 0.6},
		{"senior", "junior engineer wanted", 0.25},
		{"senior", "internship opening", 0.1},
		{"senior", "engineer wanted", neutral}, // no signal in text
		{"", "senior engineer wanted", neutral}, // no profile level
		{"principal", "staff engineer", 1.0},
	}
	for _, tc := range cases {
		got := experienceScore(tc.level, tc.text)
		assert.Equal(t, tc.want, got, "level=%q text=%q", tc.level, tc.text)
	}
}

func TestLocationScore(t *testing.T) {
	profile := domain.UserProfile{PreferredLocations: []string{"Dallas, TX", "remote"}}

	t.Run("remote job accepted", func(t *testing.T) {
		job := domain.NormalizedJob{EmploymentType: domain.EmploymentRemote}
		assert.Equal(t, 1.0, locationScore(job, profile))
	})

	t.Run("exact city", func(t *testing.T) {
		job := domain.NormalizedJob{Location: domain.Location{City: "Dallas", Region: "TX"}}
		assert.Equal(t, 1.0, locationScore(job, profile))
	})

	t.Run("same region partial", func(t *testing.T) {
		job := domain.NormalizedJob{Location: domain.Location{City: "Austin", Region: "TX"}}
		assert.Equal(t, 0.5, locationScore(job, profile))
	})

	t.Run("different region zero", func(t *testing.T) {
		job := domain.NormalizedJob{Location: domain.Location{City: "Portland", Region: "OR"}}
		assert.Equal(t, 0.0, locationScore(job, profile))
	})

	t.Run("no job location neutral", func(t *testing.T) {
		job := domain.NormalizedJob{}
		assert.Equal(t, neutral, locationScore(job, profile))
	})

	t.Run("no preferences neutral", func(t *testing.T) {
		job := domain.NormalizedJob{Location: domain.Location{City: "Oslo"}}
		assert.Equal(t, neutral, locationScore(job, domain.UserProfile{}))
	})
}

func TestSalaryScore(t *testing.T) {
	m := testMatcher()

	t.Run("partial overlap", func(t *testing.T) {
		job := domain.NormalizedJob{SalaryMin: intp(70000), SalaryMax: intp(90000)}
		profile := domain.UserProfile{SalaryMin: intp(80000), SalaryMax: intp(100000)}
		assert.InDelta(t, 0.5, m.salaryScore(job, profile), 1e-9)
	})

	t.Run("full coverage", func(t *testing.T) {
		job := domain.NormalizedJob{SalaryMin: intp(80000), SalaryMax: intp(200000)}
		profile := domain.UserProfile{SalaryMin: intp(90000), SalaryMax: intp(120000)}
		assert.Equal(t, 1.0, m.salaryScore(job, profile))
	})

	t.Run("disjoint", func(t *testing.T) {
		job := domain.NormalizedJob{SalaryMin: intp(40000), SalaryMax: intp(60000)}
		profile := domain.UserProfile{SalaryMin: intp(90000), SalaryMax: intp(120000)}
		assert.Equal(t, 0.0, m.salaryScore(job, profile))
	})

	t.Run("job without salary neutral", func(t *testing.T) {
		profile := domain.UserProfile{SalaryMin: intp(90000)}
		assert.Equal(t, 0.5, m.salaryScore(domain.NormalizedJob{}, profile))
	})

	t.Run("profile without desire neutral", func(t *testing.T) {
		job := domain.NormalizedJob{SalaryMin: intp(90000), SalaryMax: intp(100000)}
		assert.Equal(t, 0.5, m.salaryScore(job, domain.UserProfile{}))
	})

	t.Run("point desire inside range", func(t *testing.T) {
		job := domain.NormalizedJob{SalaryMin: intp(80000), SalaryMax: intp(120000)}
		profile := domain.UserProfile{SalaryMin: intp(100000)}
		assert.Equal(t, 1.0, m.salaryScore(job, profile))
	})
}

func TestOverallNeutralInputs(t *testing.T) {
	m := testMatcher()
	// everything absent: all factors neutral, overall = 0.5 by weight sum
	res := m.Score(domain.NormalizedJob{Title: "Dev", Company: "Acme"}, domain.UserProfile{UserID: "local"})
	assert.InDelta(t, 0.5, res.OverallScore, 1e-9)
}

func TestMissingRequirementsCapped(t *testing.T) {
	long := ""
	for _, w := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
		"india", "juliett", "kilo", "lima", "mike", "november", "oscar", "papa",
		"quebec", "romeo", "sierra", "tango", "uniform", "victor", "whiskey", "xray"} {
		long += w + " "
	}
	missing := missingRequirements(long, domain.UserProfile{})
	require.Len(t, missing, missingCap)
	// deterministic order
	assert.Equal(t, missing, missingRequirements(long, domain.UserProfile{}))
}

func TestTokenizeKeepsTechTerms(t *testing.T) {
	kw := tokenize("Expert in C++ and Node.js required")
	assert.True(t, kw["c++"])
	assert.True(t, kw["node.js"])
	assert.False(t, kw["required"]) // stop word
	assert.False(t, kw["in"])      // too short
}
