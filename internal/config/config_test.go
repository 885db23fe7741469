package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "app:\n  port: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 38471, cfg.App.Port)
	assert.Equal(t, 4, cfg.Crawl.Concurrency)
	assert.Equal(t, 0.5, cfg.Crawl.PerHostRPS)
	assert.Equal(t, 1, cfg.Crawl.Burst)
	assert.Equal(t, 20, cfg.Crawl.TimeoutSeconds)
	assert.Equal(t, 3, cfg.Crawl.MaxAttempts)
	assert.Equal(t, 50, cfg.Crawl.MaxCandidates)
	assert.Equal(t, 3600, cfg.Crawl.IntervalSeconds)
	assert.Equal(t, Weights{Skills: 0.40, Experience: 0.15, Location: 0.25, Salary: 0.20}, cfg.Matching.Weights)
	assert.Equal(t, 0.5, cfg.Matching.SalaryNeutral)
	assert.Equal(t, 0.5, cfg.Profile.MinMatchScore)
	assert.Equal(t, "INBOX", cfg.Email.Mailbox)
	assert.Equal(t, 50, cfg.Email.MaxMessages)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
app:
  port: 9000
crawl:
  concurrency: 8
  per_host_rps: 1.5
matching:
  weights:
    skills: 0.5
    experience: 0.1
    location: 0.2
    salary: 0.2
sources:
  organizations:
    - name: acme
      root_url: https://acme.example
      path_hints: ["/careers"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, 8, cfg.Crawl.Concurrency)
	assert.Equal(t, 1.5, cfg.Crawl.PerHostRPS)
	assert.Equal(t, 0.5, cfg.Matching.Weights.Skills)
	require.Len(t, cfg.Sources.Organizations, 1)
	assert.Equal(t, "acme", cfg.Sources.Organizations[0].Name)
	assert.Equal(t, []string{"/careers"}, cfg.Sources.Organizations[0].PathHints)
}

func TestNormalizeAndValidate(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	cfg.Profile.Skills = []string{" Go ", "go", "", "SQLite"}
	cfg.Filters.JobTypes = []string{"full_time", "freelance"}

	out, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"Go", "SQLite"}, out.Profile.Skills, "trimmed and case-insensitively deduped")
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "freelance")
}

func TestNormalizeAndValidateErrors(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	cfg.App.Port = 70000
	cfg.Matching.SalaryNeutral = 1.5
	cfg.Profile.SalaryMin = 90000
	cfg.Profile.SalaryMax = 60000
	cfg.Sources.Organizations = []domain.OrgSpec{{Name: "", RootURL: "not a url"}}
	cfg.Email.Enabled = true // host/port/username missing

	_, res := NormalizeAndValidate(cfg)
	assert.False(t, res.OK())
	joined := ""
	for _, e := range res.Errors {
		joined += e + "\n"
	}
	assert.Contains(t, joined, "app.port")
	assert.Contains(t, joined, "salary_neutral")
	assert.Contains(t, joined, "salary_min exceeds")
	assert.Contains(t, joined, "organizations[0].name")
	assert.Contains(t, joined, "organizations[0].root_url")
	assert.Contains(t, joined, "email.imap_host")
	assert.Contains(t, joined, "email.username")
}

func TestWeightSumWarning(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	cfg.Matching.Weights = Weights{Skills: 0.5, Experience: 0.5, Location: 0.5, Salary: 0.5}

	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK(), "a skewed sum warns but does not error")
	found := false
	for _, w := range res.Warnings {
		if w == "matching.weights sum to 2.00, not 1.0; overall scores will be skewed." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSaveAtomicRoundTripAndBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	var cfg Config
	applyDefaults(&cfg)
	cfg.Profile.Skills = []string{"go", "sqlite"}
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sqlite"}, got.Profile.Skills)

	// second save keeps the previous file as .bak
	cfg.Profile.Skills = []string{"rust"}
	require.NoError(t, SaveAtomic(path, cfg))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)

	bak, err := Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sqlite"}, bak.Profile.Skills)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	cfg.App.Port = -1

	path := filepath.Join(t.TempDir(), "config.yml")
	err := SaveAtomic(path, cfg)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid config never reaches disk")
}

func TestOverlayOrganizations(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	cfg.Sources.Organizations = []domain.OrgSpec{{Name: "old", RootURL: "https://old.example"}}

	dir := t.TempDir()
	orgsPath := filepath.Join(dir, "organizations.yml")
	require.NoError(t, os.WriteFile(orgsPath, []byte(`
sources:
  organizations:
    - name: acme
      root_url: https://acme.example
    - name: globex
      root_url: https://globex.example
`), 0o644))

	require.NoError(t, OverlayOrganizations(&cfg, orgsPath))
	require.Len(t, cfg.Sources.Organizations, 2)
	assert.Equal(t, "acme", cfg.Sources.Organizations[0].Name)

	// a missing file leaves the config untouched
	cfg.Sources.Organizations = []domain.OrgSpec{{Name: "kept", RootURL: "https://kept.example"}}
	require.NoError(t, OverlayOrganizations(&cfg, filepath.Join(dir, "nope.yml")))
	require.Len(t, cfg.Sources.Organizations, 1)
	assert.Equal(t, "kept", cfg.Sources.Organizations[0].Name)
}

func TestEnsureUserConfig(t *testing.T) {
	dataDir := t.TempDir()

	// no shipped default: code defaults get written
	path, err := EnsureUserConfig(dataDir, filepath.Join(dataDir, "missing-default.yml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 38471, cfg.App.Port)

	// second call returns the existing file untouched
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 12345\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, "")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	cfg, err = Load(again)
	require.NoError(t, err)
	assert.Equal(t, 12345, cfg.App.Port)
}

func TestUserProfile(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	cfg.Profile.Skills = []string{"go"}
	cfg.Profile.ExperienceLevel = "senior"
	cfg.Profile.PreferredJobTypes = []string{"remote", "full_time"}
	cfg.Profile.SalaryMin = 80000

	p := cfg.UserProfile("local")
	assert.Equal(t, "local", p.UserID)
	assert.Equal(t, []string{"go"}, p.Skills)
	assert.Equal(t, "senior", p.ExperienceLevel)
	assert.Equal(t, []domain.EmploymentType{domain.EmploymentRemote, domain.EmploymentFullTime}, p.PreferredJobTypes)
	require.NotNil(t, p.SalaryMin)
	assert.Equal(t, 80000, *p.SalaryMin)
	assert.Nil(t, p.SalaryMax)
	assert.Equal(t, 0.5, p.MinMatchScore)
	assert.True(t, p.AcceptsRemote())
}