// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"jobscout-engine/internal/domain"
)

type Weights struct {
	Skills     float64 `yaml:"skills"`
	Experience float64 `yaml:"experience"`
	Location   float64 `yaml:"location"`
	Salary     float64 `yaml:"salary"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Crawl struct {
		Concurrency     int     `yaml:"concurrency"`      // orgs in flight
		PerHostRPS      float64 `yaml:"per_host_rps"`     // politeness
		Burst           int     `yaml:"burst"`
		TimeoutSeconds  int     `yaml:"timeout_seconds"`  // per fetch
		MaxAttempts     int     `yaml:"max_attempts"`     // transient retries
		MaxCandidates   int     `yaml:"max_candidates"`   // per org
		IntervalSeconds int     `yaml:"interval_seconds"` // scheduler
	} `yaml:"crawl"`

	Filters struct {
		Keywords  []string `yaml:"keywords"`
		Locations []string `yaml:"locations"`
		JobTypes  []string `yaml:"job_types"`
	} `yaml:"filters"`

	Matching struct {
		Weights       Weights `yaml:"weights"`
		SalaryNeutral float64 `yaml:"salary_neutral"` // score when salary data absent
	} `yaml:"matching"`

	Profile struct {
		Skills             []string `yaml:"skills"`
		ExperienceLevel    string   `yaml:"experience_level"`
		PreferredLocations []string `yaml:"preferred_locations"`
		PreferredJobTypes  []string `yaml:"preferred_job_types"`
		Keywords           []string `yaml:"keywords"`
		SalaryMin          int      `yaml:"salary_min"`
		SalaryMax          int      `yaml:"salary_max"`
		MinMatchScore      float64  `yaml:"min_match_score"`
	} `yaml:"profile"`

	Sources struct {
		Organizations []domain.OrgSpec `yaml:"organizations"`
	} `yaml:"sources"`

	Email struct {
		Enabled          bool     `yaml:"enabled"`
		IMAPHost         string   `yaml:"imap_host"`
		IMAPPort         int      `yaml:"imap_port"`
		Username         string   `yaml:"username"`
		Mailbox          string   `yaml:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any"`
		MaxMessages      int      `yaml:"max_messages"`
	} `yaml:"email"`
}

// OrganizationsFile mirrors the overlay file shape (organizations only).
type OrganizationsFile struct {
	Sources struct {
		Organizations []domain.OrgSpec `yaml:"organizations"`
	} `yaml:"sources"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 38471
	}
	if cfg.Crawl.Concurrency <= 0 {
		cfg.Crawl.Concurrency = 4
	}
	if cfg.Crawl.PerHostRPS <= 0 {
		cfg.Crawl.PerHostRPS = 0.5
	}
	if cfg.Crawl.Burst <= 0 {
		cfg.Crawl.Burst = 1
	}
	if cfg.Crawl.TimeoutSeconds <= 0 {
		cfg.Crawl.TimeoutSeconds = 20
	}
	if cfg.Crawl.MaxAttempts <= 0 {
		cfg.Crawl.MaxAttempts = 3
	}
	if cfg.Crawl.MaxCandidates <= 0 {
		cfg.Crawl.MaxCandidates = 50
	}
	if cfg.Crawl.IntervalSeconds <= 0 {
		cfg.Crawl.IntervalSeconds = 3600
	}
	if cfg.Matching.Weights == (Weights{}) {
		cfg.Matching.Weights = Weights{Skills: 0.40, Experience: 0.15, Location: 0.25, Salary: 0.20}
	}
	if cfg.Matching.SalaryNeutral == 0 {
		cfg.Matching.SalaryNeutral = 0.5
	}
	if cfg.Profile.MinMatchScore == 0 {
		cfg.Profile.MinMatchScore = 0.5
	}
	if cfg.Email.Mailbox == "" {
		cfg.Email.Mailbox = "INBOX"
	}
	if cfg.Email.MaxMessages <= 0 {
		cfg.Email.MaxMessages = 50
	}
}

// UserProfile builds the matching profile from config. The engine is
// single-user locally; the userID tags results for the API.
func (c Config) UserProfile(userID string) domain.UserProfile {
	p := domain.UserProfile{
		UserID:             userID,
		Skills:             c.Profile.Skills,
		ExperienceLevel:    c.Profile.ExperienceLevel,
		PreferredLocations: c.Profile.PreferredLocations,
		Keywords:           c.Profile.Keywords,
		MinMatchScore:      c.Profile.MinMatchScore,
	}
	for _, t := range c.Profile.PreferredJobTypes {
		p.PreferredJobTypes = append(p.PreferredJobTypes, domain.EmploymentType(t))
	}
	if c.Profile.SalaryMin > 0 {
		v := c.Profile.SalaryMin
		p.SalaryMin = &v
	}
	if c.Profile.SalaryMax > 0 {
		v := c.Profile.SalaryMax
		p.SalaryMax = &v
	}
	return p
}
