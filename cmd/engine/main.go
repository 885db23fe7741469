package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/discover"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/emailalert"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/fetch"
	"jobscout-engine/internal/httpapi"
	"jobscout-engine/internal/match"
	"jobscout-engine/internal/scheduler"
	"jobscout-engine/internal/secrets"
	"jobscout-engine/internal/session"
	"jobscout-engine/internal/store"
)

const profileID = "local"

func main() {
	// Engine data dir: use env if provided (the UI can pass one), else local folder.
	dataDir := os.Getenv("JOBSCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	unlock, err := lockDataDir(dataDir)
	if err != nil {
		log.Fatalf("another engine instance owns %s: %v", dataDir, err)
	}
	defer unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		// optional orgs overlay next to the user config
		if err := config.OverlayOrganizations(&cfg, filepath.Join(dataDir, "organizations.yml")); err != nil {
			log.Printf("[config] organizations overlay skipped: %v", err)
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "jobscout.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	hub := events.NewHub()

	var runStatus atomic.Value
	runStatus.Store(httpapi.RunStatus{})

	runSession := func(ctx context.Context, cfg config.Config) (domain.ScrapingSession, error) {
		coord := buildCoordinator(db, hub, cfg)
		return coord.Run(ctx, cfg.Sources.Organizations, sessionFilters(cfg), cfg.UserProfile(profileID))
	}
	rescore := func(ctx context.Context, cfg config.Config) (int, error) {
		m := match.New(cfg)
		return session.RescoreAll(ctx, store.NewService(db), &m, cfg.UserProfile(profileID), hub)
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		RunStatus:   &runStatus,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		RunSession:  runSession,
		Rescore:     rescore,
	})

	// Periodic discovery, driven by whatever config is current at tick time.
	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()
	go scheduler.Every(schedCtx, time.Duration(cfg.Crawl.IntervalSeconds)*time.Second, "discovery", func(ctx context.Context) error {
		cur := cfgVal.Load().(config.Config)
		if len(cur.Sources.Organizations) == 0 && !cur.Email.Enabled {
			return nil
		}
		sess, err := runSession(ctx, cur)
		if err != nil {
			return err
		}
		log.Printf("[discovery] session=%d status=%s new=%d updated=%d", sess.ID, sess.Status, sess.JobsNew, sess.JobsUpdated)
		return nil
	})

	addr := net.JoinHostPort("127.0.0.1", portString(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))
	log.Printf("shutdown token: %s", token)

	srv.Handler = httpapi.Chain(mux,
		httpapi.Recover,
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Cors,
	)

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// buildCoordinator assembles the crawl pipeline from the current config.
// Rebuilt per run so limiter and timeouts track config edits.
func buildCoordinator(db *store.DB, hub *events.Hub, cfg config.Config) *session.Coordinator {
	fetcher := fetch.New(fetch.Options{
		Timeout:     time.Duration(cfg.Crawl.TimeoutSeconds) * time.Second,
		MaxAttempts: cfg.Crawl.MaxAttempts,
		Limiter:     fetch.NewHostLimiter(cfg.Crawl.PerHostRPS, cfg.Crawl.Burst),
	})
	matcher := match.New(cfg)

	var alerts session.AlertSource
	if cfg.Email.Enabled {
		alerts = emailalert.NewSource(cfg, func() (string, error) {
			return secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
		})
	}

	return &session.Coordinator{
		Store:       store.NewService(db),
		Discoverer:  discover.New(fetcher, cfg.Crawl.MaxCandidates),
		Fetcher:     fetcher,
		Matcher:     &matcher,
		Hub:         hub,
		Alerts:      alerts,
		Concurrency: cfg.Crawl.Concurrency,
	}
}

func sessionFilters(cfg config.Config) domain.SessionFilters {
	f := domain.SessionFilters{
		Keywords:  cfg.Filters.Keywords,
		Locations: cfg.Filters.Locations,
	}
	for _, t := range cfg.Filters.JobTypes {
		f.JobTypes = append(f.JobTypes, domain.EmploymentType(t))
	}
	return f
}
