package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Jobs
	jh := JobsHandler{DB: d.DB}
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    jh.GetByPath, // expects /jobs/{id}
		http.MethodDelete: jh.DeleteByPath,
	}))

	// Matches
	mh := MatchesHandler{DB: d.DB, CfgVal: d.CfgVal}
	mux.HandleFunc("/matches", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: mh.List,
	}))
	mux.HandleFunc("/matches/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: mh.ReviewByPath, // expects /matches/{id}/review
	}))

	// Sessions
	sh := SessionsHandler{DB: d.DB}
	mux.HandleFunc("/sessions", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.List,
	}))
	mux.HandleFunc("/sessions/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.GetByPath, // expects /sessions/{id}
	}))

	// Discovery
	dh := DiscoveryHandler{
		CfgVal:     d.CfgVal,
		RunStatus:  d.RunStatus,
		RunSession: d.RunSession,
		Rescore:    d.Rescore,
	}
	mux.HandleFunc("/discovery/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Run,
	}))
	mux.HandleFunc("/discovery/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Status,
	}))
	mux.HandleFunc("/matches/rescore", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.RunRescore,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		Hub:         d.Hub,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sec := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sec.SetIMAPPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
