package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

type DiscoveryHandler struct {
	CfgVal     *atomic.Value // config.Config
	RunStatus  *atomic.Value // httpapi.RunStatus
	RunSession func(ctx context.Context, cfg config.Config) (domain.ScrapingSession, error)
	Rescore    func(ctx context.Context, cfg config.Config) (int, error)
}

func (h DiscoveryHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.RunStatus.Load().(RunStatus)
	writeJSON(w, st)
}

func (h DiscoveryHandler) Run(w http.ResponseWriter, r *http.Request) {
	st := h.RunStatus.Load().(RunStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	h.RunStatus.Store(RunStatus{
		LastRunAt:     time.Now().Format(time.RFC3339),
		Running:       true,
		LastOkAt:      st.LastOkAt,
		LastSessionID: st.LastSessionID,
	})

	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		sess, err := h.RunSession(context.Background(), cfg)

		now := time.Now().Format(time.RFC3339)
		next := h.RunStatus.Load().(RunStatus)
		next.Running = false
		next.LastRunAt = now
		next.LastSessionID = sess.ID
		next.LastJobsNew = sess.JobsNew
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.RunStatus.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}

func (h DiscoveryHandler) RunRescore(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	matched, err := h.Rescore(r.Context(), cfg)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "rescore_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "matched": matched})
}
